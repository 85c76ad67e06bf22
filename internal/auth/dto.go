package auth

import (
	"github.com/frozify/storefront/pkg/enums"
	"github.com/frozify/storefront/pkg/storefront"
)

// LoginRequest captures the credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest captures a new account.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=2,max=64"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// Identity is the signed-in shopper.
type Identity struct {
	ID       string     `json:"id"`
	Username string     `json:"username"`
	Email    string     `json:"email"`
	Role     enums.Role `json:"role"`
}

// IsAdmin reports whether the identity may manage the catalog.
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == enums.RoleAdmin
}

// IdentityFromUser maps an API account onto an Identity. Unknown roles become customer.
func IdentityFromUser(u storefront.User) *Identity {
	role, err := enums.ParseRole(string(u.Role))
	if err != nil {
		role = enums.RoleCustomer
	}
	return &Identity{ID: u.ID, Username: u.Username, Email: u.Email, Role: role}
}
