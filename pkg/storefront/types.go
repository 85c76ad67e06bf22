package storefront

import (
	"encoding/json"

	"github.com/frozify/storefront/pkg/enums"
	"github.com/shopspring/decimal"
)

// Product is a catalog entry as served by the storefront API.
type Product struct {
	ID          string          `json:"_id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category,omitempty"`
	Stock       int             `json:"stock,omitempty"`
	Image       string          `json:"image,omitempty"`
}

// ProductInput is the admin create/update payload.
type ProductInput struct {
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category" validate:"required"`
	Stock       int             `json:"stock" validate:"gte=0"`
	Image       string          `json:"image"`
}

// MarshalJSON sends the price as a bare JSON number.
func (p ProductInput) MarshalJSON() ([]byte, error) {
	type wire ProductInput
	return json.Marshal(struct {
		wire
		Price json.Number `json:"price"`
	}{wire: wire(p), Price: json.Number(p.Price.String())})
}

type Category struct {
	ID          string `json:"_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type CategoryInput struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

// User is the account returned by the auth endpoints.
type User struct {
	ID       string     `json:"_id"`
	Username string     `json:"username"`
	Email    string     `json:"email"`
	Role     enums.Role `json:"role"`
}

// AuthResult is a successful login or registration.
type AuthResult struct {
	Token string
	User  User
}

type RegisterInput struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// OrderItem is one line of an order snapshot.
type OrderItem struct {
	Name    string          `json:"name"`
	Qty     int             `json:"qty"`
	Image   string          `json:"image"`
	Price   decimal.Decimal `json:"price"`
	Product string          `json:"product"`
}

func (o OrderItem) MarshalJSON() ([]byte, error) {
	type wire OrderItem
	return json.Marshal(struct {
		wire
		Price json.Number `json:"price"`
	}{wire: wire(o), Price: json.Number(o.Price.String())})
}

type ShippingAddress struct {
	Address    string `json:"address" validate:"required"`
	City       string `json:"city" validate:"required"`
	Phone      string `json:"phone" validate:"required"`
	PostalCode string `json:"postalCode"`
}

// OrderPayload is the body of POST /orders.
type OrderPayload struct {
	OrderItems      []OrderItem         `json:"orderItems" validate:"required,min=1,dive"`
	ShippingAddress ShippingAddress     `json:"shippingAddress"`
	PaymentMethod   enums.PaymentMethod `json:"paymentMethod" validate:"required"`
	TotalPrice      decimal.Decimal     `json:"totalPrice"`
}

func (o OrderPayload) MarshalJSON() ([]byte, error) {
	type wire OrderPayload
	return json.Marshal(struct {
		wire
		TotalPrice json.Number `json:"totalPrice"`
	}{wire: wire(o), TotalPrice: json.Number(o.TotalPrice.String())})
}

// OrderResult is the created order reference.
type OrderResult struct {
	ID string
}
