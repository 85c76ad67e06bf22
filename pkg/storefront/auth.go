package storefront

import (
	"context"
	"net/http"
	"strings"

	pkgerrors "github.com/frozify/storefront/pkg/errors"
)

// authResponse tolerates both {token, user} and {token, data} shapes.
type authResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
	User    *User  `json:"user"`
	Data    *User  `json:"data"`
}

func (r authResponse) user() *User {
	if r.User != nil {
		return r.User
	}
	return r.Data
}

// Login exchanges credentials for an API token and the account it belongs to.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	payload := map[string]string{"email": strings.TrimSpace(email), "password": password}
	req, err := jsonRequest("login", http.MethodPost, "auth/login", "", payload)
	if err != nil {
		return nil, err
	}
	return c.authenticate(ctx, req)
}

// Register creates an account and returns its API token.
func (c *Client) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	req, err := jsonRequest("register", http.MethodPost, "auth/register", "", input)
	if err != nil {
		return nil, err
	}
	return c.authenticate(ctx, req)
}

func (c *Client) authenticate(ctx context.Context, req request) (*AuthResult, error) {
	var resp authResponse
	if err := c.do(ctx, req, &resp); err != nil {
		return nil, err
	}
	if strings.TrimSpace(resp.Token) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "auth response missing token")
	}
	result := &AuthResult{Token: resp.Token}
	if u := resp.user(); u != nil {
		result.User = *u
	}
	return result, nil
}

// CurrentUser answers "who am I" for token.
func (c *Client) CurrentUser(ctx context.Context, token string) (*User, error) {
	if strings.TrimSpace(token) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "token is required")
	}
	var resp authResponse
	req := request{operation: "current_user", method: http.MethodGet, path: "auth/me", token: token}
	if err := c.do(ctx, req, &resp); err != nil {
		return nil, err
	}
	u := resp.user()
	if u == nil || u.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "auth response missing user")
	}
	return u, nil
}
