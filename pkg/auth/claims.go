package auth

import "github.com/golang-jwt/jwt/v5"

// SessionClaims identify an anonymous or signed-in storefront browser session.
// The JWT ID carries the session id; the storefront API credential never leaves the server.
type SessionClaims struct {
	jwt.RegisteredClaims
}

// SessionID returns the session identifier carried by the token.
func (c *SessionClaims) SessionID() string {
	if c == nil {
		return ""
	}
	return c.ID
}
