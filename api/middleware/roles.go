package middleware

import (
	"net/http"

	"github.com/frozify/storefront/api/responses"
	pkgerrors "github.com/frozify/storefront/pkg/errors"
	"github.com/frozify/storefront/pkg/logger"
)

// RequireAdmin lets through only sessions signed in with the admin role.
func RequireAdmin(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s := SessionFromContext(r.Context())
			if s == nil || !s.Auth.IsAuthenticated() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in required"))
				return
			}
			if !s.Auth.IsAdmin() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "admin role required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
