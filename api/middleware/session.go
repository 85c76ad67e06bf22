package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/frozify/storefront/api/responses"
	"github.com/frozify/storefront/internal/session"
	pkgauth "github.com/frozify/storefront/pkg/auth"
	"github.com/frozify/storefront/pkg/config"
	pkgerrors "github.com/frozify/storefront/pkg/errors"
	"github.com/frozify/storefront/pkg/logger"
)

// SessionTokenHeader carries a freshly minted session token back to the browser.
const SessionTokenHeader = "X-Session-Token"

type sessionLoader interface {
	Get(ctx context.Context, id string) (*session.Session, error)
}

// Session resolves the bearer session token into a live shopper session. Requests without a
// usable token get a new session whose token is returned in X-Session-Token.
func Session(cfg config.JWTConfig, loader sessionLoader, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			sessionID := ""
			if token := bearerToken(r); token != "" {
				claims, err := pkgauth.ParseSessionToken(cfg, token)
				if err == nil {
					sessionID = claims.SessionID()
				} else if logg != nil {
					logg.Warn(ctx, "session token rejected: "+err.Error())
				}
			}

			if sessionID == "" {
				token, claims, err := pkgauth.MintSessionToken(cfg, time.Now(), "")
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint session token"))
					return
				}
				sessionID = claims.SessionID()
				w.Header().Set(SessionTokenHeader, token)
			}

			s, err := loader.Get(ctx, sessionID)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load session"))
				return
			}

			ctx = WithSession(ctx, s)
			if logg != nil {
				ctx = logg.WithSessionID(ctx, sessionID)
				if identity := s.Auth.Current(); identity != nil {
					ctx = logg.WithUserID(ctx, identity.ID)
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(raw), "bearer ") {
		return strings.TrimSpace(raw[7:])
	}
	return ""
}
