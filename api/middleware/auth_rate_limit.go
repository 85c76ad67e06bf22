package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/frozify/storefront/api/responses"
	"github.com/frozify/storefront/pkg/config"
	pkgerrors "github.com/frozify/storefront/pkg/errors"
	"github.com/frozify/storefront/pkg/logger"
)

// maxAuthBody bounds how much of a login or register body is buffered to find the email.
const maxAuthBody = 16 << 10

type rateLimiterStore interface {
	IncrWithTTL(context.Context, string, time.Duration) (int64, error)
	RateLimitKey(scope string) string
}

// AuthSurface names the storefront endpoint a policy throttles.
type AuthSurface string

const (
	SurfaceLogin    AuthSurface = "login"
	SurfaceRegister AuthSurface = "register"
)

// AuthRateLimitPolicy throttles one auth surface per client IP and per shopper email.
type AuthRateLimitPolicy struct {
	surface    AuthSurface
	window     time.Duration
	ipLimit    int
	emailLimit int
}

// LoginRateLimit guards POST /api/v1/auth/login, which proxies credentials to the storefront API.
func LoginRateLimit(cfg config.AuthRateLimitConfig) AuthRateLimitPolicy {
	return AuthRateLimitPolicy{
		surface:    SurfaceLogin,
		window:     cfg.LoginWindow,
		ipLimit:    cfg.LoginIPLimit,
		emailLimit: cfg.LoginEmailLimit,
	}
}

// RegisterRateLimit guards POST /api/v1/auth/register.
func RegisterRateLimit(cfg config.AuthRateLimitConfig) AuthRateLimitPolicy {
	return AuthRateLimitPolicy{
		surface:    SurfaceRegister,
		window:     cfg.RegisterWindow,
		ipLimit:    cfg.RegisterIPLimit,
		emailLimit: cfg.RegisterEmailLimit,
	}
}

func (p AuthRateLimitPolicy) enabled() bool {
	return p.window > 0 && (p.ipLimit > 0 || p.emailLimit > 0)
}

func (p AuthRateLimitPolicy) key(dimension, value string) string {
	if value == "" {
		return ""
	}
	return fmt.Sprintf("%s:%s:%s", p.surface, dimension, value)
}

// message is what the shopper sees when throttled.
func (p AuthRateLimitPolicy) message() string {
	wait := int(p.window.Round(time.Minute).Minutes())
	if wait < 1 {
		wait = 1
	}
	switch p.surface {
	case SurfaceRegister:
		return fmt.Sprintf("Too many sign-up attempts. Please try again in %d minute(s).", wait)
	default:
		return fmt.Sprintf("Too many sign-in attempts. Please try again in %d minute(s).", wait)
	}
}

// AuthRateLimit counts attempts in fixed windows keyed by client IP and by a hash of the
// submitted email. Blocked requests get 429 with Retry-After.
func AuthRateLimit(policy AuthRateLimitPolicy, store rateLimiterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || store == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			ip := clientIP(r)
			if policy.ipLimit > 0 {
				if blocked := policy.check(ctx, w, store, logg, "ip", ip, policy.ipLimit); blocked {
					return
				}
			}

			if policy.emailLimit > 0 {
				body, err := io.ReadAll(io.LimitReader(r.Body, maxAuthBody))
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "could not read request body"))
					return
				}
				r.Body = struct {
					io.Reader
					io.Closer
				}{io.MultiReader(bytes.NewReader(body), r.Body), r.Body}

				if email := normalizeEmail(extractEmail(body)); email != "" {
					if blocked := policy.check(ctx, w, store, logg, "email", hashValue(email), policy.emailLimit); blocked {
						return
					}
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// check bumps the counter for one dimension and writes the response when the request must stop.
func (p AuthRateLimitPolicy) check(ctx context.Context, w http.ResponseWriter, store rateLimiterStore, logg *logger.Logger, dimension, value string, limit int) bool {
	key := p.key(dimension, value)
	if key == "" {
		return false
	}
	count, err := store.IncrWithTTL(ctx, store.RateLimitKey(key), p.window)
	if err != nil {
		responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiter unavailable"))
		return true
	}
	if count <= int64(limit) {
		return false
	}

	if logg != nil {
		logg.Warn(logg.WithFields(ctx, map[string]any{
			"surface":        string(p.surface),
			"dimension":      dimension,
			"attempts":       count,
			"limit":          limit,
			"window_seconds": int(p.window.Seconds()),
		}), "auth.throttled")
	}
	w.Header().Set("Retry-After", strconv.Itoa(int(p.window.Seconds())))
	responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, p.message()))
	return true
}

func clientIP(r *http.Request) string {
	if header := r.Header.Get("X-Forwarded-For"); header != "" {
		for _, part := range strings.Split(header, ",") {
			if ip := strings.TrimSpace(part); ip != "" {
				return ip
			}
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

func extractEmail(payload []byte) string {
	var body struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return ""
	}
	return body.Email
}

func normalizeEmail(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func hashValue(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
