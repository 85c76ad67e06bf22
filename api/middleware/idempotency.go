package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/frozify/storefront/api/responses"
	pkgerrors "github.com/frozify/storefront/pkg/errors"
	"github.com/frozify/storefront/pkg/logger"
	pkgredis "github.com/frozify/storefront/pkg/redis"
)

const (
	idempotencyHeader     = "Idempotency-Key"
	defaultIdempotencyTTL = 24 * time.Hour
)

type routeMatcher func(string) bool

type idempotencyRule struct {
	method   string
	matcher  routeMatcher
	critical bool
}

var idempotencyRules = []idempotencyRule{
	{method: http.MethodPost, matcher: matchExact("/api/v1/checkout/submit"), critical: true},
	{method: http.MethodPost, matcher: matchExact("/api/v1/auth/register")},
	{method: http.MethodPost, matcher: matchExact("/api/admin/v1/products")},
	{method: http.MethodPost, matcher: matchExact("/api/admin/v1/categories")},
	{method: http.MethodPost, matcher: matchExact("/api/admin/v1/uploads")},
}

type idempotencyRecord struct {
	Status      int               `json:"status"`
	Body        string            `json:"body"`
	Headers     map[string]string `json:"headers,omitempty"`
	RequestHash string            `json:"request_hash"`
}

// Idempotency replays the stored response when a request repeats its Idempotency-Key.
// The key is mandatory on critical routes and optional elsewhere. Server errors are not
// stored so a retry after an outage reaches the handler again.
func Idempotency(store pkgredis.IdempotencyStore, criticalTTL time.Duration, logg *logger.Logger) func(http.Handler) http.Handler {
	if criticalTTL <= 0 {
		criticalTTL = defaultIdempotencyTTL
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rule, ok := matchRule(r.Method, requestPath(r))
			if !ok || store == nil {
				next.ServeHTTP(w, r)
				return
			}
			ttl := defaultIdempotencyTTL
			if rule.critical {
				ttl = criticalTTL
			}

			idempotencyKey := strings.TrimSpace(r.Header.Get(idempotencyHeader))
			if idempotencyKey == "" {
				if rule.critical {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key header required"))
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			requestHash := hashBody(body)
			key := store.IdempotencyKey(buildScope(r), idempotencyKey)

			if stored, getErr := store.Get(r.Context(), key); getErr != nil && !pkgredis.IsNil(getErr) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, getErr, "check idempotency"))
				return
			} else if stored != "" {
				record, decodeErr := decodeRecord(stored)
				if decodeErr != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, decodeErr, "decode idempotency record"))
					return
				}
				if record.RequestHash != requestHash {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with different request body"))
					return
				}
				writeStoredResponse(w, record)
				return
			}

			rec := &responseCapture{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			status := defaultStatus(rec.status)
			if status >= http.StatusInternalServerError {
				return
			}
			record := idempotencyRecord{
				Status:      status,
				Body:        base64.StdEncoding.EncodeToString(rec.body.Bytes()),
				RequestHash: requestHash,
			}
			if ct := rec.Header().Get("Content-Type"); ct != "" {
				record.Headers = map[string]string{"Content-Type": ct}
			}

			payload, marshalErr := json.Marshal(record)
			if marshalErr != nil {
				logError(r.Context(), logg, "marshal idempotency record", marshalErr)
				return
			}

			if _, setErr := store.SetNX(r.Context(), key, string(payload), ttl); setErr != nil {
				logError(r.Context(), logg, "persist idempotency record", setErr)
			}
		})
	}
}

func buildScope(r *http.Request) string {
	parts := []string{
		SessionIDFromContext(r.Context()),
		r.Method,
		r.URL.Path,
	}
	return strings.Join(parts, "|")
}

func decodeRecord(payload string) (*idempotencyRecord, error) {
	var record idempotencyRecord
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func writeStoredResponse(w http.ResponseWriter, record *idempotencyRecord) {
	if record == nil {
		return
	}
	if ct, ok := record.Headers["Content-Type"]; ok && ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.Header().Set("Idempotent-Replay", "true")
	w.WriteHeader(record.Status)
	if decoded, err := base64.StdEncoding.DecodeString(record.Body); err == nil {
		_, _ = w.Write(decoded)
	}
}

func hashBody(payload []byte) string {
	sum := sha256.Sum256(payload)
	return base64.StdEncoding.EncodeToString(sum[:])
}

func defaultStatus(value int) int {
	if value == 0 {
		return http.StatusOK
	}
	return value
}

// requestPath is matched instead of the chi route pattern, which is incomplete while
// sub-router middleware runs.
func requestPath(r *http.Request) string {
	if r == nil || r.URL == nil {
		return ""
	}
	if p := strings.TrimSuffix(r.URL.Path, "/"); p != "" {
		return p
	}
	return r.URL.Path
}

func matchRule(method, pattern string) (idempotencyRule, bool) {
	if pattern == "" {
		return idempotencyRule{}, false
	}
	for _, rule := range idempotencyRules {
		if rule.method == method && rule.matcher(pattern) {
			return rule, true
		}
	}
	return idempotencyRule{}, false
}

func matchExact(path string) routeMatcher {
	return func(pattern string) bool {
		return pattern == path
	}
}

type responseCapture struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (r *responseCapture) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseCapture) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func logError(ctx context.Context, logg *logger.Logger, msg string, err error) {
	if logg == nil || err == nil {
		return
	}
	logg.Error(ctx, msg, err)
}
