// Package storefront is the HTTP client for the external Frozify storefront REST API.
package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	pkgerrors "github.com/frozify/storefront/pkg/errors"
	"github.com/sony/gobreaker/v2"
)

const (
	defaultBaseURL             = "http://localhost:5000/api"
	defaultTimeout             = 10 * time.Second
	responseBodyLimit    int64 = 1 << 20
	errorBodyReadLimit   int64 = 4096
	idempotencyKeyHeader       = "Idempotency-Key"
)

// Recorder receives per-call outcomes and breaker transitions.
type Recorder interface {
	IncUpstream(operation string, success bool)
	SetBreakerState(breaker string, state int)
}

// BreakerSettings tunes the circuit breaker shared by every call.
type BreakerSettings struct {
	MaxRequests  uint32
	Interval     time.Duration
	Timeout      time.Duration
	FailureCount uint32
}

// Client calls the storefront API through a circuit breaker.
type Client struct {
	httpClient *http.Client
	baseURL    string
	breaker    *gobreaker.CircuitBreaker[[]byte]
	settings   BreakerSettings
	recorder   Recorder
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// WithBreaker overrides the circuit breaker thresholds.
func WithBreaker(settings BreakerSettings) Option {
	return func(c *Client) {
		c.settings = settings
	}
}

// WithRecorder reports call outcomes to r.
func WithRecorder(r Recorder) Option {
	return func(c *Client) {
		c.recorder = r
	}
}

// NewClient builds a storefront client for baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		trimmed = defaultBaseURL
	}
	if !strings.HasPrefix(trimmed, "http://") && !strings.HasPrefix(trimmed, "https://") {
		return nil, fmt.Errorf("storefront base url %q must be http(s)", baseURL)
	}

	client := &Client{
		baseURL:    trimmed,
		httpClient: &http.Client{Timeout: defaultTimeout},
		settings: BreakerSettings{
			MaxRequests:  1,
			Interval:     time.Minute,
			Timeout:      30 * time.Second,
			FailureCount: 5,
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	client.breaker = newBreaker("storefront-api", client.settings, client.recorder)
	return client, nil
}

func newBreaker(name string, settings BreakerSettings, recorder Recorder) *gobreaker.CircuitBreaker[[]byte] {
	failures := settings.FailureCount
	if failures == 0 {
		failures = 5
	}
	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        name,
		MaxRequests: settings.MaxRequests,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, _ gobreaker.State, to gobreaker.State) {
			if recorder != nil {
				recorder.SetBreakerState(name, int(to))
			}
		},
		// 4xx responses count as successes.
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			typed := pkgerrors.As(err)
			return typed != nil && typed.Code() != pkgerrors.CodeDependency
		},
	})
}

type request struct {
	operation   string
	method      string
	path        string
	token       string
	body        io.Reader
	contentType string
	headers     map[string]string
}

func jsonRequest(operation, method, path, token string, payload any) (request, error) {
	req := request{operation: operation, method: method, path: path, token: token}
	if payload == nil {
		return req, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return req, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal "+operation+" request")
	}
	req.body = bytes.NewReader(raw)
	req.contentType = "application/json"
	return req, nil
}

// do executes req through the breaker and decodes the response body into out.
func (c *Client) do(ctx context.Context, req request, out any) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "storefront client not configured")
	}
	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.roundTrip(ctx, req)
	})
	if c.recorder != nil {
		c.recorder.IncUpstream(req.operation, err == nil)
	}
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "storefront api unavailable")
		}
		return err
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode "+req.operation+" response")
	}
	return nil
}

func (c *Client) roundTrip(ctx context.Context, req request) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.buildURL(req.path), req.body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build "+req.operation+" request")
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	if req.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.token)
	}
	for k, v := range req.headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute "+req.operation+" request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		code := pkgerrors.FromUpstreamStatus(resp.StatusCode)
		cause := fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
		return nil, pkgerrors.Wrap(code, cause, upstreamMessage(msg, req.operation+" request failed")).
			WithUpstreamStatus(resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, responseBodyLimit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read "+req.operation+" response")
	}
	return body, nil
}

// upstreamMessage extracts the API's own error text from {error} or {message}.
func upstreamMessage(body []byte, fallback string) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return fallback
	}
	if msg := strings.TrimSpace(payload.Error); msg != "" {
		return msg
	}
	if msg := strings.TrimSpace(payload.Message); msg != "" {
		return msg
	}
	return fallback
}

func (c *Client) buildURL(path string) string {
	return fmt.Sprintf("%s/%s", c.baseURL, strings.TrimLeft(path, "/"))
}

// BreakerState reports the breaker state (closed, half-open, open).
func (c *Client) BreakerState() string {
	return c.breaker.State().String()
}
