package storefront

import (
	"context"
	"net/http"
	"strings"

	pkgerrors "github.com/frozify/storefront/pkg/errors"
)

// CreateOrder posts an order on behalf of the token's owner. A non-empty idempotencyKey is
// forwarded so retries of the same checkout do not create duplicate orders.
func (c *Client) CreateOrder(ctx context.Context, token, idempotencyKey string, payload OrderPayload) (*OrderResult, error) {
	if strings.TrimSpace(token) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "token is required")
	}
	req, err := jsonRequest("create_order", http.MethodPost, "orders", token, payload)
	if err != nil {
		return nil, err
	}
	if key := strings.TrimSpace(idempotencyKey); key != "" {
		req.headers = map[string]string{idempotencyKeyHeader: key}
	}

	var resp envelope[struct {
		ID string `json:"_id"`
	}]
	if err := c.do(ctx, req, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		msg := resp.Error
		if msg == "" {
			msg = "order was not accepted"
		}
		return nil, pkgerrors.New(pkgerrors.CodeDependency, msg)
	}
	if resp.Data.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "order response missing id")
	}
	return &OrderResult{ID: resp.Data.ID}, nil
}
