package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/frozify/storefront/internal/auth"
	"github.com/frozify/storefront/internal/cart"
	"github.com/frozify/storefront/internal/checkout"
	"github.com/frozify/storefront/internal/city"
	"github.com/frozify/storefront/pkg/logger"
	"github.com/frozify/storefront/pkg/storage"
	"github.com/frozify/storefront/pkg/storefront"
)

// API is the slice of the storefront client a session needs.
type API interface {
	CurrentUser(ctx context.Context, token string) (*storefront.User, error)
	CreateOrder(ctx context.Context, token, idempotencyKey string, payload storefront.OrderPayload) (*storefront.OrderResult, error)
}

// Recorder receives cart and checkout metrics.
type Recorder interface {
	IncCartMutation(op string)
	ObserveSubmission(success bool, duration time.Duration)
}

// Params wires one shopping session. Storage should already be scoped to the session.
type Params struct {
	ID        string
	Storage   storage.Store
	API       API
	Recipient string
	Logger    *logger.Logger
	Recorder  Recorder
}

// Session groups the state containers of one shopper.
type Session struct {
	ID       string
	Cart     *cart.Store
	Auth     *auth.Store
	City     *city.Store
	Checkout *checkout.Flow
}

// New builds every store over p.Storage and restores the signed-in identity.
func New(ctx context.Context, p Params) (*Session, error) {
	if p.Storage == nil {
		return nil, errors.New("storage required")
	}
	if p.API == nil {
		return nil, errors.New("storefront api required")
	}
	logg := p.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	if p.ID != "" {
		ctx = logg.WithSessionID(ctx, p.ID)
	}

	var cartRecorder cart.Recorder
	var flowRecorder checkout.Recorder
	if p.Recorder != nil {
		cartRecorder = p.Recorder
		flowRecorder = p.Recorder
	}

	cartStore, err := cart.NewStore(ctx, p.Storage, logg, cartRecorder)
	if err != nil {
		return nil, fmt.Errorf("cart store: %w", err)
	}
	authStore, err := auth.NewStore(p.Storage, p.API, logg)
	if err != nil {
		return nil, fmt.Errorf("auth store: %w", err)
	}
	authStore.Restore(ctx)

	cityStore, err := city.NewStore(ctx, p.Storage, logg)
	if err != nil {
		return nil, fmt.Errorf("city store: %w", err)
	}
	flow, err := checkout.NewFlow(checkout.Params{
		Cart:      cartStore,
		Auth:      authStore,
		City:      cityStore,
		Orders:    p.API,
		Recipient: p.Recipient,
		Recorder:  flowRecorder,
		Logger:    logg,
	})
	if err != nil {
		return nil, fmt.Errorf("checkout flow: %w", err)
	}

	return &Session{ID: p.ID, Cart: cartStore, Auth: authStore, City: cityStore, Checkout: flow}, nil
}
