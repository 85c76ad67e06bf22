package checkout

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/frozify/storefront/internal/auth"
	"github.com/frozify/storefront/internal/cart"
	"github.com/frozify/storefront/internal/city"
	"github.com/frozify/storefront/pkg/enums"
	pkgerrors "github.com/frozify/storefront/pkg/errors"
	"github.com/frozify/storefront/pkg/logger"
	"github.com/frozify/storefront/pkg/storefront"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const postalCodePlaceholder = "N/A"

var validate = validator.New()

// ShippingDetails is the delivery draft collected on the shipping step.
type ShippingDetails struct {
	Address string `json:"address" validate:"required"`
	City    string `json:"city" validate:"required"`
	Phone   string `json:"phone" validate:"required"`
}

func (d ShippingDetails) trimmed() ShippingDetails {
	return ShippingDetails{
		Address: strings.TrimSpace(d.Address),
		City:    strings.TrimSpace(d.City),
		Phone:   strings.TrimSpace(d.Phone),
	}
}

// Complete reports whether every field is non-blank.
func (d ShippingDetails) Complete() bool {
	return validate.Struct(d.trimmed()) == nil
}

// Receipt describes a placed order.
type Receipt struct {
	OrderID    string          `json:"order_id"`
	Summary    string          `json:"summary"`
	HandoffURL string          `json:"handoff_url"`
	Total      decimal.Decimal `json:"total"`
	PlacedAt   time.Time       `json:"placed_at"`
}

// View is a read-only snapshot of the flow for rendering.
type View struct {
	State     enums.CheckoutState `json:"state"`
	Step      int                 `json:"step"`
	Empty     bool                `json:"empty"`
	Items     []cart.LineItem     `json:"items"`
	Total     decimal.Decimal     `json:"total"`
	ItemCount int                 `json:"item_count"`
	Shipping  ShippingDetails     `json:"shipping"`
	Error     string              `json:"error,omitempty"`
	Receipt   *Receipt            `json:"receipt,omitempty"`
}

type cartState interface {
	Items() []cart.LineItem
	Snapshot() cart.Snapshot
	IsEmpty() bool
	RemoveOrdered(ctx context.Context, ordered []cart.LineItem) error
}

type identitySource interface {
	Current() *auth.Identity
	Token() string
}

type citySource interface {
	Current() (city.City, bool)
}

type orderCreator interface {
	CreateOrder(ctx context.Context, token, idempotencyKey string, payload storefront.OrderPayload) (*storefront.OrderResult, error)
}

// Recorder observes submission outcomes.
type Recorder interface {
	ObserveSubmission(success bool, duration time.Duration)
}

// Params wires a Flow. City, Recorder, Logger, NewKey and Now are optional.
type Params struct {
	Cart      cartState
	Auth      identitySource
	City      citySource
	Orders    orderCreator
	Recipient string
	Recorder  Recorder
	Logger    *logger.Logger
	NewKey    func() string
	Now       func() time.Time
}

// Flow is the Review → Shipping → Confirmation wizard of one shopping session.
type Flow struct {
	mu       sync.Mutex
	state    enums.CheckoutState
	shipping ShippingDetails
	key      string
	lastErr  error
	receipt  *Receipt

	cart      cartState
	auth      identitySource
	city      citySource
	orders    orderCreator
	recipient string
	recorder  Recorder
	logg      *logger.Logger
	newKey    func() string
	now       func() time.Time
}

// NewFlow starts a flow at review.
func NewFlow(p Params) (*Flow, error) {
	if p.Cart == nil {
		return nil, errors.New("cart required")
	}
	if p.Auth == nil {
		return nil, errors.New("auth required")
	}
	if p.Orders == nil {
		return nil, errors.New("order creator required")
	}
	if strings.TrimSpace(p.Recipient) == "" {
		return nil, errors.New("handoff recipient required")
	}
	f := &Flow{
		state:     enums.CheckoutStateReview,
		cart:      p.Cart,
		auth:      p.Auth,
		city:      p.City,
		orders:    p.Orders,
		recipient: p.Recipient,
		recorder:  p.Recorder,
		logg:      p.Logger,
		newKey:    p.NewKey,
		now:       p.Now,
	}
	if f.logg == nil {
		f.logg = logger.Nop()
	}
	if f.newKey == nil {
		f.newKey = uuid.NewString
	}
	if f.now == nil {
		f.now = time.Now
	}
	f.key = f.newKey()
	return f, nil
}

// State returns the current tag.
func (f *Flow) State() enums.CheckoutState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Next advances one step when the guard allows it. A blocked move returns false.
func (f *Flow) Next() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch f.state {
	case enums.CheckoutStateReview:
		if f.cart.IsEmpty() {
			return false
		}
		f.prefillCityLocked()
		f.state = enums.CheckoutStateShipping
		return true
	case enums.CheckoutStateShipping:
		if !f.shipping.Complete() {
			return false
		}
		f.state = enums.CheckoutStateConfirmation
		return true
	default:
		return false
	}
}

// Back returns to the previous step. The shipping draft is kept.
func (f *Flow) Back() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch f.state {
	case enums.CheckoutStateShipping:
		f.state = enums.CheckoutStateReview
	case enums.CheckoutStateConfirmation, enums.CheckoutStateFailed:
		f.state = enums.CheckoutStateShipping
	default:
		return false
	}
	f.lastErr = nil
	return true
}

// SetShipping replaces the shipping draft. It is refused while an order is in flight or placed.
func (f *Flow) SetShipping(details ShippingDetails) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch f.state {
	case enums.CheckoutStateSubmitting:
		return pkgerrors.New(pkgerrors.CodeConflict, "order submission in progress")
	case enums.CheckoutStateCompleted:
		return pkgerrors.New(pkgerrors.CodeConflict, "order already placed")
	}
	f.shipping = details.trimmed()
	return nil
}

// Submit places the order. It is allowed from confirmation, or from failed to retry.
func (f *Flow) Submit(ctx context.Context) (*Receipt, error) {
	f.mu.Lock()
	switch f.state {
	case enums.CheckoutStateConfirmation, enums.CheckoutStateFailed:
	case enums.CheckoutStateSubmitting:
		f.mu.Unlock()
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "order submission in progress")
	default:
		f.mu.Unlock()
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "checkout is not at confirmation")
	}

	identity := f.auth.Current()
	token := f.auth.Token()
	if identity == nil || token == "" {
		f.mu.Unlock()
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to place an order")
	}
	snap := f.cart.Snapshot()
	if len(snap.Items) == 0 {
		f.mu.Unlock()
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	if !f.shipping.Complete() {
		f.mu.Unlock()
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping details are incomplete")
	}

	items := snap.Items
	total := snap.Total
	shipping := f.shipping
	key := f.key
	payload := buildOrder(items, shipping, total)
	f.state = enums.CheckoutStateSubmitting
	f.lastErr = nil
	f.mu.Unlock()

	started := f.now()
	result, err := f.orders.CreateOrder(ctx, token, key, payload)
	elapsed := f.now().Sub(started)

	f.mu.Lock()
	defer f.mu.Unlock()

	if err != nil {
		f.state = enums.CheckoutStateFailed
		f.lastErr = err
		f.observe(false, elapsed)
		f.logg.Error(ctx, "order submission failed", err)
		return nil, err
	}

	summary := BuildSummary(SummaryInput{
		OrderID:  result.ID,
		Customer: identity.Username,
		Shipping: shipping,
		Items:    items,
		Total:    total,
	})
	receipt := &Receipt{
		OrderID:    result.ID,
		Summary:    summary,
		HandoffURL: HandoffURL(f.recipient, summary),
		Total:      total,
		PlacedAt:   f.now().UTC(),
	}
	if clearErr := f.cart.RemoveOrdered(ctx, items); clearErr != nil {
		f.logg.Warn(ctx, "removing ordered items did not persist: "+clearErr.Error())
	}
	f.state = enums.CheckoutStateCompleted
	f.receipt = receipt
	f.key = f.newKey()
	f.observe(true, elapsed)
	f.logg.Info(f.logg.WithField(ctx, "order_id", result.ID), "order placed")

	copied := *receipt
	return &copied, nil
}

// Reset discards the session and starts again at review with a fresh idempotency key.
func (f *Flow) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == enums.CheckoutStateSubmitting {
		return
	}
	f.state = enums.CheckoutStateReview
	f.shipping = ShippingDetails{}
	f.lastErr = nil
	f.receipt = nil
	f.key = f.newKey()
}

// View snapshots the flow together with the cart it reads.
func (f *Flow) View() View {
	f.mu.Lock()
	defer f.mu.Unlock()

	items := f.cart.Items()
	v := View{
		State:     f.state,
		Step:      f.state.Step(),
		Empty:     f.state == enums.CheckoutStateReview && len(items) == 0,
		Items:     items,
		Total:     cart.Total(items),
		ItemCount: cart.ItemCount(items),
		Shipping:  f.shipping,
	}
	if f.lastErr != nil {
		v.Error = publicMessage(f.lastErr)
	}
	if f.receipt != nil {
		copied := *f.receipt
		v.Receipt = &copied
	}
	return v
}

// IdempotencyKey is the key sent with the next submission.
func (f *Flow) IdempotencyKey() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.key
}

func (f *Flow) prefillCityLocked() {
	if f.city == nil || f.shipping.City != "" {
		return
	}
	if c, ok := f.city.Current(); ok {
		f.shipping.City = c.Name
	}
}

func (f *Flow) observe(success bool, elapsed time.Duration) {
	if f.recorder != nil {
		f.recorder.ObserveSubmission(success, elapsed)
	}
}

func buildOrder(items []cart.LineItem, shipping ShippingDetails, total decimal.Decimal) storefront.OrderPayload {
	lines := make([]storefront.OrderItem, 0, len(items))
	for _, item := range items {
		lines = append(lines, storefront.OrderItem{
			Name:    item.Name,
			Qty:     item.Quantity,
			Image:   item.ImageRef,
			Price:   item.UnitPrice,
			Product: item.ID,
		})
	}
	return storefront.OrderPayload{
		OrderItems: lines,
		ShippingAddress: storefront.ShippingAddress{
			Address:    shipping.Address,
			City:       shipping.City,
			Phone:      shipping.Phone,
			PostalCode: postalCodePlaceholder,
		},
		PaymentMethod: enums.PaymentMethodWhatsApp,
		TotalPrice:    total,
	}
}

func publicMessage(err error) string {
	if typed := pkgerrors.As(err); typed != nil {
		return typed.Message()
	}
	return "Failed to process order. Please try again."
}
