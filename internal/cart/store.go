package cart

import (
	"context"
	"errors"
	"strings"
	"sync"

	pkgerrors "github.com/frozify/storefront/pkg/errors"
	"github.com/frozify/storefront/pkg/logger"
	"github.com/frozify/storefront/pkg/storage"
	"github.com/shopspring/decimal"
)

const (
	opAdd    = "add"
	opRemove = "remove"
	opUpdate = "update"
	opClear  = "clear"
	opOrder  = "order"
)

// Recorder counts cart mutations.
type Recorder interface {
	IncCartMutation(op string)
}

// Snapshot is a consistent read of the cart.
type Snapshot struct {
	Items     []LineItem      `json:"items"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
}

// Store holds one shopper's cart and writes it through to storage after every mutation.
// If the write fails the in-memory change is kept and the error is returned.
type Store struct {
	mu       sync.Mutex
	items    []LineItem
	storage  storage.Store
	logg     *logger.Logger
	recorder Recorder
}

// NewStore loads the cart persisted in st. Missing or unreadable data yields an empty cart.
func NewStore(ctx context.Context, st storage.Store, logg *logger.Logger, recorder Recorder) (*Store, error) {
	if st == nil {
		return nil, errors.New("storage required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	s := &Store{storage: st, logg: logg, recorder: recorder, items: []LineItem{}}
	s.items = s.load(ctx)
	return s, nil
}

func (s *Store) load(ctx context.Context) []LineItem {
	raw, err := s.storage.Get(ctx, storage.KeyCart)
	if errors.Is(err, storage.ErrNotFound) {
		return []LineItem{}
	}
	if err != nil {
		s.logg.Warn(ctx, "cart storage unreadable, starting empty: "+err.Error())
		return []LineItem{}
	}
	items, err := Decode(raw)
	if err != nil {
		s.logg.Warn(ctx, "persisted cart is corrupt, starting empty: "+err.Error())
		return []LineItem{}
	}
	return items
}

// AddItem merges quantity into the product's line, or appends a new line. Quantities below
// one count as one.
func (s *Store) AddItem(ctx context.Context, product Product, quantity int) error {
	id := strings.TrimSpace(product.ID)
	if id == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if product.Price.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "product price must not be negative")
	}
	if quantity < 1 {
		quantity = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	merged := false
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		s.items = append(s.items, LineItem{
			ID:        id,
			Name:      product.Name,
			UnitPrice: product.Price,
			Quantity:  quantity,
			ImageRef:  product.ImageRef,
		})
	}
	return s.persistLocked(ctx, opAdd)
}

// RemoveItem drops the line for id. Unknown ids are a no-op.
func (s *Store) RemoveItem(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos := s.indexLocked(id)
	if pos < 0 {
		return nil
	}
	s.items = append(s.items[:pos], s.items[pos+1:]...)
	return s.persistLocked(ctx, opRemove)
}

// UpdateQuantity sets the quantity for id, clamped to at least one. Unknown ids are a no-op.
func (s *Store) UpdateQuantity(ctx context.Context, id string, quantity int) error {
	if quantity < 1 {
		quantity = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pos := s.indexLocked(id)
	if pos < 0 {
		return nil
	}
	s.items[pos].Quantity = quantity
	return s.persistLocked(ctx, opUpdate)
}

// Clear empties the cart.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = []LineItem{}
	return s.persistLocked(ctx, opClear)
}

// RemoveOrdered takes the ordered quantities out of the cart. Lines added or topped up after
// the order was snapshotted stay in the cart.
func (s *Store) RemoveOrdered(ctx context.Context, ordered []LineItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range ordered {
		pos := s.indexLocked(o.ID)
		if pos < 0 {
			continue
		}
		s.items[pos].Quantity -= o.Quantity
		if s.items[pos].Quantity < 1 {
			s.items = append(s.items[:pos], s.items[pos+1:]...)
		}
	}
	return s.persistLocked(ctx, opOrder)
}

func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Total(s.items)
}

func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ItemCount(s.items)
}

// Items returns a copy of the lines in insertion order.
func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyLocked()
}

func (s *Store) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items) == 0
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Items:     s.copyLocked(),
		Total:     Total(s.items),
		ItemCount: ItemCount(s.items),
	}
}

func (s *Store) copyLocked() []LineItem {
	out := make([]LineItem, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) indexLocked(id string) int {
	id = strings.TrimSpace(id)
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) persistLocked(ctx context.Context, op string) error {
	if s.recorder != nil {
		s.recorder.IncCartMutation(op)
	}
	raw, err := Encode(s.items)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode cart")
	}
	if err := s.storage.Set(ctx, storage.KeyCart, raw); err != nil {
		s.logg.Error(ctx, "failed to persist cart", err)
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart")
	}
	return nil
}
