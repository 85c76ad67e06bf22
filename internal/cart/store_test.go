package cart

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	pkgerrors "github.com/frozify/storefront/pkg/errors"
	"github.com/frozify/storefront/pkg/logger"
	"github.com/frozify/storefront/pkg/storage"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
)

var (
	nuggets = Product{ID: "p1", Name: "Chicken Nuggets", Price: decimal.NewFromInt(850), ImageRef: "/uploads/n.jpg"}
	samosa  = Product{ID: "p2", Name: "Samosa", Price: decimal.RequireFromString("120.50")}
)

var decimalCmp = cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })

type failingStorage struct {
	storage.Store
	failSet bool
	getErr  error
}

func (f *failingStorage) Get(ctx context.Context, key string) (string, error) {
	if f.getErr != nil {
		return "", f.getErr
	}
	return f.Store.Get(ctx, key)
}

func (f *failingStorage) Set(ctx context.Context, key, value string) error {
	if f.failSet {
		return errors.New("disk full")
	}
	return f.Store.Set(ctx, key, value)
}

type recorderStub struct {
	mu  sync.Mutex
	ops []string
}

func (r *recorderStub) IncCartMutation(op string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, op)
}

func newStore(t *testing.T, st storage.Store) *Store {
	t.Helper()
	s, err := NewStore(context.Background(), st, logger.Nop(), nil)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return s
}

func TestAddItemMergesAndTotals(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newStore(t, storage.NewMemory())

	if err := s.AddItem(ctx, nuggets, 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.AddItem(ctx, samosa, 2); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.AddItem(ctx, nuggets, 2); err != nil {
		t.Fatalf("add: %v", err)
	}

	want := []LineItem{
		{ID: "p1", Name: "Chicken Nuggets", UnitPrice: decimal.NewFromInt(850), Quantity: 3, ImageRef: "/uploads/n.jpg"},
		{ID: "p2", Name: "Samosa", UnitPrice: decimal.RequireFromString("120.50"), Quantity: 2},
	}
	if diff := cmp.Diff(want, s.Items(), decimalCmp); diff != "" {
		t.Fatalf("items mismatch (-want +got):\n%s", diff)
	}
	if !s.Total().Equal(decimal.RequireFromString("2791")) {
		t.Fatalf("unexpected total %s", s.Total())
	}
	if s.ItemCount() != 5 {
		t.Fatalf("unexpected item count %d", s.ItemCount())
	}
}

func TestAddItemClampsQuantityAndValidates(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newStore(t, storage.NewMemory())

	if err := s.AddItem(ctx, nuggets, 0); err != nil {
		t.Fatalf("add: %v", err)
	}
	if got := s.Items()[0].Quantity; got != 1 {
		t.Fatalf("expected quantity clamped to 1, got %d", got)
	}

	err := s.AddItem(ctx, Product{Name: "nameless"}, 1)
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	err = s.AddItem(ctx, Product{ID: "neg", Price: decimal.NewFromInt(-1)}, 1)
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for negative price, got %v", err)
	}
}

func TestUpdateQuantityClampsAndIgnoresUnknown(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newStore(t, storage.NewMemory())
	_ = s.AddItem(ctx, nuggets, 4)

	if err := s.UpdateQuantity(ctx, "p1", 0); err != nil {
		t.Fatalf("update: %v", err)
	}
	if got := s.Items()[0].Quantity; got != 1 {
		t.Fatalf("expected clamp to 1, got %d", got)
	}
	if err := s.UpdateQuantity(ctx, "p1", -3); err != nil {
		t.Fatalf("update: %v", err)
	}
	if got := s.Items()[0].Quantity; got != 1 {
		t.Fatalf("expected clamp to 1, got %d", got)
	}
	if err := s.UpdateQuantity(ctx, "p1", 7); err != nil {
		t.Fatalf("update: %v", err)
	}
	if got := s.ItemCount(); got != 7 {
		t.Fatalf("expected 7 items, got %d", got)
	}

	before := s.Items()
	if err := s.UpdateQuantity(ctx, "ghost", 3); err != nil {
		t.Fatalf("update unknown: %v", err)
	}
	if diff := cmp.Diff(before, s.Items(), decimalCmp); diff != "" {
		t.Fatalf("unknown id should be a no-op:\n%s", diff)
	}
}

func TestRemoveAndClear(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newStore(t, storage.NewMemory())
	_ = s.AddItem(ctx, nuggets, 1)
	_ = s.AddItem(ctx, samosa, 1)

	if err := s.RemoveItem(ctx, "missing"); err != nil {
		t.Fatalf("remove missing: %v", err)
	}
	if err := s.RemoveItem(ctx, "p1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if items := s.Items(); len(items) != 1 || items[0].ID != "p2" {
		t.Fatalf("unexpected items %+v", items)
	}
	if err := s.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if !s.IsEmpty() || !s.Total().IsZero() || s.ItemCount() != 0 {
		t.Fatalf("expected empty cart after clear")
	}
}

func TestCartSurvivesReload(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mem := storage.NewMemory()
	s := newStore(t, mem)
	_ = s.AddItem(ctx, nuggets, 2)
	_ = s.AddItem(ctx, samosa, 1)

	reloaded := newStore(t, mem)
	if diff := cmp.Diff(s.Snapshot(), reloaded.Snapshot(), decimalCmp); diff != "" {
		t.Fatalf("reloaded cart differs (-before +after):\n%s", diff)
	}

	raw, err := mem.Get(ctx, storage.KeyCart)
	if err != nil {
		t.Fatalf("persisted cart missing: %v", err)
	}
	if !strings.Contains(raw, `"qty":2`) || !strings.Contains(raw, `"_id":"p1"`) {
		t.Fatalf("unexpected persisted form %s", raw)
	}
}

func TestCorruptStorageStartsEmpty(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mem := storage.NewMemory()
	_ = mem.Set(ctx, storage.KeyCart, "{not json")

	buf := &bytes.Buffer{}
	logg := logger.New(logger.Options{ServiceName: "test", Output: buf})
	s, err := NewStore(ctx, mem, logg, nil)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if !s.IsEmpty() {
		t.Fatalf("expected empty cart from corrupt data")
	}
	if !strings.Contains(buf.String(), "corrupt") {
		t.Fatalf("expected warning log, got %s", buf.String())
	}

	failing := &failingStorage{Store: storage.NewMemory(), getErr: errors.New("redis timeout")}
	s = newStore(t, failing)
	if !s.IsEmpty() {
		t.Fatalf("expected empty cart when storage read fails")
	}
}

func TestPersistFailureKeepsMutation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	failing := &failingStorage{Store: storage.NewMemory(), failSet: true}
	s := newStore(t, failing)

	err := s.AddItem(ctx, nuggets, 1)
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if s.ItemCount() != 1 {
		t.Fatalf("in-memory mutation should be kept, count=%d", s.ItemCount())
	}
}

func TestRecorderSeesMutations(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	rec := &recorderStub{}
	s, err := NewStore(ctx, storage.NewMemory(), nil, rec)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	_ = s.AddItem(ctx, nuggets, 1)
	_ = s.UpdateQuantity(ctx, "p1", 2)
	_ = s.RemoveItem(ctx, "p1")
	_ = s.Clear(ctx)

	want := []string{opAdd, opUpdate, opRemove, opClear}
	if diff := cmp.Diff(want, rec.ops); diff != "" {
		t.Fatalf("recorded ops mismatch:\n%s", diff)
	}
}

func TestConcurrentAddsAreSerialized(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newStore(t, storage.NewMemory())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.AddItem(ctx, nuggets, 1)
		}()
	}
	wg.Wait()

	if items := s.Items(); len(items) != 1 || items[0].Quantity != 50 {
		t.Fatalf("expected one line with quantity 50, got %+v", items)
	}
}

func TestNewStoreRequiresStorage(t *testing.T) {
	t.Parallel()
	if _, err := NewStore(context.Background(), nil, nil, nil); err == nil {
		t.Fatal("expected missing storage to fail")
	}
}

func TestRemoveOrderedLeavesLaterAdditions(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemory()
	s, err := NewStore(ctx, st, logger.Nop(), nil)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	_ = s.AddItem(ctx, nuggets, 2)
	ordered := s.Items()

	_ = s.AddItem(ctx, nuggets, 1)
	_ = s.AddItem(ctx, samosa, 1)
	if err := s.RemoveOrdered(ctx, ordered); err != nil {
		t.Fatalf("remove ordered: %v", err)
	}

	want := []LineItem{
		{ID: "p1", Name: "Chicken Nuggets", UnitPrice: nuggets.Price, Quantity: 1, ImageRef: "/uploads/n.jpg"},
		{ID: "p2", Name: "Samosa", UnitPrice: samosa.Price, Quantity: 1},
	}
	if diff := cmp.Diff(want, s.Items(), decimalCmp); diff != "" {
		t.Fatalf("cart mismatch (-want +got):\n%s", diff)
	}

	reloaded, _ := NewStore(ctx, st, logger.Nop(), nil)
	if diff := cmp.Diff(want, reloaded.Items(), decimalCmp); diff != "" {
		t.Fatalf("persisted cart mismatch (-want +got):\n%s", diff)
	}

	if err := s.RemoveOrdered(ctx, s.Items()); err != nil {
		t.Fatalf("remove ordered: %v", err)
	}
	if !s.IsEmpty() {
		t.Fatalf("ordering every line should empty the cart")
	}
}
