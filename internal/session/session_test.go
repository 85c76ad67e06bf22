package session

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/frozify/storefront/internal/cart"
	pkgerrors "github.com/frozify/storefront/pkg/errors"
	"github.com/frozify/storefront/pkg/logger"
	"github.com/frozify/storefront/pkg/storage"
	"github.com/frozify/storefront/pkg/storefront"
	"github.com/shopspring/decimal"
)

type apiStub struct {
	meCalls atomic.Int32
}

func (a *apiStub) CurrentUser(_ context.Context, token string) (*storefront.User, error) {
	a.meCalls.Add(1)
	if token != "good" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "bad token")
	}
	return &storefront.User{ID: "u1", Username: "ayesha", Role: "customer"}, nil
}

func (a *apiStub) CreateOrder(context.Context, string, string, storefront.OrderPayload) (*storefront.OrderResult, error) {
	return &storefront.OrderResult{ID: "ord-1"}, nil
}

func TestNewRestoresIdentity(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemory()
	_ = st.Set(ctx, storage.KeyToken, "good")

	s, err := New(ctx, Params{ID: "s1", Storage: st, API: &apiStub{}, Recipient: "923704152383", Logger: logger.Nop()})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if cur := s.Auth.Current(); cur == nil || cur.Username != "ayesha" {
		t.Fatalf("expected restored identity, got %+v", cur)
	}
	if s.Cart == nil || s.City == nil || s.Checkout == nil {
		t.Fatalf("session not fully wired")
	}
}

func TestRegistryReusesAndRebuilds(t *testing.T) {
	ctx := context.Background()
	base := storage.NewMemory()
	api := &apiStub{}
	reg, err := NewRegistry(RegistryParams{Storage: base, API: api, Recipient: "923704152383", Size: 4, IdleTTL: time.Minute})
	if err != nil {
		t.Fatalf("registry: %v", err)
	}

	first, err := reg.Get(ctx, "abc")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	product := cart.Product{ID: "p1", Name: "Nuggets", Price: decimal.NewFromInt(450)}
	if err := first.Cart.AddItem(ctx, product, 2); err != nil {
		t.Fatalf("add: %v", err)
	}

	again, _ := reg.Get(ctx, "abc")
	if again != first {
		t.Fatalf("expected cached session")
	}

	reg.Forget("abc")
	rebuilt, _ := reg.Get(ctx, "abc")
	if rebuilt == first {
		t.Fatalf("expected a rebuilt session")
	}
	if rebuilt.Cart.ItemCount() != 2 {
		t.Fatalf("cart should be rebuilt from storage, got %d", rebuilt.Cart.ItemCount())
	}

	other, _ := reg.Get(ctx, "xyz")
	if !other.Cart.IsEmpty() {
		t.Fatalf("sessions must not share a cart")
	}
	if _, err := base.Get(ctx, "session:abc:"+storage.KeyCart); err != nil {
		t.Fatalf("expected scoped cart key: %v", err)
	}
}

func TestRegistryBuildsOncePerID(t *testing.T) {
	ctx := context.Background()
	base := storage.NewMemory()
	api := &apiStub{}
	reg, _ := NewRegistry(RegistryParams{Storage: base, API: api, Recipient: "923704152383"})

	var wg sync.WaitGroup
	got := make([]*Session, 8)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i], _ = reg.Get(ctx, "same")
		}(i)
	}
	wg.Wait()
	for _, s := range got[1:] {
		if s != got[0] {
			t.Fatalf("concurrent gets built different sessions")
		}
	}
	if reg.Len() != 1 {
		t.Fatalf("expected one live session, got %d", reg.Len())
	}
}

func TestRegistryRejectsEmptyID(t *testing.T) {
	reg, _ := NewRegistry(RegistryParams{Storage: storage.NewMemory(), API: &apiStub{}, Recipient: "1"})
	if _, err := reg.Get(context.Background(), " "); err == nil {
		t.Fatalf("expected error")
	}
}

func TestRegistryKeepsActiveSessionPastIdleTTL(t *testing.T) {
	ctx := context.Background()
	reg, err := NewRegistry(RegistryParams{Storage: storage.NewMemory(), API: &apiStub{}, Recipient: "1", IdleTTL: 300 * time.Millisecond})
	if err != nil {
		t.Fatalf("registry: %v", err)
	}

	first, err := reg.Get(ctx, "abc")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		time.Sleep(100 * time.Millisecond)
		s, err := reg.Get(ctx, "abc")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if s != first {
			t.Fatal("active session was rebuilt while in use")
		}
	}

	time.Sleep(500 * time.Millisecond)
	idle, err := reg.Get(ctx, "abc")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if idle == first {
		t.Fatal("idle session should have expired")
	}
}
