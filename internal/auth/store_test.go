package auth

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/frozify/storefront/pkg/enums"
	pkgerrors "github.com/frozify/storefront/pkg/errors"
	"github.com/frozify/storefront/pkg/logger"
	"github.com/frozify/storefront/pkg/storage"
	"github.com/frozify/storefront/pkg/storefront"
)

type meStub struct {
	mu    sync.Mutex
	user  *storefront.User
	err   error
	calls []string
	// block, when set, holds CurrentUser until closed.
	block chan struct{}
}

func (m *meStub) CurrentUser(_ context.Context, token string) (*storefront.User, error) {
	m.mu.Lock()
	m.calls = append(m.calls, token)
	block := m.block
	m.mu.Unlock()
	if block != nil {
		<-block
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.user, nil
}

func newTestStore(t *testing.T, st storage.Store, api currentUserLoader) *Store {
	t.Helper()
	s, err := NewStore(st, api, logger.Nop())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return s
}

func TestLoginPersistsToken(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemory()
	s := newTestStore(t, st, &meStub{})

	if err := s.Login(ctx, "tok-1", &Identity{ID: "u1", Username: "ayesha", Role: enums.RoleAdmin}); err != nil {
		t.Fatalf("login: %v", err)
	}
	if !s.IsAuthenticated() || !s.IsAdmin() {
		t.Fatalf("expected authenticated admin")
	}
	if s.Token() != "tok-1" {
		t.Fatalf("unexpected token %q", s.Token())
	}
	if got, _ := st.Get(ctx, storage.KeyToken); got != "tok-1" {
		t.Fatalf("token not persisted: %q", got)
	}
}

func TestLoginRequiresTokenAndIdentity(t *testing.T) {
	s := newTestStore(t, storage.NewMemory(), &meStub{})
	err := s.Login(context.Background(), " ", &Identity{ID: "u1"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if s.IsAuthenticated() {
		t.Fatalf("identity must stay absent")
	}
}

func TestLogoutClearsToken(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemory()
	s := newTestStore(t, st, &meStub{})
	_ = s.Login(ctx, "tok-1", &Identity{ID: "u1", Role: enums.RoleCustomer})

	if err := s.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if s.Current() != nil || s.Token() != "" || s.Role() != "" {
		t.Fatalf("expected signed out store")
	}
	if _, err := st.Get(ctx, storage.KeyToken); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected token removed, got %v", err)
	}
}

func TestRestoreWithoutTokenSkipsAPI(t *testing.T) {
	api := &meStub{}
	s := newTestStore(t, storage.NewMemory(), api)
	s.Restore(context.Background())
	if len(api.calls) != 0 {
		t.Fatalf("api should not be called without token")
	}
	if s.IsAuthenticated() || s.Loading() {
		t.Fatalf("unexpected state after restore")
	}
}

func TestRestoreLoadsIdentity(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemory()
	_ = st.Set(ctx, storage.KeyToken, "tok-9")
	api := &meStub{user: &storefront.User{ID: "u9", Username: "bilal", Email: "b@example.com", Role: "ADMIN"}}
	s := newTestStore(t, st, api)

	s.Restore(ctx)

	cur := s.Current()
	if cur == nil || cur.ID != "u9" || cur.Role != enums.RoleAdmin {
		t.Fatalf("unexpected identity %+v", cur)
	}
	if s.Token() != "tok-9" {
		t.Fatalf("unexpected token %q", s.Token())
	}
	if len(api.calls) != 1 || api.calls[0] != "tok-9" {
		t.Fatalf("unexpected api calls %v", api.calls)
	}
}

func TestRestoreUnauthorizedDropsToken(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemory()
	_ = st.Set(ctx, storage.KeyToken, "stale")
	api := &meStub{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "jwt expired")}
	s := newTestStore(t, st, api)

	s.Restore(ctx)

	if s.IsAuthenticated() {
		t.Fatalf("identity must be absent")
	}
	if _, err := st.Get(ctx, storage.KeyToken); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("stale token should be dropped, got %v", err)
	}
}

func TestRestoreOutageKeepsToken(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemory()
	_ = st.Set(ctx, storage.KeyToken, "tok")
	api := &meStub{err: pkgerrors.New(pkgerrors.CodeDependency, "upstream down")}
	s := newTestStore(t, st, api)

	s.Restore(ctx)

	if s.IsAuthenticated() {
		t.Fatalf("identity must be absent")
	}
	if got, _ := st.Get(ctx, storage.KeyToken); got != "tok" {
		t.Fatalf("token should survive an outage, got %q", got)
	}
}

func TestRestoreReportsLoadingAndYieldsToLogin(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemory()
	_ = st.Set(ctx, storage.KeyToken, "old")
	api := &meStub{user: &storefront.User{ID: "old-user"}, block: make(chan struct{})}
	s := newTestStore(t, st, api)

	done := make(chan struct{})
	go func() {
		s.Restore(ctx)
		close(done)
	}()

	for {
		api.mu.Lock()
		n := len(api.calls)
		api.mu.Unlock()
		if n == 1 {
			break
		}
	}
	if !s.Loading() {
		t.Fatalf("expected loading while restore is in flight")
	}

	if err := s.Login(ctx, "new", &Identity{ID: "new-user"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	close(api.block)
	<-done

	if s.Loading() {
		t.Fatalf("loading should clear")
	}
	if cur := s.Current(); cur == nil || cur.ID != "new-user" {
		t.Fatalf("restore overwrote a newer login: %+v", cur)
	}
}
