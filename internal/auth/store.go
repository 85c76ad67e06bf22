package auth

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/frozify/storefront/pkg/enums"
	pkgerrors "github.com/frozify/storefront/pkg/errors"
	"github.com/frozify/storefront/pkg/logger"
	"github.com/frozify/storefront/pkg/storage"
	"github.com/frozify/storefront/pkg/storefront"
)

type currentUserLoader interface {
	CurrentUser(ctx context.Context, token string) (*storefront.User, error)
}

// Store tracks the current identity and the persisted API credential token.
type Store struct {
	mu       sync.Mutex
	identity *Identity
	token    string
	loading  bool
	// generation advances on Login and Logout so a slow Restore cannot overwrite them.
	generation uint64

	storage storage.Store
	api     currentUserLoader
	logg    *logger.Logger
}

func NewStore(st storage.Store, api currentUserLoader, logg *logger.Logger) (*Store, error) {
	if st == nil {
		return nil, errors.New("storage required")
	}
	if api == nil {
		return nil, errors.New("current user loader required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Store{storage: st, api: api, logg: logg}, nil
}

// Login records identity and persists token. Credentials are checked by the caller.
func (s *Store) Login(ctx context.Context, token string, identity *Identity) error {
	token = strings.TrimSpace(token)
	if token == "" || identity == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "token and identity are required")
	}

	s.mu.Lock()
	s.generation++
	copied := *identity
	s.identity = &copied
	s.token = token
	s.mu.Unlock()

	if err := s.storage.Set(ctx, storage.KeyToken, token); err != nil {
		s.logg.Error(ctx, "failed to persist auth token", err)
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist auth token")
	}
	return nil
}

// Logout forgets the identity and deletes the persisted token.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.generation++
	s.identity = nil
	s.token = ""
	s.mu.Unlock()

	if err := s.storage.Delete(ctx, storage.KeyToken); err != nil {
		s.logg.Error(ctx, "failed to delete auth token", err)
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete auth token")
	}
	return nil
}

// Restore rebuilds the identity from the persisted token by asking the API who it belongs to.
// Failures leave the identity absent and are never returned; an upstream 401 also drops the
// stale token. Loading reports true while the lookup is in flight.
func (s *Store) Restore(ctx context.Context) {
	token, err := s.storage.Get(ctx, storage.KeyToken)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logg.Warn(ctx, "auth token unreadable: "+err.Error())
		}
		return
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return
	}

	s.mu.Lock()
	gen := s.generation
	s.loading = true
	s.token = token
	s.mu.Unlock()

	user, err := s.api.CurrentUser(ctx, token)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if gen != s.generation {
		return
	}
	if err != nil {
		s.identity = nil
		if pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
			s.token = ""
			if delErr := s.storage.Delete(ctx, storage.KeyToken); delErr != nil {
				s.logg.Warn(ctx, "failed to drop stale auth token: "+delErr.Error())
			}
			s.logg.Info(ctx, "stored auth token rejected, signed out")
			return
		}
		s.logg.Warn(ctx, "session restore failed: "+err.Error())
		return
	}
	s.identity = IdentityFromUser(*user)
}

// Current returns a copy of the identity, or nil when signed out.
func (s *Store) Current() *Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return nil
	}
	copied := *s.identity
	return &copied
}

// Token is the API credential, empty when signed out.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return ""
	}
	return s.token
}

// Role returns the identity's role, or "" when signed out.
func (s *Store) Role() enums.Role {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return ""
	}
	return s.identity.Role
}

func (s *Store) IsAdmin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity.IsAdmin()
}

func (s *Store) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity != nil
}

func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}
