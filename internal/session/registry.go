package session

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/frozify/storefront/pkg/logger"
	"github.com/frozify/storefront/pkg/storage"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"
)

const storagePrefix = "session:"

// RegistryParams configures a Registry.
type RegistryParams struct {
	Storage   storage.Store
	API       API
	Recipient string
	Logger    *logger.Logger
	Recorder  Recorder
	Size      int
	IdleTTL   time.Duration
}

// Registry keeps live sessions in memory. Evicted sessions are rebuilt from storage on the
// next request, so only the in-flight checkout draft is lost.
type Registry struct {
	params RegistryParams
	cache  *expirable.LRU[string, *Session]
	group  singleflight.Group
}

func NewRegistry(p RegistryParams) (*Registry, error) {
	if p.Storage == nil {
		return nil, errors.New("storage required")
	}
	if p.API == nil {
		return nil, errors.New("storefront api required")
	}
	if p.Size <= 0 {
		p.Size = 1024
	}
	if p.IdleTTL <= 0 {
		p.IdleTTL = 30 * time.Minute
	}
	if p.Logger == nil {
		p.Logger = logger.Nop()
	}
	return &Registry{
		params: p,
		cache:  expirable.NewLRU[string, *Session](p.Size, nil, p.IdleTTL),
	}, nil
}

// Get returns the live session for id, building it on first use. Every hit restarts the
// idle timer.
func (r *Registry) Get(ctx context.Context, id string) (*Session, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("session id required")
	}
	if s, ok := r.cache.Get(id); ok {
		r.cache.Add(id, s)
		return s, nil
	}

	v, err, _ := r.group.Do(id, func() (any, error) {
		if s, ok := r.cache.Get(id); ok {
			return s, nil
		}
		s, err := New(context.WithoutCancel(ctx), Params{
			ID:        id,
			Storage:   storage.Scoped(r.params.Storage, storagePrefix+id),
			API:       r.params.API,
			Recipient: r.params.Recipient,
			Logger:    r.params.Logger,
			Recorder:  r.params.Recorder,
		})
		if err != nil {
			return nil, err
		}
		r.cache.Add(id, s)
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Session), nil
}

// Forget drops the live session for id. Persisted state is kept.
func (r *Registry) Forget(id string) {
	r.cache.Remove(id)
}

// Len reports how many sessions are live.
func (r *Registry) Len() int {
	return r.cache.Len()
}
