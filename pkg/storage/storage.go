// Package storage persists a shopper's client-side state (cart, credential token,
// delivery city) as string values under well-known keys.
package storage

import (
	"context"
	"errors"
	"strings"
)

// Well-known keys.
const (
	KeyCart  = "cartItems"
	KeyToken = "token"
	KeyCity  = "frozify_city"
)

// ErrNotFound is returned by Get when the key holds no value.
var ErrNotFound = errors.New("storage: key not found")

// Store is a string key/value store with local-storage semantics.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

type scoped struct {
	prefix string
	inner  Store
}

// Scoped namespaces every key of inner under prefix, one scope per session.
func Scoped(inner Store, prefix string) Store {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return inner
	}
	return &scoped{prefix: prefix, inner: inner}
}

func (s *scoped) key(key string) string {
	return s.prefix + ":" + key
}

func (s *scoped) Get(ctx context.Context, key string) (string, error) {
	return s.inner.Get(ctx, s.key(key))
}

func (s *scoped) Set(ctx context.Context, key, value string) error {
	return s.inner.Set(ctx, s.key(key), value)
}

func (s *scoped) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, s.key(key))
}
