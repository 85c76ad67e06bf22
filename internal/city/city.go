package city

import (
	"context"
	"errors"
	"strings"
	"sync"

	pkgerrors "github.com/frozify/storefront/pkg/errors"
	"github.com/frozify/storefront/pkg/logger"
	"github.com/frozify/storefront/pkg/storage"
)

// City is a delivery area. Unavailable cities are listed as coming soon.
type City struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
}

var catalog = []City{
	{Name: "Khanewal", Available: true},
	{Name: "Multan"},
	{Name: "Lahore"},
	{Name: "Karachi"},
	{Name: "Islamabad"},
	{Name: "Faisalabad"},
	{Name: "Rawalpindi"},
	{Name: "Bahawalpur"},
}

// Catalog returns every city in display order.
func Catalog() []City {
	out := make([]City, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup finds a city by case-insensitive name.
func Lookup(name string) (City, bool) {
	name = strings.TrimSpace(name)
	for _, c := range catalog {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return City{}, false
}

// Store remembers the shopper's delivery city.
type Store struct {
	mu      sync.Mutex
	current *City
	storage storage.Store
	logg    *logger.Logger
}

// NewStore loads the persisted choice. Unknown or no longer available cities are ignored.
func NewStore(ctx context.Context, st storage.Store, logg *logger.Logger) (*Store, error) {
	if st == nil {
		return nil, errors.New("storage required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	s := &Store{storage: st, logg: logg}

	raw, err := st.Get(ctx, storage.KeyCity)
	switch {
	case errors.Is(err, storage.ErrNotFound):
	case err != nil:
		logg.Warn(ctx, "city choice unreadable: "+err.Error())
	default:
		if c, ok := Lookup(raw); ok && c.Available {
			s.current = &c
		} else {
			logg.Warn(ctx, "ignoring persisted city "+raw)
		}
	}
	return s, nil
}

// Select sets the delivery city. Only available cities may be chosen.
func (s *Store) Select(ctx context.Context, name string) (City, error) {
	c, ok := Lookup(name)
	if !ok {
		return City{}, pkgerrors.New(pkgerrors.CodeNotFound, "unknown city")
	}
	if !c.Available {
		return City{}, pkgerrors.New(pkgerrors.CodeValidation, "delivery to "+c.Name+" is coming soon")
	}

	s.mu.Lock()
	s.current = &c
	s.mu.Unlock()

	if err := s.storage.Set(ctx, storage.KeyCity, c.Name); err != nil {
		s.logg.Error(ctx, "failed to persist city", err)
		return c, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist city")
	}
	return c, nil
}

// Current returns the chosen city, if any.
func (s *Store) Current() (City, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return City{}, false
	}
	return *s.current, true
}
