package city

import (
	"context"
	"testing"

	pkgerrors "github.com/frozify/storefront/pkg/errors"
	"github.com/frozify/storefront/pkg/logger"
	"github.com/frozify/storefront/pkg/storage"
)

func TestCatalogOnlyKhanewalAvailable(t *testing.T) {
	var available []string
	for _, c := range Catalog() {
		if c.Available {
			available = append(available, c.Name)
		}
	}
	if len(Catalog()) != 8 || len(available) != 1 || available[0] != "Khanewal" {
		t.Fatalf("unexpected catalog: %+v", Catalog())
	}
}

func TestSelectPersists(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemory()
	s, err := NewStore(ctx, st, logger.Nop())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if _, ok := s.Current(); ok {
		t.Fatalf("expected no city initially")
	}

	c, err := s.Select(ctx, "khanewal")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if c.Name != "Khanewal" {
		t.Fatalf("unexpected city %+v", c)
	}
	if got, _ := st.Get(ctx, storage.KeyCity); got != "Khanewal" {
		t.Fatalf("city not persisted: %q", got)
	}

	reloaded, _ := NewStore(ctx, st, logger.Nop())
	if cur, ok := reloaded.Current(); !ok || cur.Name != "Khanewal" {
		t.Fatalf("expected persisted city, got %+v", cur)
	}
}

func TestSelectRejectsComingSoonAndUnknown(t *testing.T) {
	ctx := context.Background()
	s, _ := NewStore(ctx, storage.NewMemory(), logger.Nop())

	if _, err := s.Select(ctx, "Lahore"); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := s.Select(ctx, "Atlantis"); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, ok := s.Current(); ok {
		t.Fatalf("rejected selection must not stick")
	}
}

func TestNewStoreIgnoresUnavailablePersistedCity(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemory()
	_ = st.Set(ctx, storage.KeyCity, "Karachi")
	s, _ := NewStore(ctx, st, logger.Nop())
	if _, ok := s.Current(); ok {
		t.Fatalf("unavailable city should be ignored")
	}
}
