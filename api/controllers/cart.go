package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/frozify/storefront/api/responses"
	"github.com/frozify/storefront/api/validators"
	"github.com/frozify/storefront/internal/cart"
	pkgerrors "github.com/frozify/storefront/pkg/errors"
	"github.com/frozify/storefront/pkg/logger"
	"github.com/frozify/storefront/pkg/storefront"
)

type productGetter interface {
	GetProduct(ctx context.Context, id string) (*storefront.Product, error)
}

type addItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gte=0"`
}

type updateItemRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

func CartGet(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := requireSession(w, r, logg)
		if !ok {
			return
		}
		responses.WriteSuccess(w, s.Cart.Snapshot())
	}
}

// CartAddItem adds a catalog product. Name and price come from the API, never the request.
func CartAddItem(api productGetter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := requireSession(w, r, logg)
		if !ok {
			return
		}

		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := api.GetProduct(r.Context(), strings.TrimSpace(payload.ProductID))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := s.Cart.AddItem(r.Context(), cart.FromCatalog(*product), payload.Quantity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, s.Cart.Snapshot())
	}
}

// CartUpdateItem sets a line quantity. The field must be present; values below one are raised to one.
func CartUpdateItem(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := requireSession(w, r, logg)
		if !ok {
			return
		}

		var payload updateItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := s.Cart.UpdateQuantity(r.Context(), chi.URLParam(r, "id"), *payload.Quantity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, s.Cart.Snapshot())
	}
}

func CartRemoveItem(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := requireSession(w, r, logg)
		if !ok {
			return
		}
		id := strings.TrimSpace(chi.URLParam(r, "id"))
		if id == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "item id required"))
			return
		}
		if err := s.Cart.RemoveItem(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, s.Cart.Snapshot())
	}
}

func CartClear(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := requireSession(w, r, logg)
		if !ok {
			return
		}
		if err := s.Cart.Clear(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, s.Cart.Snapshot())
	}
}
