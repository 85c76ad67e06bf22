package controllers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/frozify/storefront/api/responses"
	pkgerrors "github.com/frozify/storefront/pkg/errors"
	"github.com/frozify/storefront/pkg/logger"
	"github.com/frozify/storefront/pkg/pagination"
	"github.com/frozify/storefront/pkg/storefront"
)

// CatalogReader is the public read side of the storefront API.
type CatalogReader interface {
	ListProducts(ctx context.Context) ([]storefront.Product, error)
	GetProduct(ctx context.Context, id string) (*storefront.Product, error)
	ListCategories(ctx context.Context) ([]storefront.Category, error)
}

// ProductsList returns the catalog, optionally narrowed by ?category=. With ?limit= or
// ?cursor= the response is a page object instead of the bare list.
func ProductsList(api CatalogReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		products, err := api.ListProducts(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		category := strings.TrimSpace(r.URL.Query().Get("category"))
		if category != "" {
			filtered := make([]storefront.Product, 0, len(products))
			for _, p := range products {
				if strings.EqualFold(p.Category, category) {
					filtered = append(filtered, p)
				}
			}
			products = filtered
		}

		query := r.URL.Query()
		if !query.Has("limit") && !query.Has("cursor") {
			responses.WriteSuccess(w, products)
			return
		}
		limit, err := strconv.Atoi(query.Get("limit"))
		if err != nil && query.Get("limit") != "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "limit must be a number"))
			return
		}
		page, err := pagination.Window(products, pagination.Params{Limit: limit, Cursor: query.Get("cursor")},
			func(p storefront.Product) string { return p.ID })
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor"))
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func ProductGet(api CatalogReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(chi.URLParam(r, "id"))
		if id == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "product id required"))
			return
		}
		product, err := api.GetProduct(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func CategoriesList(api CatalogReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := api.ListCategories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, categories)
	}
}
