package controllers

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/frozify/storefront/api/responses"
	"github.com/frozify/storefront/api/validators"
	pkgerrors "github.com/frozify/storefront/pkg/errors"
	"github.com/frozify/storefront/pkg/logger"
	"github.com/frozify/storefront/pkg/storefront"
)

const (
	maxUploadBytes = 10 << 20
	maxNameLength  = 120
)

// CatalogWriter is the admin side of the storefront API.
type CatalogWriter interface {
	CreateProduct(ctx context.Context, token string, input storefront.ProductInput) (*storefront.Product, error)
	UpdateProduct(ctx context.Context, token, id string, input storefront.ProductInput) (*storefront.Product, error)
	DeleteProduct(ctx context.Context, token, id string) error
	UploadImage(ctx context.Context, token, filename string, content io.Reader) (string, error)
	CreateCategory(ctx context.Context, token string, input storefront.CategoryInput) (*storefront.Category, error)
	UpdateCategory(ctx context.Context, token, id string, input storefront.CategoryInput) (*storefront.Category, error)
	DeleteCategory(ctx context.Context, token, id string) error
}

func AdminProductCreate(api CatalogWriter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := requireSession(w, r, logg)
		if !ok {
			return
		}
		input, err := decodeProductInput(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := api.CreateProduct(r.Context(), s.Auth.Token(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

func AdminProductUpdate(api CatalogWriter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := requireSession(w, r, logg)
		if !ok {
			return
		}
		input, err := decodeProductInput(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := api.UpdateProduct(r.Context(), s.Auth.Token(), chi.URLParam(r, "id"), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func AdminProductDelete(api CatalogWriter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := requireSession(w, r, logg)
		if !ok {
			return
		}
		if err := api.DeleteProduct(r.Context(), s.Auth.Token(), chi.URLParam(r, "id")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// AdminUpload forwards the multipart "image" field to the storefront upload endpoint.
func AdminUpload(api CatalogWriter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := requireSession(w, r, logg)
		if !ok {
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid upload"))
			return
		}
		file, header, err := r.FormFile("image")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "image file required"))
			return
		}
		defer file.Close()

		path, err := api.UploadImage(r.Context(), s.Auth.Token(), header.Filename, file)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]string{"image": path})
	}
}

func AdminCategoryCreate(api CatalogWriter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := requireSession(w, r, logg)
		if !ok {
			return
		}
		input, err := decodeCategoryInput(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		category, err := api.CreateCategory(r.Context(), s.Auth.Token(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, category)
	}
}

func AdminCategoryUpdate(api CatalogWriter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := requireSession(w, r, logg)
		if !ok {
			return
		}
		input, err := decodeCategoryInput(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		category, err := api.UpdateCategory(r.Context(), s.Auth.Token(), chi.URLParam(r, "id"), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, category)
	}
}

func AdminCategoryDelete(api CatalogWriter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := requireSession(w, r, logg)
		if !ok {
			return
		}
		if err := api.DeleteCategory(r.Context(), s.Auth.Token(), chi.URLParam(r, "id")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func decodeProductInput(r *http.Request) (storefront.ProductInput, error) {
	var input storefront.ProductInput
	if err := validators.DecodeJSONBody(r, &input); err != nil {
		return input, err
	}
	input.Name = validators.SanitizeString(input.Name, maxNameLength)
	input.Category = strings.TrimSpace(input.Category)
	if input.Price.IsNegative() {
		return input, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}
	return input, nil
}

func decodeCategoryInput(r *http.Request) (storefront.CategoryInput, error) {
	var input storefront.CategoryInput
	if err := validators.DecodeJSONBody(r, &input); err != nil {
		return input, err
	}
	input.Name = validators.SanitizeString(input.Name, maxNameLength)
	return input, nil
}
