package controllers

import (
	"net/http"

	"github.com/frozify/storefront/api/responses"
	"github.com/frozify/storefront/api/validators"
	"github.com/frozify/storefront/internal/city"
	pkgerrors "github.com/frozify/storefront/pkg/errors"
	"github.com/frozify/storefront/pkg/logger"
)

type selectCityRequest struct {
	Name string `json:"name" validate:"required"`
}

func CitiesList() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, city.Catalog())
	}
}

func CityCurrent(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := requireSession(w, r, logg)
		if !ok {
			return
		}
		current, selected := s.City.Current()
		if !selected {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "no city selected"))
			return
		}
		responses.WriteSuccess(w, current)
	}
}

func CitySelect(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := requireSession(w, r, logg)
		if !ok {
			return
		}
		var req selectCityRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		selected, err := s.City.Select(r.Context(), req.Name)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, selected)
	}
}
