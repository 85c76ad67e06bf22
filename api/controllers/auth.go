package controllers

import (
	"net/http"

	"github.com/frozify/storefront/api/responses"
	"github.com/frozify/storefront/api/validators"
	"github.com/frozify/storefront/internal/auth"
	pkgerrors "github.com/frozify/storefront/pkg/errors"
	"github.com/frozify/storefront/pkg/logger"
)

// AuthLogin signs the session in against the storefront API.
func AuthLogin(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := requireSession(w, r, logg)
		if !ok {
			return
		}

		var req auth.LoginRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		identity, err := svc.LoginWithPassword(r.Context(), s.Auth, req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, identity)
	}
}

func AuthRegister(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := requireSession(w, r, logg)
		if !ok {
			return
		}

		var req auth.RegisterRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		identity, err := svc.Register(r.Context(), s.Auth, req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, identity)
	}
}

// AuthLogout is local only: the API token is forgotten, the session itself survives.
func AuthLogout(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := requireSession(w, r, logg)
		if !ok {
			return
		}
		if err := s.Auth.Logout(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func AuthMe(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := requireSession(w, r, logg)
		if !ok {
			return
		}
		identity := s.Auth.Current()
		if identity == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "not signed in"))
			return
		}
		responses.WriteSuccess(w, identity)
	}
}
