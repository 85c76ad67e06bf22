package controllers

import (
	"net/http"

	"github.com/frozify/storefront/api/middleware"
	"github.com/frozify/storefront/api/responses"
	"github.com/frozify/storefront/internal/session"
	pkgerrors "github.com/frozify/storefront/pkg/errors"
	"github.com/frozify/storefront/pkg/logger"
)

func requireSession(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (*session.Session, bool) {
	s := middleware.SessionFromContext(r.Context())
	if s == nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session context missing"))
		return nil, false
	}
	return s, true
}
