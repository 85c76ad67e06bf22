package controllers

import (
	"net/http"

	"github.com/frozify/storefront/api/responses"
	"github.com/frozify/storefront/api/validators"
	"github.com/frozify/storefront/internal/checkout"
	"github.com/frozify/storefront/pkg/logger"
)

type stepResponse struct {
	Moved    bool          `json:"moved"`
	Checkout checkout.View `json:"checkout"`
}

type shippingRequest struct {
	Address string `json:"address"`
	City    string `json:"city"`
	Phone   string `json:"phone"`
}

func CheckoutView(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := requireSession(w, r, logg)
		if !ok {
			return
		}
		responses.WriteSuccess(w, s.Checkout.View())
	}
}

// CheckoutNext advances the wizard. A blocked move is reported with moved=false, not an error.
func CheckoutNext(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := requireSession(w, r, logg)
		if !ok {
			return
		}
		moved := s.Checkout.Next()
		responses.WriteSuccess(w, stepResponse{Moved: moved, Checkout: s.Checkout.View()})
	}
}

func CheckoutBack(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := requireSession(w, r, logg)
		if !ok {
			return
		}
		moved := s.Checkout.Back()
		responses.WriteSuccess(w, stepResponse{Moved: moved, Checkout: s.Checkout.View()})
	}
}

// CheckoutShipping stores the shipping draft. Blank fields are accepted and simply keep Next blocked.
func CheckoutShipping(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := requireSession(w, r, logg)
		if !ok {
			return
		}
		var req shippingRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		details := checkout.ShippingDetails{Address: req.Address, City: req.City, Phone: req.Phone}
		if err := s.Checkout.SetShipping(details); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, s.Checkout.View())
	}
}

func CheckoutSubmit(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := requireSession(w, r, logg)
		if !ok {
			return
		}
		receipt, err := s.Checkout.Submit(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, receipt)
	}
}

func CheckoutReset(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := requireSession(w, r, logg)
		if !ok {
			return
		}
		s.Checkout.Reset()
		responses.WriteSuccess(w, s.Checkout.View())
	}
}
