package handlers

import (
	"net/http"
	"strings"

	middlewarex "buckaroopay/internal/http/middleware"
	"buckaroopay/internal/services/checkout"

	"github.com/go-chi/chi/v5"
)

// StartCheckout redirects the shopper to the gateway's payment page. API
// clients asking for JSON get the form instead.
func StartCheckout(svc CheckoutService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		number := chi.URLParam(r, "orderNumber")
		client, _ := middlewarex.GetClientInfo(r.Context())

		form, err := svc.StartCheckout(r.Context(), number, client)
		if err != nil {
			writeError(w, r, err)
			return
		}

		if strings.Contains(r.Header.Get("Accept"), "application/json") {
			writeJSON(w, http.StatusOK, form)
			return
		}
		http.Redirect(w, r, form.Form.Action, http.StatusFound)
	}
}

// Redirect sends the shopper on to the configured continue/cancel/error URL
func Redirect(svc CheckoutService, kind checkout.RedirectKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		target, err := svc.RedirectURL(r.Context(), chi.URLParam(r, "orderNumber"), kind)
		if err != nil {
			writeError(w, r, err)
			return
		}
		http.Redirect(w, r, target, http.StatusFound)
	}
}
