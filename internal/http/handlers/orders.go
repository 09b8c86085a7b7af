package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RefreshStatus polls the gateway for the order's payment status
func RefreshStatus(svc CheckoutService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		info, err := svc.RefreshStatus(r.Context(), chi.URLParam(r, "orderNumber"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toResponse(info))
	}
}

// CancelPayment cancels the order's payment at the gateway
func CancelPayment(svc CheckoutService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		info, err := svc.Cancel(r.Context(), chi.URLParam(r, "orderNumber"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toResponse(info))
	}
}
