package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// BuckarooPush acknowledges a push with the status the provider chose
func BuckarooPush(svc CheckoutService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := svc.HandlePush(r.Context(), chi.URLParam(r, "orderNumber"), r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		status := res.HTTPStatus()
		if status != http.StatusOK {
			http.Error(w, "bad payload", status)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}
