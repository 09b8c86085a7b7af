package httpx

import (
	"encoding/json"
	"net/http"

	"buckaroopay/internal/http/handlers"
	middlewarex "buckaroopay/internal/http/middleware"
	"buckaroopay/internal/provider"
	"buckaroopay/internal/services/checkout"
	"buckaroopay/internal/store/repositories"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// RouterDependencies holds all dependencies for the HTTP router
type RouterDependencies struct {
	AdminToken       string
	AESKey           []byte
	Checkout         handlers.CheckoutService
	Settings         repositories.SettingsRepository
	ProviderRegistry *provider.Registry
}

// NewRouter creates the HTTP router
func NewRouter(deps RouterDependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status":    "ok",
			"providers": deps.ProviderRegistry.ListProviders(),
		})
	})

	r.Get("/providers", handlers.ListProviders(deps.ProviderRegistry))

	// Shopper-facing checkout
	r.With(middlewarex.ClientInfo).Post("/checkout/{orderNumber}", handlers.StartCheckout(deps.Checkout))

	r.Route("/orders/{orderNumber}", func(r chi.Router) {
		r.Get("/continue", handlers.Redirect(deps.Checkout, checkout.RedirectContinue))
		r.Get("/cancel", handlers.Redirect(deps.Checkout, checkout.RedirectCancel))
		r.Get("/error", handlers.Redirect(deps.Checkout, checkout.RedirectError))

		// Host-initiated operations
		r.Group(func(r chi.Router) {
			r.Use(middlewarex.AdminAuth(deps.AdminToken))
			r.Post("/status", handlers.RefreshStatus(deps.Checkout))
			r.Post("/cancel", handlers.CancelPayment(deps.Checkout))
		})
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(middlewarex.AdminAuth(deps.AdminToken))
		r.Put("/providers/{alias}/settings", handlers.SaveProviderSettings(deps.ProviderRegistry, deps.Settings, deps.AESKey))
	})

	// Gateway pushes (public, validated by the provider)
	r.Post("/webhooks/buckaroo/{orderNumber}", handlers.BuckarooPush(deps.Checkout))

	return r
}
