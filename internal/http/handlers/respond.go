package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"buckaroopay/internal/domain/payment"
	"buckaroopay/internal/provider"
	"buckaroopay/internal/services/checkout"
	"buckaroopay/internal/store/repositories"

	"github.com/rs/zerolog/log"
)

// CheckoutService is the host checkout as seen by the HTTP layer
type CheckoutService interface {
	StartCheckout(ctx context.Context, number string, client provider.ClientInfo) (*provider.PaymentFormResult, error)
	HandlePush(ctx context.Context, number string, r *http.Request) (provider.CallbackResult, error)
	RefreshStatus(ctx context.Context, number string) (payment.TransactionInfo, error)
	Cancel(ctx context.Context, number string) (payment.TransactionInfo, error)
	RedirectURL(ctx context.Context, number string, kind checkout.RedirectKind) (string, error)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps service errors onto HTTP statuses
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		cfgErr  *provider.ConfigurationError
		gwErr   *provider.GatewayError
		provErr *provider.ProviderError
	)

	switch {
	case errors.Is(err, repositories.ErrOrderNotFound):
		http.Error(w, "order not found", http.StatusNotFound)
	case errors.Is(err, checkout.ErrCheckoutClosed), errors.Is(err, repositories.ErrOrderLocked):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.As(err, &cfgErr):
		log.Error().Err(err).Str("path", r.URL.Path).Msg("provider misconfigured")
		http.Error(w, "payment provider is not configured", http.StatusInternalServerError)
	case errors.As(err, &gwErr):
		writeJSON(w, http.StatusBadGateway, map[string]any{"error": gwErr})
	case errors.As(err, &provErr):
		status := http.StatusUnprocessableEntity
		if provErr.Code == provider.ErrOperationNotSupported {
			status = http.StatusNotImplemented
		} else if provErr.Code == provider.ErrProviderNotFound {
			status = http.StatusNotFound
		}
		writeJSON(w, status, map[string]any{"error": provErr})
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

type transactionInfoResponse struct {
	TransactionID    string `json:"transaction_id"`
	PaymentStatus    string `json:"payment_status"`
	AmountAuthorized string `json:"amount_authorized"`
}

func toResponse(info payment.TransactionInfo) transactionInfoResponse {
	return transactionInfoResponse{
		TransactionID:    info.TransactionID,
		PaymentStatus:    string(info.PaymentStatus),
		AmountAuthorized: info.AmountAuthorized.StringFixed(2),
	}
}
