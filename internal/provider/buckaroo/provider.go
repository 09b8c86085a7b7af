// Package buckaroo is the Buckaroo hosted-payment provider. It starts
// checkouts on the Buckaroo payment page and turns pushes, status polls and
// cancellations into transaction info updates for the host.
package buckaroo

import (
	"context"
	"net/http"

	"buckaroopay/internal/domain/payment"
	"buckaroopay/internal/gateway"
	"buckaroopay/internal/provider"
	"buckaroopay/internal/provider/base"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// GatewayClient is the part of the Buckaroo API the provider uses
type GatewayClient interface {
	CreateTransaction(ctx context.Context, creds gateway.Credentials, req gateway.TransactionRequest) (*gateway.TransactionResponse, error)
	TransactionStatus(ctx context.Context, creds gateway.Credentials, transactionKey string) (*gateway.TransactionResponse, error)
	CancelTransaction(ctx context.Context, creds gateway.Credentials, transactionKey string) (*gateway.TransactionResponse, error)
}

// CurrencyService resolves a host currency id
type CurrencyService interface {
	GetCurrency(ctx context.Context, id string) (payment.Currency, error)
}

// Provider implements provider.Provider for Buckaroo
type Provider struct {
	client     GatewayClient
	currencies CurrencyService
	culture    string
	amounts    *base.AmountValidator
}

var (
	_ provider.Provider          = (*Provider)(nil)
	_ provider.SettingsValidator = (*Provider)(nil)
)

type Option func(*Provider)

// WithCulture sets the locale sent with every gateway call
func WithCulture(culture string) Option {
	return func(p *Provider) {
		if culture != "" {
			p.culture = culture
		}
	}
}

// New creates the Buckaroo provider
func New(client GatewayClient, currencies CurrencyService, opts ...Option) *Provider {
	p := &Provider{
		client:     client,
		currencies: currencies,
		culture:    "en-US",
		amounts:    base.NewAmountValidator(decimal.NewFromFloat(0.01), decimal.Zero),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Provider) Alias() provider.ProviderType {
	return provider.ProviderBuckaroo
}

func (p *Provider) Name() string {
	return "Buckaroo"
}

func (p *Provider) Description() string {
	return "Buckaroo payment provider for one time payments"
}

// Capabilities are fixed; payments are finalized by the push, never at the continue URL
func (p *Provider) Capabilities() provider.Capabilities {
	return provider.Capabilities{
		CanFetchPaymentStatus: true,
		CanCapturePayments:    false,
		CanCancelPayments:     true,
		CanRefundPayments:     false,
		FinalizeAtContinueURL: false,
	}
}

func (p *Provider) SettingsSchema() []provider.SettingField {
	return SettingsSchema()
}

// ValidateSettings reports whether values decode into Settings
func (p *Provider) ValidateSettings(values map[string]string) error {
	_, err := DecodeSettings(values)
	return err
}

func (p *Provider) ContinueURL(_ payment.Order, settings Settings) (string, error) {
	return settings.RequireContinueURL()
}

func (p *Provider) CancelURL(_ payment.Order, settings Settings) (string, error) {
	return settings.RequireCancelURL()
}

func (p *Provider) ErrorURL(_ payment.Order, settings Settings) (string, error) {
	return settings.RequireErrorURL()
}

// GenerateForm creates the transaction at Buckaroo and returns a redirect to
// its hosted payment page. Errors are returned to the caller unchanged so a
// failed checkout start is visible to the shopper.
func (p *Provider) GenerateForm(ctx context.Context, order payment.Order, continueURL, cancelURL, callbackURL string, client provider.ClientInfo, settings Settings) (*provider.PaymentFormResult, error) {
	currency, err := p.currencies.GetCurrency(ctx, order.CurrencyID)
	if err != nil {
		return nil, err
	}
	code, err := base.NormalizeCurrencyCode(currency.Code)
	if err != nil {
		return nil, err
	}
	if err := p.amounts.ValidateAmount(order.TotalWithTax, code); err != nil {
		return nil, err
	}

	// the error URL comes from settings, not from the caller
	errorURL, err := settings.RequireErrorURL()
	if err != nil {
		return nil, err
	}
	creds, err := settings.credentials(p.culture)
	if err != nil {
		return nil, err
	}

	req := buildTransaction(order, code, returnURLs{
		continueURL: continueURL,
		cancelURL:   cancelURL,
		errorURL:    errorURL,
		callbackURL: callbackURL,
	}, client)

	resp, err := p.client.CreateTransaction(ctx, creds, req)
	if err != nil {
		return nil, err
	}

	redirectURL := resp.RedirectURL()
	if redirectURL == "" {
		return nil, &provider.GatewayError{
			Op:      "create transaction",
			Code:    provider.ErrMissingRedirectURL,
			Message: "gateway response has no redirect url",
		}
	}

	return &provider.PaymentFormResult{
		Form: provider.PaymentForm{
			Action: redirectURL,
			Method: http.MethodGet,
		},
		TransactionID: resp.TransactionKey(),
	}, nil
}

// ProcessCallback handles a push. Only a successful payment produces an
// update; anything else is acknowledged without one.
func (p *Provider) ProcessCallback(order payment.Order, r *http.Request, _ Settings) provider.CallbackResult {
	if err := r.ParseForm(); err != nil {
		log.Error().Err(err).Str("order_number", order.Number).Msg("buckaroo - ProcessCallback")
		return provider.CallbackBadRequestResult()
	}

	notification, err := DecodeWebhook(r.Form)
	if err != nil {
		log.Error().Err(err).Str("order_number", order.Number).Msg("buckaroo - ProcessCallback")
		return provider.CallbackBadRequestResult()
	}

	if !notification.IsSuccess() {
		evt := log.Debug()
		if notification.IsCancelled() {
			// cancellations are acknowledged without an update
			evt = log.Info()
		}
		evt.Str("order_number", order.Number).
			Str("transaction_id", notification.TransactionID).
			Int("status_code", notification.StatusCode).
			Bool("cancelled", notification.IsCancelled()).
			Msg("buckaroo push without success status")
		return provider.CallbackOk(nil)
	}

	return provider.CallbackOk(&payment.TransactionInfoUpdate{
		TransactionID:    notification.TransactionID,
		PaymentStatus:    payment.StatusCaptured,
		AmountAuthorized: decimal.NewNullDecimal(notification.Amount),
	})
}

// FetchPaymentStatus polls the gateway for the order's transaction. Failures
// are logged and reported as no change.
func (p *Provider) FetchPaymentStatus(ctx context.Context, order payment.Order, settings Settings) provider.APIResult {
	creds, err := settings.credentials(p.culture)
	if err != nil {
		log.Error().Err(err).Str("order_number", order.Number).Msg("buckaroo - FetchPaymentStatus")
		return provider.EmptyAPIResult
	}

	resp, err := p.client.TransactionStatus(ctx, creds, order.TransactionInfo.TransactionID)
	if err != nil {
		log.Error().Err(err).Str("order_number", order.Number).Msg("buckaroo - FetchPaymentStatus")
		return provider.EmptyAPIResult
	}

	return provider.APIResult{
		TransactionInfo: &payment.TransactionInfoUpdate{
			TransactionID: resp.TransactionKey(),
			PaymentStatus: MapStatus(resp.StatusCode()),
		},
	}
}

// CancelPayment cancels an authorized transaction. Orders in any other state
// are left alone without calling the gateway.
func (p *Provider) CancelPayment(ctx context.Context, order payment.Order, settings Settings) provider.APIResult {
	if order.TransactionInfo.PaymentStatus != payment.StatusAuthorized {
		return provider.EmptyAPIResult
	}

	creds, err := settings.credentials(p.culture)
	if err != nil {
		log.Error().Err(err).Str("order_number", order.Number).Msg("buckaroo - CancelPayment")
		return provider.EmptyAPIResult
	}

	resp, err := p.client.CancelTransaction(ctx, creds, order.TransactionInfo.TransactionID)
	if err != nil {
		log.Error().Err(err).Str("order_number", order.Number).Msg("buckaroo - CancelPayment")
		return provider.EmptyAPIResult
	}

	return provider.APIResult{
		TransactionInfo: &payment.TransactionInfoUpdate{
			TransactionID: resp.TransactionKey(),
			PaymentStatus: payment.StatusCancelled,
		},
	}
}
