package checkout

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"buckaroopay/internal/crypto"
	"buckaroopay/internal/domain/payment"
	"buckaroopay/internal/provider"
	"buckaroopay/internal/provider/buckaroo"
	"buckaroopay/internal/store/repositories"

	"github.com/rs/zerolog/log"
)

// ErrCheckoutClosed is returned when a checkout is started for an order that
// already left the pending state
var ErrCheckoutClosed = errors.New("order is not awaiting payment")

// Plugin is what the host needs from the Buckaroo provider
type Plugin interface {
	Alias() provider.ProviderType
	Capabilities() provider.Capabilities
	ContinueURL(order payment.Order, settings buckaroo.Settings) (string, error)
	CancelURL(order payment.Order, settings buckaroo.Settings) (string, error)
	ErrorURL(order payment.Order, settings buckaroo.Settings) (string, error)
	GenerateForm(ctx context.Context, order payment.Order, continueURL, cancelURL, callbackURL string, client provider.ClientInfo, settings buckaroo.Settings) (*provider.PaymentFormResult, error)
	ProcessCallback(order payment.Order, r *http.Request, settings buckaroo.Settings) provider.CallbackResult
	FetchPaymentStatus(ctx context.Context, order payment.Order, settings buckaroo.Settings) provider.APIResult
	CancelPayment(ctx context.Context, order payment.Order, settings buckaroo.Settings) provider.APIResult
}

// RedirectKind selects one of the configured return destinations
type RedirectKind string

const (
	RedirectContinue RedirectKind = "continue"
	RedirectCancel   RedirectKind = "cancel"
	RedirectError    RedirectKind = "error"
)

type Deps struct {
	Orders   repositories.OrderRepository
	Settings repositories.SettingsRepository
	Locker   repositories.OrderLocker
	Plugin   Plugin
	BaseURL  string
	Defaults map[string]string // env fallbacks, overridden by stored settings
	AESKey   []byte
}

// Service is the host side of the checkout: it loads orders and settings,
// calls the plugin and persists whatever update it returns
type Service struct {
	orders   repositories.OrderRepository
	settings repositories.SettingsRepository
	locker   repositories.OrderLocker
	plugin   Plugin
	baseURL  string
	defaults map[string]string
	aesKey   []byte
}

func NewService(d Deps) *Service {
	return &Service{
		orders:   d.Orders,
		settings: d.Settings,
		locker:   d.Locker,
		plugin:   d.Plugin,
		baseURL:  d.BaseURL,
		defaults: d.Defaults,
		aesKey:   d.AESKey,
	}
}

func (s *Service) loadSettings(ctx context.Context) (buckaroo.Settings, error) {
	stored, err := s.settings.LoadProviderSettings(ctx, string(s.plugin.Alias()))
	if err != nil {
		return buckaroo.Settings{}, fmt.Errorf("load provider settings: %w", err)
	}
	values := make(map[string]string, len(s.defaults)+len(stored))
	for k, v := range s.defaults {
		values[k] = v
	}
	for k, v := range stored {
		values[k] = v
	}
	if err := crypto.OpenSettings(s.aesKey, values); err != nil {
		return buckaroo.Settings{}, err
	}
	return buckaroo.DecodeSettings(values)
}

func (s *Service) load(ctx context.Context, number string) (payment.Order, buckaroo.Settings, error) {
	order, err := s.orders.FindByNumber(ctx, number)
	if err != nil {
		return payment.Order{}, buckaroo.Settings{}, err
	}
	settings, err := s.loadSettings(ctx)
	if err != nil {
		return payment.Order{}, buckaroo.Settings{}, err
	}
	return order, settings, nil
}

// CallbackURL is the push URL handed to the gateway for an order
func (s *Service) CallbackURL(orderNumber string) string {
	return fmt.Sprintf("%s/webhooks/%s/%s", s.baseURL, s.plugin.Alias(), url.PathEscape(orderNumber))
}

func (s *Service) returnURL(orderNumber string, kind RedirectKind) string {
	return fmt.Sprintf("%s/orders/%s/%s", s.baseURL, url.PathEscape(orderNumber), kind)
}

// StartCheckout creates the gateway transaction and marks the order
// authorized. Gateway errors are returned as is.
func (s *Service) StartCheckout(ctx context.Context, number string, client provider.ClientInfo) (*provider.PaymentFormResult, error) {
	order, settings, err := s.load(ctx, number)
	if err != nil {
		return nil, err
	}
	if order.TransactionInfo.PaymentStatus != payment.StatusPending {
		return nil, ErrCheckoutClosed
	}

	form, err := s.plugin.GenerateForm(ctx, order,
		s.returnURL(number, RedirectContinue),
		s.returnURL(number, RedirectCancel),
		s.CallbackURL(number),
		client, settings)
	if err != nil {
		log.Error().Err(err).Str("order_number", number).Msg("checkout start failed")
		return nil, err
	}

	if _, err := s.apply(ctx, number, payment.TransactionInfoUpdate{
		TransactionID: form.TransactionID,
		PaymentStatus: payment.StatusAuthorized,
	}, payment.StatusPending); err != nil {
		if errors.Is(err, ErrCheckoutClosed) {
			log.Warn().Str("order_number", number).Str("transaction_id", form.TransactionID).
				Msg("order left pending during checkout, gateway transaction abandoned")
		}
		return nil, err
	}
	return form, nil
}

// HandlePush processes a gateway push for an order. The returned error is
// only set for host failures (unknown order, storage).
func (s *Service) HandlePush(ctx context.Context, number string, r *http.Request) (provider.CallbackResult, error) {
	order, settings, err := s.load(ctx, number)
	if err != nil {
		return provider.CallbackResult{}, err
	}
	res := s.plugin.ProcessCallback(order, r, settings)
	if res.TransactionInfo != nil {
		if _, err := s.apply(ctx, number, *res.TransactionInfo, ""); err != nil {
			return res, err
		}
	}
	return res, nil
}

// RefreshStatus polls the gateway and persists any change
func (s *Service) RefreshStatus(ctx context.Context, number string) (payment.TransactionInfo, error) {
	if !s.plugin.Capabilities().CanFetchPaymentStatus {
		return payment.TransactionInfo{}, &provider.ProviderError{Code: provider.ErrOperationNotSupported, Message: "provider cannot fetch payment status"}
	}
	order, settings, err := s.load(ctx, number)
	if err != nil {
		return payment.TransactionInfo{}, err
	}
	res := s.plugin.FetchPaymentStatus(ctx, order, settings)
	if res.IsEmpty() {
		return order.TransactionInfo, nil
	}
	return s.apply(ctx, number, *res.TransactionInfo, "")
}

// Cancel cancels the order's payment at the gateway and persists the result
func (s *Service) Cancel(ctx context.Context, number string) (payment.TransactionInfo, error) {
	if !s.plugin.Capabilities().CanCancelPayments {
		return payment.TransactionInfo{}, &provider.ProviderError{Code: provider.ErrOperationNotSupported, Message: "provider cannot cancel payments"}
	}
	order, settings, err := s.load(ctx, number)
	if err != nil {
		return payment.TransactionInfo{}, err
	}
	res := s.plugin.CancelPayment(ctx, order, settings)
	if res.IsEmpty() {
		return order.TransactionInfo, nil
	}
	return s.apply(ctx, number, *res.TransactionInfo, "")
}

// RedirectURL resolves where the shopper goes after the payment page
func (s *Service) RedirectURL(ctx context.Context, number string, kind RedirectKind) (string, error) {
	order, settings, err := s.load(ctx, number)
	if err != nil {
		return "", err
	}
	switch kind {
	case RedirectContinue:
		return s.plugin.ContinueURL(order, settings)
	case RedirectCancel:
		return s.plugin.CancelURL(order, settings)
	case RedirectError:
		return s.plugin.ErrorURL(order, settings)
	}
	return "", fmt.Errorf("unknown redirect %q", kind)
}

// apply re-reads the order under its lock so a stale snapshot never
// overwrites a newer status. Updates that would leave a final state are
// dropped. A non-empty from requires the order to still be in that status,
// otherwise ErrCheckoutClosed is returned.
func (s *Service) apply(ctx context.Context, number string, u payment.TransactionInfoUpdate, from payment.Status) (payment.TransactionInfo, error) {
	release, err := s.locker.Lock(ctx, number)
	if err != nil {
		return payment.TransactionInfo{}, fmt.Errorf("lock order %s: %w", number, err)
	}
	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := release(releaseCtx); err != nil {
			log.Warn().Err(err).Str("order_number", number).Msg("order lock release failed")
		}
	}()

	order, err := s.orders.FindByNumber(ctx, number)
	if err != nil {
		return payment.TransactionInfo{}, err
	}
	if from != "" && order.TransactionInfo.PaymentStatus != from {
		return order.TransactionInfo, ErrCheckoutClosed
	}
	next, err := order.TransactionInfo.Apply(u)
	if errors.Is(err, payment.ErrInvalidTransition) {
		log.Warn().Err(err).Str("order_number", number).Msg("ignoring payment update")
		return order.TransactionInfo, nil
	}
	if err != nil {
		return payment.TransactionInfo{}, err
	}
	if sameInfo(next, order.TransactionInfo) {
		return next, nil
	}

	if err := s.orders.SaveTransactionInfo(ctx, number, next); err != nil {
		return payment.TransactionInfo{}, err
	}
	log.Info().
		Str("order_number", number).
		Str("transaction_id", next.TransactionID).
		Str("from", string(order.TransactionInfo.PaymentStatus)).
		Str("to", string(next.PaymentStatus)).
		Msg("payment status updated")
	return next, nil
}

func sameInfo(a, b payment.TransactionInfo) bool {
	return a.TransactionID == b.TransactionID &&
		a.PaymentStatus == b.PaymentStatus &&
		a.AmountAuthorized.Equal(b.AmountAuthorized)
}
