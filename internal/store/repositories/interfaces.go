package repositories

import (
	"context"
	"errors"
	"time"

	"buckaroopay/internal/domain/payment"
)

var (
	ErrOrderNotFound    = errors.New("order not found")
	ErrCurrencyNotFound = errors.New("currency not found")
	ErrOrderLocked      = errors.New("order is locked")
)

// OrderRepository defines the contract for order data access
type OrderRepository interface {
	FindByNumber(ctx context.Context, number string) (payment.Order, error)
	SaveTransactionInfo(ctx context.Context, number string, info payment.TransactionInfo) error
	FindStaleAuthorized(ctx context.Context, olderThan time.Time, limit int) ([]payment.Order, error)
}

// CurrencyRepository resolves host currencies for providers
type CurrencyRepository interface {
	GetCurrency(ctx context.Context, id string) (payment.Currency, error)
}

// SettingsRepository stores provider settings as key/value pairs
type SettingsRepository interface {
	LoadProviderSettings(ctx context.Context, alias string) (map[string]string, error)
	SaveProviderSetting(ctx context.Context, alias, key, value string) error
}

// OrderLocker serialises updates to a single order across processes
type OrderLocker interface {
	Lock(ctx context.Context, orderNumber string) (release func(context.Context) error, err error)
}
