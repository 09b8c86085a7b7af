package base

import (
	"fmt"
	"regexp"
	"strings"

	"buckaroopay/internal/provider"

	"github.com/shopspring/decimal"
)

var currencyCodePattern = regexp.MustCompile(`^[A-Z]{3}$`)

// NormalizeCurrencyCode upper-cases a currency code and checks it is ISO 4217 shaped
func NormalizeCurrencyCode(code string) (string, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if !currencyCodePattern.MatchString(normalized) {
		return "", &provider.ProviderError{
			Code:    provider.ErrInvalidCurrency,
			Message: fmt.Sprintf("invalid currency code %q", code),
		}
	}
	return normalized, nil
}

// AmountValidator validates payment amounts
type AmountValidator struct {
	minAmount decimal.Decimal
	maxAmount decimal.Decimal
}

// NewAmountValidator creates an amount validator; a zero max means no upper limit
func NewAmountValidator(minAmount, maxAmount decimal.Decimal) *AmountValidator {
	return &AmountValidator{
		minAmount: minAmount,
		maxAmount: maxAmount,
	}
}

// ValidateAmount validates a debit amount in major currency units
func (v *AmountValidator) ValidateAmount(amount decimal.Decimal, currency string) error {
	if !amount.IsPositive() {
		return &provider.ProviderError{
			Code:    provider.ErrInvalidAmount,
			Message: "amount must be greater than zero",
		}
	}

	if amount.LessThan(v.minAmount) {
		return &provider.ProviderError{
			Code:    provider.ErrInvalidAmount,
			Message: fmt.Sprintf("amount must be at least %s", FormatAmount(v.minAmount, currency)),
		}
	}

	if v.maxAmount.IsPositive() && amount.GreaterThan(v.maxAmount) {
		return &provider.ProviderError{
			Code:    provider.ErrInvalidAmount,
			Message: fmt.Sprintf("amount must not exceed %s", FormatAmount(v.maxAmount, currency)),
		}
	}

	if amount.Exponent() < -2 && !amount.Equal(amount.Round(2)) {
		return &provider.ProviderError{
			Code:    provider.ErrInvalidAmount,
			Message: "amount must not have more than two decimals",
		}
	}

	return nil
}

// FormatAmount formats amount for display
func FormatAmount(amount decimal.Decimal, currency string) string {
	return fmt.Sprintf("%s %s", currency, amount.StringFixed(2))
}
