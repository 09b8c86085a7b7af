package payment

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Status represents the payment status of an order as tracked by the host
type Status string

const (
	StatusPending    Status = "pending"
	StatusAuthorized Status = "authorized"
	StatusCaptured   Status = "captured"
	StatusCancelled  Status = "cancelled"
	StatusErrored    Status = "error"
)

// IsTerminal reports whether no further transition is expected from s
func (s Status) IsTerminal() bool {
	return s == StatusCaptured || s == StatusCancelled || s == StatusErrored
}

// Valid reports whether s is one of the known statuses
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusAuthorized, StatusCaptured, StatusCancelled, StatusErrored:
		return true
	}
	return false
}

// Currency is a host currency record; Code is the ISO 4217 code
type Currency struct {
	ID   string
	Code string
}

// TransactionInfo is the payment part of an order as currently persisted
type TransactionInfo struct {
	TransactionID    string
	PaymentStatus    Status
	AmountAuthorized decimal.Decimal
}

// Order is a read-only snapshot of a host order handed to payment providers.
// Providers never mutate it; they return a TransactionInfoUpdate instead.
type Order struct {
	Number          string
	CurrencyID      string
	TotalWithTax    decimal.Decimal
	TransactionInfo TransactionInfo
}

// TransactionInfoUpdate is the only mutation a provider produces
type TransactionInfoUpdate struct {
	TransactionID    string
	PaymentStatus    Status
	AmountAuthorized decimal.NullDecimal
}

// ErrInvalidTransition is returned when an update would leave a final state
var ErrInvalidTransition = errors.New("invalid payment status transition")

// CanTransition checks whether the persisted status may move to next.
// Re-applying the current status is allowed so that repeated pushes and polls
// stay harmless. Errored is final except for Captured: a poll taken while the
// gateway still reports pending maps to Errored, and the success push that
// follows must still be recorded.
func (i TransactionInfo) CanTransition(next Status) bool {
	if !next.Valid() {
		return false
	}
	if i.PaymentStatus == next {
		return true
	}
	switch i.PaymentStatus {
	case StatusPending:
		return next != StatusPending
	case StatusAuthorized:
		return next.IsTerminal()
	case StatusErrored:
		return next == StatusCaptured
	default:
		return false
	}
}

// Apply returns the transaction info resulting from u, or ErrInvalidTransition
func (i TransactionInfo) Apply(u TransactionInfoUpdate) (TransactionInfo, error) {
	if !i.CanTransition(u.PaymentStatus) {
		return i, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, i.PaymentStatus, u.PaymentStatus)
	}

	next := i
	next.PaymentStatus = u.PaymentStatus
	if u.TransactionID != "" {
		next.TransactionID = u.TransactionID
	}
	if u.AmountAuthorized.Valid {
		next.AmountAuthorized = u.AmountAuthorized.Decimal
	}
	return next, nil
}
