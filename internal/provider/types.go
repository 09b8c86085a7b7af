package provider

import (
	"net/http"

	"buckaroopay/internal/domain/payment"
)

// Provider identification
type ProviderType string

const (
	ProviderBuckaroo ProviderType = "buckaroo"
)

// Capabilities is the fixed set of features a provider reports to the host
type Capabilities struct {
	CanFetchPaymentStatus bool `json:"can_fetch_payment_status"`
	CanCapturePayments    bool `json:"can_capture_payments"`
	CanCancelPayments     bool `json:"can_cancel_payments"`
	CanRefundPayments     bool `json:"can_refund_payments"`
	FinalizeAtContinueURL bool `json:"finalize_at_continue_url"`
}

// Setting field types understood by the host settings UI
type SettingType string

const (
	SettingText     SettingType = "text"
	SettingPassword SettingType = "password"
	SettingBool     SettingType = "bool"
)

// SettingField describes one provider setting for the host settings UI
type SettingField struct {
	Key         string      `json:"key"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	SortOrder   int         `json:"sort_order"`
	Type        SettingType `json:"type"`
	Required    bool        `json:"required"`
}

// ClientInfo carries the shopper's connection details from the inbound request
type ClientInfo struct {
	IP        string
	UserAgent string
}

// PaymentForm tells the host where to send the shopper
type PaymentForm struct {
	Action string `json:"action"`
	Method string `json:"method"`
}

// PaymentFormResult is returned when a checkout starts. TransactionID is the
// gateway's key for the created transaction, if it returned one.
type PaymentFormResult struct {
	Form          PaymentForm `json:"form"`
	TransactionID string      `json:"transaction_id,omitempty"`
}

type CallbackStatus int

const (
	CallbackOK CallbackStatus = iota
	CallbackBadRequest
)

// CallbackResult is the outcome of an inbound push notification
type CallbackResult struct {
	Status          CallbackStatus
	TransactionInfo *payment.TransactionInfoUpdate
}

// CallbackOk acknowledges a push, optionally carrying an update
func CallbackOk(info *payment.TransactionInfoUpdate) CallbackResult {
	return CallbackResult{Status: CallbackOK, TransactionInfo: info}
}

// CallbackBadRequestResult rejects a push the provider could not read
func CallbackBadRequestResult() CallbackResult {
	return CallbackResult{Status: CallbackBadRequest}
}

// HTTPStatus is the status code the host should answer the push with
func (r CallbackResult) HTTPStatus() int {
	if r.Status == CallbackBadRequest {
		return http.StatusBadRequest
	}
	return http.StatusOK
}

// APIResult is the outcome of a host-initiated status poll or cancellation.
// The zero value means "no change".
type APIResult struct {
	TransactionInfo *payment.TransactionInfoUpdate
}

// EmptyAPIResult reports no change
var EmptyAPIResult = APIResult{}

func (r APIResult) IsEmpty() bool { return r.TransactionInfo == nil }
