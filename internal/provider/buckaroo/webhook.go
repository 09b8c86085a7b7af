package buckaroo

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"strings"
	"time"

	"buckaroopay/internal/provider"

	"github.com/mitchellh/mapstructure"
	"github.com/shopspring/decimal"
)

// pushTimeLayout is the layout Buckaroo uses for brq_timestamp
const pushTimeLayout = "2006-01-02 15:04:05"

// amountPattern admits plain decimal literals of bounded size, no exponents
var amountPattern = regexp.MustCompile(`^-?\d{1,12}(\.\d{1,4})?$`)

// WebhookNotification is a push sent by Buckaroo to the push URL
type WebhookNotification struct {
	TransactionID     string          `mapstructure:"brq_transactions"`
	Amount            decimal.Decimal `mapstructure:"brq_amount"`
	Currency          string          `mapstructure:"brq_currency"`
	CustomerName      string          `mapstructure:"brq_customer_name"`
	Description       string          `mapstructure:"brq_description"`
	InvoiceNumber     string          `mapstructure:"brq_invoicenumber"`
	MutationType      string          `mapstructure:"brq_mutationtype"`
	OrderNumber       string          `mapstructure:"brq_ordernumber"`
	PayerHash         string          `mapstructure:"brq_payer_hash"`
	Payment           string          `mapstructure:"brq_payment"`
	StatusCode        int             `mapstructure:"brq_statuscode"`
	StatusCodeDetail  string          `mapstructure:"brq_statuscode_detail"`
	StatusMessage     string          `mapstructure:"brq_statusmessage"`
	IsTest            bool            `mapstructure:"brq_test"`
	Timestamp         time.Time       `mapstructure:"brq_timestamp"`
	TransactionMethod string          `mapstructure:"brq_transaction_method"`
	TransactionType   string          `mapstructure:"brq_transaction_type"`
	WebsiteKey        string          `mapstructure:"brq_websitekey"`
	Signature         string          `mapstructure:"brq_signature"`
}

func (n WebhookNotification) IsSuccess() bool { return isSuccess(n.StatusCode) }

func (n WebhookNotification) IsCancelled() bool { return isCancelled(n.StatusCode) }

// DecodeWebhook maps form values onto a WebhookNotification. Keys must match
// exactly, unknown keys are ignored and a malformed typed value fails the
// whole decode with a *provider.DecodeError.
func DecodeWebhook(form url.Values) (*WebhookNotification, error) {
	input := make(map[string]interface{}, len(form))
	for k := range form {
		input[k] = strings.TrimSpace(form.Get(k))
	}

	var n WebhookNotification
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &n,
		WeaklyTypedInput: true,
		MatchName:        func(mapKey, fieldName string) bool { return mapKey == fieldName },
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			decimalHook,
			timeHook,
		),
	})
	if err != nil {
		return nil, &provider.DecodeError{Err: err}
	}
	if err := dec.Decode(input); err != nil {
		return nil, &provider.DecodeError{Field: failedField(err), Err: err}
	}
	return &n, nil
}

var (
	decimalType = reflect.TypeOf(decimal.Decimal{})
	timeType    = reflect.TypeOf(time.Time{})
)

func decimalHook(from, to reflect.Type, data interface{}) (interface{}, error) {
	if to != decimalType || from.Kind() != reflect.String {
		return data, nil
	}
	s := data.(string)
	if s == "" {
		return decimal.Zero, nil
	}
	if !amountPattern.MatchString(s) {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	return d, nil
}

func timeHook(from, to reflect.Type, data interface{}) (interface{}, error) {
	if to != timeType || from.Kind() != reflect.String {
		return data, nil
	}
	s := data.(string)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{pushTimeLayout, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return nil, fmt.Errorf("invalid timestamp %q", s)
}

// failedField pulls the first offending key out of a mapstructure error
func failedField(err error) string {
	var merr *mapstructure.Error
	if !errors.As(err, &merr) || len(merr.Errors) == 0 {
		return ""
	}
	msg := merr.Errors[0]
	if i := strings.Index(msg, "'"); i >= 0 {
		if j := strings.Index(msg[i+1:], "'"); j > 0 {
			return msg[i+1 : i+1+j]
		}
	}
	return ""
}
