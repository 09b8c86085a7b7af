package provider

import (
	"fmt"
	"strings"
)

// ConfigurationError is returned when a required provider setting is empty
type ConfigurationError struct {
	Setting string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("missing required setting: %s", e.Setting)
}

// DecodeError is returned when an inbound notification cannot be read
type DecodeError struct {
	Field string
	Err   error
}

func (e *DecodeError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("decode %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("decode notification: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// GatewayError is any failure reported by, or while talking to, the gateway
type GatewayError struct {
	Op          string   `json:"op"`
	Code        string   `json:"code"`
	Message     string   `json:"message"`
	StatusCode  int      `json:"status_code,omitempty"`
	ProviderErr []string `json:"provider_errors,omitempty"`
	Err         error    `json:"-"`
}

func (e *GatewayError) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	b.WriteString(": ")
	b.WriteString(e.Message)
	if len(e.ProviderErr) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(e.ProviderErr, "; "))
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *GatewayError) Unwrap() error { return e.Err }

// ProviderError is a registry or validation error raised before any gateway I/O
type ProviderError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *ProviderError) Error() string {
	return e.Message
}

// Error codes
const (
	ErrProviderNotFound      = "provider_not_found"
	ErrInvalidAmount         = "invalid_amount"
	ErrInvalidCurrency       = "invalid_currency"
	ErrRequestFailed         = "request_failed"
	ErrUnexpectedStatus      = "unexpected_status"
	ErrResponseParse         = "response_parse_failed"
	ErrRequestRejected       = "request_rejected"
	ErrMissingRedirectURL    = "missing_redirect_url"
	ErrOperationNotSupported = "operation_not_supported"
)
