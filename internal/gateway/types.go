package gateway

import "encoding/json"

// Transaction status codes reported by Buckaroo
const (
	StatusSuccess             = 190
	StatusFailed              = 490
	StatusValidationFailure   = 491
	StatusTechnicalFailure    = 492
	StatusRejectedByMerchant  = 690
	StatusPendingInput        = 790
	StatusPendingProcessing   = 791
	StatusAwaitingConsumer    = 792
	StatusOnHold              = 793
	StatusCancelledByUser     = 890
	StatusCancelledByMerchant = 891
)

// IP address families for ClientIP.Type
const (
	IPv4 = 0
	IPv6 = 1
)

// ContinueOnIncomplete values
const (
	ContinueNo             = 0
	ContinueRedirectToHTML = 1
)

// Credentials authenticate every call. Live selects the production endpoint.
type Credentials struct {
	WebsiteKey string
	SecretKey  string
	Live       bool
	Culture    string
}

type ClientIP struct {
	Type    int    `json:"Type"`
	Address string `json:"Address"`
}

type Service struct {
	Name   string `json:"Name"`
	Action string `json:"Action"`
}

type Services struct {
	ServiceList []Service `json:"ServiceList"`
}

// TransactionRequest is the body of a create-transaction call
type TransactionRequest struct {
	Currency             string      `json:"Currency"`
	AmountDebit          json.Number `json:"AmountDebit"`
	Invoice              string      `json:"Invoice"`
	Order                string      `json:"Order,omitempty"`
	Description          string      `json:"Description,omitempty"`
	ClientIP             *ClientIP   `json:"ClientIP,omitempty"`
	ClientUserAgent      string      `json:"ClientUserAgent,omitempty"`
	ReturnURL            string      `json:"ReturnURL"`
	ReturnURLCancel      string      `json:"ReturnURLCancel"`
	ReturnURLError       string      `json:"ReturnURLError"`
	ReturnURLReject      string      `json:"ReturnURLReject"`
	PushURL              string      `json:"PushURL,omitempty"`
	PushURLFailure       string      `json:"PushURLFailure,omitempty"`
	ContinueOnIncomplete int         `json:"ContinueOnIncomplete"`
	StartRecurrent       bool        `json:"StartRecurrent"`
	Services             Services    `json:"Services"`
}

type cancelRequest struct {
	Transactions []cancelKey `json:"Transactions"`
}

type cancelKey struct {
	Key string `json:"Key"`
}

type StatusCode struct {
	Code        int    `json:"Code"`
	Description string `json:"Description"`
}

type Status struct {
	Code     StatusCode  `json:"Code"`
	SubCode  *StatusCode `json:"SubCode,omitempty"`
	DateTime string      `json:"DateTime"`
}

type RequiredAction struct {
	RedirectURL string `json:"RedirectURL"`
	Name        string `json:"Name"`
}

type RequestError struct {
	Service      string `json:"Service,omitempty"`
	Action       string `json:"Action,omitempty"`
	Name         string `json:"Name,omitempty"`
	Error        string `json:"Error,omitempty"`
	ErrorMessage string `json:"ErrorMessage"`
}

type RequestErrors struct {
	ChannelErrors         []RequestError `json:"ChannelErrors"`
	ServiceErrors         []RequestError `json:"ServiceErrors"`
	ActionErrors          []RequestError `json:"ActionErrors"`
	ParameterErrors       []RequestError `json:"ParameterErrors"`
	CustomParameterErrors []RequestError `json:"CustomParameterErrors"`
}

// Messages flattens all request errors into readable strings
func (e *RequestErrors) Messages() []string {
	if e == nil {
		return nil
	}
	var out []string
	for _, group := range [][]RequestError{
		e.ChannelErrors, e.ServiceErrors, e.ActionErrors, e.ParameterErrors, e.CustomParameterErrors,
	} {
		for _, re := range group {
			msg := re.ErrorMessage
			if re.Name != "" {
				msg = re.Name + ": " + msg
			}
			out = append(out, msg)
		}
	}
	return out
}

// TransactionResponse is returned by create, status and cancel calls
type TransactionResponse struct {
	Key            string          `json:"Key"`
	PaymentKey     string          `json:"PaymentKey"`
	Status         Status          `json:"Status"`
	RequiredAction *RequiredAction `json:"RequiredAction"`
	Invoice        string          `json:"Invoice"`
	Currency       string          `json:"Currency"`
	AmountDebit    json.Number     `json:"AmountDebit"`
	IsTest         bool            `json:"IsTest"`
	RequestErrors  *RequestErrors  `json:"RequestErrors"`
}

// StatusCode returns the top-level transaction status code
func (r *TransactionResponse) StatusCode() int {
	return r.Status.Code.Code
}

// TransactionKey is the identifier the host should store for the payment.
// Buckaroo groups transactions under a payment key; older responses only
// carry the transaction key.
func (r *TransactionResponse) TransactionKey() string {
	if r.PaymentKey != "" {
		return r.PaymentKey
	}
	return r.Key
}

// RedirectURL returns the hosted payment page URL, if the gateway asked for one
func (r *TransactionResponse) RedirectURL() string {
	if r.RequiredAction == nil {
		return ""
	}
	return r.RequiredAction.RedirectURL
}
