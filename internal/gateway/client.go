// Package gateway is a small client for the Buckaroo JSON API. It owns
// request signing, transport and retries so the provider plugin only has to
// build requests and read responses.
package gateway

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"buckaroopay/internal/provider"
	"buckaroopay/internal/provider/base"

	"github.com/rs/zerolog/log"
)

const (
	LiveBaseURL = "https://checkout.buckaroo.nl"
	TestBaseURL = "https://testcheckout.buckaroo.nl"
)

// Client talks to the Buckaroo JSON API
type Client struct {
	http    *base.HTTPClient
	liveURL string
	testURL string
	now     func() time.Time
	nonce   func() string
}

type Option func(*Client)

// WithBaseURLs overrides the live and test endpoints
func WithBaseURLs(live, test string) Option {
	return func(c *Client) {
		c.liveURL = strings.TrimRight(live, "/")
		c.testURL = strings.TrimRight(test, "/")
	}
}

// WithHTTPClient replaces the default transport wrapper
func WithHTTPClient(h *base.HTTPClient) Option {
	return func(c *Client) { c.http = h }
}

// WithClock fixes the time and nonce sources used for signing
func WithClock(now func() time.Time, nonce func() string) Option {
	return func(c *Client) {
		c.now = now
		c.nonce = nonce
	}
}

// New creates a new Buckaroo client
func New(opts ...Option) *Client {
	c := &Client{
		http:    base.NewHTTPClient("buckaroo", 30),
		liveURL: LiveBaseURL,
		testURL: TestBaseURL,
		now:     time.Now,
		nonce:   newNonce,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) endpoint(creds Credentials, path string) string {
	baseURL := c.testURL
	if creds.Live {
		baseURL = c.liveURL
	}
	return baseURL + "/json/" + path
}

func (c *Client) signer(creds Credentials) signer {
	return signer{creds: creds, now: c.now, nonce: c.nonce}
}

// CreateTransaction starts a payment. No service is pre-selected, so the
// shopper picks a payment method on the hosted page.
func (c *Client) CreateTransaction(ctx context.Context, creds Credentials, req TransactionRequest) (*TransactionResponse, error) {
	const op = "create transaction"

	if req.Services.ServiceList == nil {
		req.Services.ServiceList = []Service{}
	}
	resp, err := c.http.PostJSON(ctx, c.endpoint(creds, "Transaction"), req, c.signer(creds).sign)
	if err != nil {
		return nil, transportError(op, err)
	}
	out, err := decodeResponse(op, resp)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("provider", "buckaroo").
		Str("invoice", req.Invoice).
		Str("transaction_key", out.Key).
		Int("status_code", out.StatusCode()).
		Bool("live", creds.Live).
		Msg("transaction created")
	return out, nil
}

// TransactionStatus fetches the current status of a transaction
func (c *Client) TransactionStatus(ctx context.Context, creds Credentials, transactionKey string) (*TransactionResponse, error) {
	const op = "transaction status"

	if transactionKey == "" {
		return nil, &provider.GatewayError{Op: op, Code: provider.ErrRequestFailed, Message: "transaction key is required"}
	}
	resp, err := c.http.Get(ctx, c.endpoint(creds, "Transaction/Status/"+url.PathEscape(transactionKey)), c.signer(creds).sign)
	if err != nil && resp == nil {
		return nil, transportError(op, err)
	}
	return decodeResponse(op, resp)
}

// CancelTransaction cancels a transaction that has not been completed yet
func (c *Client) CancelTransaction(ctx context.Context, creds Credentials, transactionKey string) (*TransactionResponse, error) {
	const op = "cancel transaction"

	if transactionKey == "" {
		return nil, &provider.GatewayError{Op: op, Code: provider.ErrRequestFailed, Message: "transaction key is required"}
	}
	body := cancelRequest{Transactions: []cancelKey{{Key: transactionKey}}}
	resp, err := c.http.PostJSON(ctx, c.endpoint(creds, "Transaction/Cancel"), body, c.signer(creds).sign)
	if err != nil {
		return nil, transportError(op, err)
	}
	out, err := decodeResponse(op, resp)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("provider", "buckaroo").
		Str("transaction_key", transactionKey).
		Msg("transaction cancelled")
	return out, nil
}

func transportError(op string, err error) error {
	return &provider.GatewayError{
		Op:      op,
		Code:    provider.ErrRequestFailed,
		Message: "request to gateway failed",
		Err:     err,
	}
}

func decodeResponse(op string, resp *base.HTTPResponse) (*TransactionResponse, error) {
	if !resp.IsSuccess() {
		return nil, &provider.GatewayError{
			Op:         op,
			Code:       provider.ErrUnexpectedStatus,
			Message:    fmt.Sprintf("gateway answered %d", resp.StatusCode),
			StatusCode: resp.StatusCode,
		}
	}

	var out TransactionResponse
	if err := resp.Decode(&out); err != nil {
		return nil, &provider.GatewayError{
			Op:         op,
			Code:       provider.ErrResponseParse,
			Message:    "failed to parse gateway response",
			StatusCode: resp.StatusCode,
			Err:        err,
		}
	}

	if msgs := out.RequestErrors.Messages(); len(msgs) > 0 {
		return nil, &provider.GatewayError{
			Op:          op,
			Code:        provider.ErrRequestRejected,
			Message:     "gateway rejected the request",
			StatusCode:  resp.StatusCode,
			ProviderErr: msgs,
		}
	}
	return &out, nil
}

// DefaultTransport is exposed for hosts that tune timeouts and retries
func DefaultTransport(timeoutSec int, maxRetries uint64) *base.HTTPClient {
	h := base.NewHTTPClient("buckaroo", timeoutSec)
	h.SetMaxRetries(maxRetries)
	return h
}
