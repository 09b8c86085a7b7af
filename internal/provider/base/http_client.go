package base

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
)

// RequestSigner is applied to every outgoing request right before it is sent.
// It is called once per attempt so time-based signatures stay fresh on retry.
type RequestSigner func(req *http.Request, body []byte) error

// HTTPClient provides common HTTP functionality for providers
type HTTPClient struct {
	client     *http.Client
	name       string // provider name for logging
	maxRetries uint64
	retryEvery time.Duration
}

// NewHTTPClient creates a new HTTP client with default settings
func NewHTTPClient(providerName string, timeoutSec int) *HTTPClient {
	if timeoutSec == 0 {
		timeoutSec = 30 // default timeout
	}

	return &HTTPClient{
		client: &http.Client{
			Timeout: time.Duration(timeoutSec) * time.Second,
		},
		name:       providerName,
		maxRetries: 2,
		retryEvery: backoff.DefaultInitialInterval,
	}
}

// SetMaxRetries sets how many times an idempotent request is retried
func (c *HTTPClient) SetMaxRetries(n uint64) {
	c.maxRetries = n
}

// SetRetryInterval sets the first backoff interval between retries
func (c *HTTPClient) SetRetryInterval(d time.Duration) {
	c.retryEvery = d
}

// SetTransport replaces the underlying client, mainly for tests
func (c *HTTPClient) SetTransport(client *http.Client) {
	c.client = client
}

// PostJSON makes a single POST request with a JSON payload. It is not retried.
func (c *HTTPClient) PostJSON(ctx context.Context, url string, payload interface{}, sign RequestSigner) (*HTTPResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON payload: %w", err)
	}
	return c.do(ctx, http.MethodPost, url, body, sign)
}

// Get makes a GET request, retrying transport failures and 5xx answers with
// exponential backoff.
func (c *HTTPClient) Get(ctx context.Context, url string, sign RequestSigner) (*HTTPResponse, error) {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = c.retryEvery
	policy := backoff.WithContext(backoff.WithMaxRetries(exp, c.maxRetries), ctx)

	attempt := 0
	return backoff.RetryWithData(func() (*HTTPResponse, error) {
		attempt++
		resp, err := c.do(ctx, http.MethodGet, url, nil, sign)
		if err != nil {
			if ctx.Err() != nil {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}
		if resp.StatusCode >= 500 {
			log.Warn().
				Str("provider", c.name).
				Str("url", url).
				Int("status_code", resp.StatusCode).
				Int("attempt", attempt).
				Msg("gateway answered with server error")
			return resp, fmt.Errorf("server error: %d", resp.StatusCode)
		}
		return resp, nil
	}, policy)
}

func (c *HTTPClient) do(ctx context.Context, method, url string, body []byte, sign RequestSigner) (*HTTPResponse, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", fmt.Sprintf("BuckarooPay/%s", c.name))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if sign != nil {
		if err := sign(req, body); err != nil {
			return nil, fmt.Errorf("failed to sign request: %w", err)
		}
	}

	// Log the request (without sensitive data)
	log.Debug().
		Str("provider", c.name).
		Str("method", method).
		Str("url", url).
		Msg("making HTTP request")

	resp, err := c.client.Do(req)
	if err != nil {
		log.Error().
			Str("provider", c.name).
			Str("url", url).
			Err(err).
			Msg("HTTP request failed")
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}

	return c.handleResponse(resp)
}

// handleResponse processes the HTTP response
func (c *HTTPClient) handleResponse(resp *http.Response) (*HTTPResponse, error) {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	log.Debug().
		Str("provider", c.name).
		Int("status_code", resp.StatusCode).
		Int("body_length", len(body)).
		Msg("received HTTP response")

	return &HTTPResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       body,
	}, nil
}

// HTTPResponse represents an HTTP response
type HTTPResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// IsSuccess checks if the response indicates success (2xx status code)
func (r *HTTPResponse) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Decode unmarshals the JSON response body into the provided struct
func (r *HTTPResponse) Decode(v interface{}) error {
	return json.Unmarshal(r.Body, v)
}

// String returns the response body as a string
func (r *HTTPResponse) String() string {
	return string(r.Body)
}
