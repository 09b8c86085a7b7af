package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"buckaroopay/internal/provider"
	"buckaroopay/internal/provider/base"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Unix(1700000000, 0)

func newTestGateway(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	h := base.NewHTTPClient("buckaroo", 5)
	h.SetRetryInterval(time.Millisecond)
	c := New(
		WithBaseURLs(srv.URL+"/live", srv.URL+"/test"),
		WithHTTPClient(h),
		WithClock(func() time.Time { return fixedNow }, func() string { return "nonce1" }),
	)
	return c, srv
}

var testCreds = Credentials{WebsiteKey: "WK", SecretKey: "SK", Culture: "nl-NL"}

func TestCreateTransactionSignsAndPosts(t *testing.T) {
	var got TransactionRequest
	c, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/test/json/Transaction", r.URL.Path)
		assert.Equal(t, "nl-NL", r.Header.Get("Culture"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		u := &url.URL{Host: r.Host, Path: r.URL.Path}
		want := computeSignature("WK", "SK", http.MethodPost, requestURI(u), "1700000000", "nonce1", body)
		assert.Equal(t, "hmac WK:"+want+":nonce1:1700000000", r.Header.Get("Authorization"))

		require.NoError(t, json.Unmarshal(body, &got))
		_, _ = w.Write([]byte(`{
			"Key": "TX-1",
			"Status": {"Code": {"Code": 791, "Description": "Pending processing"}},
			"RequiredAction": {"RedirectURL": "https://pay.example/redirect/abc", "Name": "Redirect"}
		}`))
	})

	resp, err := c.CreateTransaction(context.Background(), testCreds, TransactionRequest{
		Currency:             "EUR",
		AmountDebit:          json.Number("49.00"),
		Invoice:              "ORDER-1",
		ReturnURL:            "https://shop.example/continue",
		ContinueOnIncomplete: ContinueRedirectToHTML,
	})
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/redirect/abc", resp.RedirectURL())
	assert.Equal(t, "TX-1", resp.TransactionKey())
	assert.Equal(t, StatusPendingProcessing, resp.StatusCode())

	assert.Equal(t, "EUR", got.Currency)
	assert.Equal(t, "49.00", got.AmountDebit.String())
	assert.NotNil(t, got.Services.ServiceList, "an empty service list is sent, not null")
	assert.Empty(t, got.Services.ServiceList)
}

func TestLiveFlagSelectsEndpoint(t *testing.T) {
	c, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.URL.Path, "/live/json/"))
		_, _ = w.Write([]byte(`{"Key":"TX-1","PaymentKey":"P-1","Status":{"Code":{"Code":190}}}`))
	})

	creds := testCreds
	creds.Live = true
	resp, err := c.TransactionStatus(context.Background(), creds, "TX-1")
	require.NoError(t, err)
	assert.Equal(t, "P-1", resp.TransactionKey())
	assert.Equal(t, StatusSuccess, resp.StatusCode())
}

func TestTransactionStatusRetriesServerErrors(t *testing.T) {
	var calls int32
	c, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		assert.Equal(t, "/test/json/Transaction/Status/TX-9", r.URL.Path)
		assert.Empty(t, r.Header.Get("Content-Type"))
		if n == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"Key":"TX-9","Status":{"Code":{"Code":890}}}`))
	})

	resp, err := c.TransactionStatus(context.Background(), testCreds, "TX-9")
	require.NoError(t, err)
	assert.Equal(t, StatusCancelledByUser, resp.StatusCode())
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestCancelTransaction(t *testing.T) {
	c, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/test/json/Transaction/Cancel", r.URL.Path)
		var body cancelRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Transactions, 1)
		assert.Equal(t, "TX-1", body.Transactions[0].Key)
		_, _ = w.Write([]byte(`{"PaymentKey":"T1","Status":{"Code":{"Code":891}}}`))
	})

	resp, err := c.CancelTransaction(context.Background(), testCreds, "TX-1")
	require.NoError(t, err)
	assert.Equal(t, "T1", resp.TransactionKey())
}

func TestGatewayErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode string
	}{
		{"client error", http.StatusUnauthorized, `{}`, provider.ErrUnexpectedStatus},
		{"bad json", http.StatusOK, `not json`, provider.ErrResponseParse},
		{"request errors", http.StatusOK, `{"RequestErrors":{"ParameterErrors":[{"Name":"AmountDebit","ErrorMessage":"too low"}]}}`, provider.ErrRequestRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := c.CreateTransaction(context.Background(), testCreds, TransactionRequest{Currency: "EUR"})
			var gerr *provider.GatewayError
			require.True(t, errors.As(err, &gerr))
			assert.Equal(t, tt.wantCode, gerr.Code)
			assert.Equal(t, "create transaction", gerr.Op)
		})
	}
}

func TestMissingCredentialsFailBeforeSending(t *testing.T) {
	called := false
	c, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) { called = true })

	_, err := c.CancelTransaction(context.Background(), Credentials{}, "TX-1")
	var gerr *provider.GatewayError
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, provider.ErrRequestFailed, gerr.Code)
	assert.False(t, called)
}

func TestRequestURI(t *testing.T) {
	u, err := url.Parse("https://testcheckout.buckaroo.nl/json/Transaction/Status/ABC")
	require.NoError(t, err)
	assert.Equal(t, "testcheckout.buckaroo.nl%2fjson%2ftransaction%2fstatus%2fabc", requestURI(u))
}

func TestComputeSignatureHashesBodyOnlyWhenPresent(t *testing.T) {
	empty := computeSignature("WK", "SK", "GET", "uri", "1", "n", nil)
	withBody := computeSignature("WK", "SK", "GET", "uri", "1", "n", []byte("{}"))
	assert.NotEqual(t, empty, withBody)
	assert.Equal(t, empty, computeSignature("WK", "SK", "GET", "uri", "1", "n", []byte{}))
}
