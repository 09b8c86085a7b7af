package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"buckaroopay/internal/domain/payment"
	"buckaroopay/internal/provider"
	"buckaroopay/internal/provider/buckaroo"
	"buckaroopay/internal/services/checkout"
	"buckaroopay/internal/store/repositories"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCheckout struct {
	form       *provider.PaymentFormResult
	callback   provider.CallbackResult
	info       payment.TransactionInfo
	redirect   string
	err        error
	lastNumber string
	lastClient provider.ClientInfo
	lastKind   checkout.RedirectKind
}

func (f *fakeCheckout) StartCheckout(_ context.Context, number string, client provider.ClientInfo) (*provider.PaymentFormResult, error) {
	f.lastNumber, f.lastClient = number, client
	return f.form, f.err
}

func (f *fakeCheckout) HandlePush(_ context.Context, number string, _ *http.Request) (provider.CallbackResult, error) {
	f.lastNumber = number
	return f.callback, f.err
}

func (f *fakeCheckout) RefreshStatus(_ context.Context, number string) (payment.TransactionInfo, error) {
	f.lastNumber = number
	return f.info, f.err
}

func (f *fakeCheckout) Cancel(_ context.Context, number string) (payment.TransactionInfo, error) {
	f.lastNumber = number
	return f.info, f.err
}

func (f *fakeCheckout) RedirectURL(_ context.Context, number string, kind checkout.RedirectKind) (string, error) {
	f.lastNumber, f.lastKind = number, kind
	return f.redirect, f.err
}

type fakeProvider struct{}

func (fakeProvider) Alias() provider.ProviderType { return provider.ProviderBuckaroo }
func (fakeProvider) Name() string                 { return "Buckaroo" }
func (fakeProvider) Description() string          { return "test" }
func (fakeProvider) Capabilities() provider.Capabilities {
	return provider.Capabilities{CanFetchPaymentStatus: true, CanCancelPayments: true}
}
func (fakeProvider) SettingsSchema() []provider.SettingField {
	return []provider.SettingField{
		{Key: "SecretKey", Type: provider.SettingPassword, SortOrder: 500},
		{Key: "ContinueUrl", Type: provider.SettingText, SortOrder: 100},
	}
}

func (fakeProvider) ValidateSettings(values map[string]string) error {
	_, err := buckaroo.DecodeSettings(values)
	return err
}

type memSettings map[string]string

func (m memSettings) LoadProviderSettings(context.Context, string) (map[string]string, error) {
	return m, nil
}

func (m memSettings) SaveProviderSetting(_ context.Context, _, key, value string) error {
	m[key] = value
	return nil
}

func newTestRouter(svc *fakeCheckout, settings memSettings) http.Handler {
	reg := provider.NewRegistry()
	reg.RegisterProvider(fakeProvider{})
	return NewRouter(RouterDependencies{
		AdminToken:       "admin",
		AESKey:           []byte(strings.Repeat("k", 32)),
		Checkout:         svc,
		Settings:         settings,
		ProviderRegistry: reg,
	})
}

func do(h http.Handler, method, target string, body string, headers map[string]string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(method, target, strings.NewReader(body))
	for k, v := range headers {
		r.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func TestCheckoutRedirects(t *testing.T) {
	svc := &fakeCheckout{form: &provider.PaymentFormResult{
		Form: provider.PaymentForm{Action: "https://pay.example/redirect/abc", Method: http.MethodGet},
	}}
	h := newTestRouter(svc, memSettings{})

	w := do(h, http.MethodPost, "/checkout/ORDER-1", "", map[string]string{
		"User-Agent":      "shopper",
		"X-Forwarded-For": "203.0.113.7",
	})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://pay.example/redirect/abc", w.Header().Get("Location"))
	assert.Equal(t, "ORDER-1", svc.lastNumber)
	assert.Equal(t, provider.ClientInfo{IP: "203.0.113.7", UserAgent: "shopper"}, svc.lastClient)

	w = do(h, http.MethodPost, "/checkout/ORDER-1", "", map[string]string{"Accept": "application/json"})
	require.Equal(t, http.StatusOK, w.Code)
	var form provider.PaymentFormResult
	require.NoError(t, json.NewDecoder(w.Body).Decode(&form))
	assert.Equal(t, "https://pay.example/redirect/abc", form.Form.Action)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", repositories.ErrOrderNotFound, http.StatusNotFound},
		{"closed", checkout.ErrCheckoutClosed, http.StatusConflict},
		{"config", &provider.ConfigurationError{Setting: "settings.ErrorUrl"}, http.StatusInternalServerError},
		{"gateway", &provider.GatewayError{Op: "create transaction", Code: provider.ErrRequestFailed}, http.StatusBadGateway},
		{"amount", &provider.ProviderError{Code: provider.ErrInvalidAmount}, http.StatusUnprocessableEntity},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestRouter(&fakeCheckout{err: tt.err}, memSettings{})
			w := do(h, http.MethodPost, "/checkout/ORDER-1", "", nil)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestPushAcknowledgement(t *testing.T) {
	svc := &fakeCheckout{callback: provider.CallbackOk(nil)}
	h := newTestRouter(svc, memSettings{})

	w := do(h, http.MethodPost, "/webhooks/buckaroo/ORDER-9", "brq_statuscode=791", map[string]string{
		"Content-Type": "application/x-www-form-urlencoded",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ORDER-9", svc.lastNumber)

	svc.callback = provider.CallbackBadRequestResult()
	w = do(h, http.MethodPost, "/webhooks/buckaroo/ORDER-9", "brq_amount=x", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReturnRedirects(t *testing.T) {
	svc := &fakeCheckout{redirect: "https://shop.example/cancel"}
	h := newTestRouter(svc, memSettings{})

	w := do(h, http.MethodGet, "/orders/ORDER-1/cancel", "", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://shop.example/cancel", w.Header().Get("Location"))
	assert.Equal(t, checkout.RedirectCancel, svc.lastKind)
}

func TestAdminOperations(t *testing.T) {
	svc := &fakeCheckout{info: payment.TransactionInfo{
		TransactionID:    "T1",
		PaymentStatus:    payment.StatusCancelled,
		AmountAuthorized: decimal.RequireFromString("49"),
	}}
	h := newTestRouter(svc, memSettings{})

	w := do(h, http.MethodPost, "/orders/ORDER-1/cancel", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(h, http.MethodPost, "/orders/ORDER-1/cancel", "", map[string]string{"X-Admin-Token": "admin"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"transaction_id":"T1","payment_status":"cancelled","amount_authorized":"49.00"}`, w.Body.String())

	w = do(h, http.MethodPost, "/orders/ORDER-1/status", "", map[string]string{"X-Admin-Token": "admin"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestProvidersAndSettings(t *testing.T) {
	settings := memSettings{}
	h := newTestRouter(&fakeCheckout{}, settings)

	w := do(h, http.MethodGet, "/providers", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data []provider.ProviderInfo `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "ContinueUrl", body.Data[0].Settings[0].Key)

	admin := map[string]string{"X-Admin-Token": "admin"}
	w = do(h, http.MethodPut, "/admin/providers/buckaroo/settings", `{"ContinueUrl":"/continue/","SecretKey":"SK"}`, admin)
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "/continue/", settings["ContinueUrl"])
	assert.True(t, strings.HasPrefix(settings["SecretKey"], "enc:"))

	w = do(h, http.MethodPut, "/admin/providers/buckaroo/settings", `{"TestMode":"maybe"}`, admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	_, stored := settings["TestMode"]
	assert.False(t, stored)

	w = do(h, http.MethodPut, "/admin/providers/buckaroo/settings", `{"TestMode":"true"}`, admin)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "true", settings["TestMode"])

	w = do(h, http.MethodPut, "/admin/providers/buckaroo/settings", `{"Bogus":"x"}`, admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(h, http.MethodPut, "/admin/providers/stripe/settings", `{}`, admin)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
