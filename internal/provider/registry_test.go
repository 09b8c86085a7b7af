package provider_test

import (
	"testing"

	"buckaroopay/internal/gateway"
	"buckaroopay/internal/provider"
	"buckaroopay/internal/provider/buckaroo"
)

// TestRegistryWithBuckaroo wires the real provider into the registry
func TestRegistryWithBuckaroo(t *testing.T) {
	registry := provider.NewRegistry()
	registry.RegisterProvider(buckaroo.New(gateway.New(), nil))

	providers := registry.ListProviders()
	if len(providers) != 1 {
		t.Fatalf("expected 1 provider, got %d", len(providers))
	}
	if providers[0] != provider.ProviderBuckaroo {
		t.Fatalf("expected buckaroo provider, got %s", providers[0])
	}

	info, err := registry.GetProviderInfo(provider.ProviderBuckaroo)
	if err != nil {
		t.Fatalf("failed to get provider info: %v", err)
	}
	if info.Name != "Buckaroo" {
		t.Fatalf("unexpected provider name: %s", info.Name)
	}
	if !info.Capabilities.CanFetchPaymentStatus || !info.Capabilities.CanCancelPayments {
		t.Fatalf("expected fetch and cancel support, got %+v", info.Capabilities)
	}
	if info.Capabilities.CanCapturePayments || info.Capabilities.CanRefundPayments || info.Capabilities.FinalizeAtContinueURL {
		t.Fatalf("unexpected capabilities: %+v", info.Capabilities)
	}

	wantKeys := []string{"ContinueUrl", "CancelUrl", "ErrorUrl", "WebsiteKey", "SecretKey", "TestMode"}
	if len(info.Settings) != len(wantKeys) {
		t.Fatalf("expected %d settings, got %d", len(wantKeys), len(info.Settings))
	}
	for i, key := range wantKeys {
		if info.Settings[i].Key != key {
			t.Fatalf("setting %d: expected %s, got %s", i, key, info.Settings[i].Key)
		}
	}
}

func TestUnknownProvider(t *testing.T) {
	registry := provider.NewRegistry()

	_, err := registry.GetProvider("stripe")
	perr, ok := err.(*provider.ProviderError)
	if !ok {
		t.Fatalf("expected *ProviderError, got %T", err)
	}
	if perr.Code != provider.ErrProviderNotFound {
		t.Fatalf("unexpected code: %s", perr.Code)
	}
	if len(registry.GetAllProviderInfo()) != 0 {
		t.Fatal("expected no provider info")
	}
}

// TestProviderTypes tests provider type constants and availability
func TestProviderTypes(t *testing.T) {
	available := provider.GetAvailableProviders()
	if len(available) != 1 || available[0] != provider.ProviderBuckaroo {
		t.Fatalf("unexpected available providers: %v", available)
	}
	if !provider.IsProviderSupported(provider.ProviderBuckaroo) {
		t.Fatal("buckaroo should be supported")
	}
	if provider.IsProviderSupported("mpesa_daraja") {
		t.Fatal("mpesa should not be supported")
	}
}
