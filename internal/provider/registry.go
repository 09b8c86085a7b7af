package provider

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
)

// Registry keeps the payment providers the host has enabled
type Registry struct {
	providers map[ProviderType]Provider
	mu        sync.RWMutex
}

// NewRegistry creates an empty provider registry
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[ProviderType]Provider),
	}
}

// RegisterProvider adds a provider under its alias
func (r *Registry) RegisterProvider(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !IsProviderSupported(p.Alias()) {
		log.Warn().Str("provider", string(p.Alias())).Msg("registering provider this build does not ship")
	}
	r.providers[p.Alias()] = p
	caps := p.Capabilities()
	log.Info().
		Str("provider", string(p.Alias())).
		Str("name", p.Name()).
		Bool("fetch_status", caps.CanFetchPaymentStatus).
		Bool("cancel", caps.CanCancelPayments).
		Bool("capture", caps.CanCapturePayments).
		Bool("refund", caps.CanRefundPayments).
		Msg("registered payment provider")
}

// GetProvider returns a provider by alias
func (r *Registry) GetProvider(providerType ProviderType) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[providerType]
	if !ok {
		return nil, &ProviderError{
			Code:    ErrProviderNotFound,
			Message: fmt.Sprintf("provider %s not registered", providerType),
		}
	}
	return p, nil
}

// ListProviders returns all registered aliases in a stable order
func (r *Registry) ListProviders() []ProviderType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]ProviderType, 0, len(r.providers))
	for t := range r.providers {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// ProviderInfo contains metadata about a provider
type ProviderInfo struct {
	Type         ProviderType   `json:"type"`
	Name         string         `json:"name"`
	Description  string         `json:"description"`
	Capabilities Capabilities   `json:"capabilities"`
	Settings     []SettingField `json:"settings"`
}

// GetProviderInfo returns detailed information about a provider
func (r *Registry) GetProviderInfo(providerType ProviderType) (*ProviderInfo, error) {
	p, err := r.GetProvider(providerType)
	if err != nil {
		return nil, err
	}
	return infoFor(p), nil
}

// GetAllProviderInfo returns information about all registered providers
func (r *Registry) GetAllProviderInfo() []*ProviderInfo {
	var infos []*ProviderInfo
	for _, t := range r.ListProviders() {
		if info, err := r.GetProviderInfo(t); err == nil {
			infos = append(infos, info)
		}
	}
	return infos
}

func infoFor(p Provider) *ProviderInfo {
	settings := append([]SettingField(nil), p.SettingsSchema()...)
	sort.SliceStable(settings, func(i, j int) bool { return settings[i].SortOrder < settings[j].SortOrder })

	return &ProviderInfo{
		Type:         p.Alias(),
		Name:         p.Name(),
		Description:  p.Description(),
		Capabilities: p.Capabilities(),
		Settings:     settings,
	}
}
