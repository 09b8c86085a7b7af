package handlers

import (
	"encoding/json"
	"net/http"

	"buckaroopay/internal/crypto"
	"buckaroopay/internal/provider"
	"buckaroopay/internal/store/repositories"

	"github.com/go-chi/chi/v5"
)

// ListProviders returns every registered provider with its settings schema
func ListProviders(reg *provider.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"data": reg.GetAllProviderInfo()})
	}
}

// SaveProviderSettings stores settings for a provider. Password fields are
// sealed before they reach the database when a key is configured.
func SaveProviderSettings(reg *provider.Registry, repo repositories.SettingsRepository, aesKey []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		alias := provider.ProviderType(chi.URLParam(r, "alias"))
		info, err := reg.GetProviderInfo(alias)
		if err != nil {
			writeError(w, r, err)
			return
		}

		var values map[string]string
		if err := json.NewDecoder(r.Body).Decode(&values); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}

		fields := make(map[string]provider.SettingField, len(info.Settings))
		for _, f := range info.Settings {
			fields[f.Key] = f
		}
		for key := range values {
			if _, ok := fields[key]; !ok {
				http.Error(w, "unknown setting "+key, http.StatusBadRequest)
				return
			}
		}

		// check the stored settings merged with the incoming values so a bad
		// value never reaches the table checkouts decode from
		if p, err := reg.GetProvider(alias); err == nil {
			if v, ok := p.(provider.SettingsValidator); ok {
				stored, err := repo.LoadProviderSettings(r.Context(), string(alias))
				if err != nil {
					writeError(w, r, err)
					return
				}
				merged := make(map[string]string, len(stored)+len(values))
				for k, val := range stored {
					merged[k] = val
				}
				for k, val := range values {
					merged[k] = val
				}
				if err := v.ValidateSettings(merged); err != nil {
					http.Error(w, "invalid settings: "+err.Error(), http.StatusBadRequest)
					return
				}
			}
		}

		for key, value := range values {
			if fields[key].Type == provider.SettingPassword && len(aesKey) > 0 && value != "" {
				sealed, err := crypto.Seal(aesKey, value)
				if err != nil {
					writeError(w, r, err)
					return
				}
				value = sealed
			}
			if err := repo.SaveProviderSetting(r.Context(), string(alias), key, value); err != nil {
				writeError(w, r, err)
				return
			}
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

