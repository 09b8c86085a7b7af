package buckaroo

import (
	"fmt"
	"strings"

	"buckaroopay/internal/gateway"
	"buckaroopay/internal/provider"

	"github.com/mitchellh/mapstructure"
)

// Settings are the persisted provider settings, resolved by the host per call
type Settings struct {
	ContinueURL string `mapstructure:"ContinueUrl"`
	CancelURL   string `mapstructure:"CancelUrl"`
	ErrorURL    string `mapstructure:"ErrorUrl"`
	WebsiteKey  string `mapstructure:"WebsiteKey"`
	SecretKey   string `mapstructure:"SecretKey"`
	TestMode    bool   `mapstructure:"TestMode"`
}

// Setting keys as persisted by the host
const (
	KeyContinueURL = "ContinueUrl"
	KeyCancelURL   = "CancelUrl"
	KeyErrorURL    = "ErrorUrl"
	KeyWebsiteKey  = "WebsiteKey"
	KeySecretKey   = "SecretKey"
	KeyTestMode    = "TestMode"
)

// SettingsSchema describes the settings for the host's settings UI
func SettingsSchema() []provider.SettingField {
	return []provider.SettingField{
		{
			Key:         KeyContinueURL,
			Name:        "Continue URL",
			Description: "The URL to continue to after this provider has done processing. eg: /continue/",
			SortOrder:   100,
			Type:        provider.SettingText,
			Required:    true,
		},
		{
			Key:         KeyCancelURL,
			Name:        "Cancel URL",
			Description: "The URL to return to if the payment attempt is canceled. eg: /cancel/",
			SortOrder:   200,
			Type:        provider.SettingText,
			Required:    true,
		},
		{
			Key:         KeyErrorURL,
			Name:        "Error URL",
			Description: "The URL to return to if the payment attempt errors. eg: /error/",
			SortOrder:   300,
			Type:        provider.SettingText,
			Required:    true,
		},
		{
			Key:         KeyWebsiteKey,
			Name:        "Website key",
			Description: "The website key, which can be found here: https://plaza.buckaroo.nl/Configuration/WebSite/Index/",
			SortOrder:   400,
			Type:        provider.SettingText,
			Required:    true,
		},
		{
			Key:         KeySecretKey,
			Name:        "Secret key",
			Description: "The secret key, which can be found here: https://plaza.buckaroo.nl/Configuration/Merchant/SecretKey",
			SortOrder:   500,
			Type:        provider.SettingPassword,
			Required:    true,
		},
		{
			Key:         KeyTestMode,
			Name:        "Test mode",
			Description: "Set whether to process payments in test mode",
			SortOrder:   10000,
			Type:        provider.SettingBool,
		},
	}
}

// DecodeSettings maps persisted key/value settings onto Settings. Values are
// weakly typed so "true" and "1" both enable TestMode.
func DecodeSettings(values map[string]string) (Settings, error) {
	var s Settings
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &s,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return s, err
	}

	input := make(map[string]interface{}, len(values))
	for k, v := range values {
		input[k] = strings.TrimSpace(v)
	}
	if err := dec.Decode(input); err != nil {
		return s, fmt.Errorf("decode buckaroo settings: %w", err)
	}
	return s, nil
}

func required(name, value string) (string, error) {
	if strings.TrimSpace(value) == "" {
		return "", &provider.ConfigurationError{Setting: name}
	}
	return value, nil
}

// RequireContinueURL returns the continue URL or a ConfigurationError
func (s Settings) RequireContinueURL() (string, error) {
	return required("settings.ContinueUrl", s.ContinueURL)
}

// RequireCancelURL returns the cancel URL or a ConfigurationError
func (s Settings) RequireCancelURL() (string, error) {
	return required("settings.CancelUrl", s.CancelURL)
}

// RequireErrorURL returns the error URL or a ConfigurationError
func (s Settings) RequireErrorURL() (string, error) {
	return required("settings.ErrorUrl", s.ErrorURL)
}

// credentials builds gateway credentials; live mode is the inverse of TestMode
func (s Settings) credentials(culture string) (gateway.Credentials, error) {
	websiteKey, err := required("settings.WebsiteKey", s.WebsiteKey)
	if err != nil {
		return gateway.Credentials{}, err
	}
	secretKey, err := required("settings.SecretKey", s.SecretKey)
	if err != nil {
		return gateway.Credentials{}, err
	}
	return gateway.Credentials{
		WebsiteKey: websiteKey,
		SecretKey:  secretKey,
		Live:       !s.TestMode,
		Culture:    culture,
	}, nil
}
