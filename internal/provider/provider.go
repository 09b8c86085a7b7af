package provider

// Provider is what the host needs to know about a payment provider to list
// it and render its settings form. Payment operations are typed per provider
// because each one has its own settings shape.
type Provider interface {
	Alias() ProviderType
	Name() string
	Description() string
	Capabilities() Capabilities
	SettingsSchema() []SettingField
}

// SettingsValidator is implemented by providers that can check raw settings
// before the host stores them
type SettingsValidator interface {
	ValidateSettings(values map[string]string) error
}
