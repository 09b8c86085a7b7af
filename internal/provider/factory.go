package provider

// GetAvailableProviders returns a list of all provider types this build ships
func GetAvailableProviders() []ProviderType {
	return []ProviderType{
		ProviderBuckaroo,
	}
}

// IsProviderSupported checks if a provider type is supported
func IsProviderSupported(providerType ProviderType) bool {
	for _, available := range GetAvailableProviders() {
		if available == providerType {
			return true
		}
	}
	return false
}
