package extractor

import (
	"fmt"
	"sort"

	"pocketpilot/internal/config"
	"pocketpilot/internal/port"
)

// ProviderFactory creates a ReceiptExtractor from a provider config.
type ProviderFactory func(cfg *config.ExtractorProviderConfig) (port.ReceiptExtractor, error)

// registry of extraction provider factories, populated at startup via RegisterProvider.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers an extraction provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// NewExtractor creates a ReceiptExtractor from a provider config using the registered factory.
func NewExtractor(cfg *config.ExtractorProviderConfig) (port.ReceiptExtractor, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown extraction provider: %s", cfg.Provider)
	}
	return factory(cfg)
}

// Providers lists the registered provider names in sorted order.
func Providers() []string {
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
