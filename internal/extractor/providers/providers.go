// Package providers wires every built-in extraction provider into the
// extractor registry.
package providers

import (
	"pocketpilot/internal/config"
	"pocketpilot/internal/extractor"
	"pocketpilot/internal/extractor/demo"
	"pocketpilot/internal/extractor/documentai"
	"pocketpilot/internal/extractor/gemini"
	"pocketpilot/internal/port"
)

// RegisterAll registers the documentai, gemini and demo providers.
func RegisterAll() {
	extractor.RegisterProvider("documentai", func(cfg *config.ExtractorProviderConfig) (port.ReceiptExtractor, error) {
		x, err := documentai.NewExtractor(cfg)
		if err != nil {
			return nil, err
		}
		return x, nil
	})
	extractor.RegisterProvider("gemini", func(cfg *config.ExtractorProviderConfig) (port.ReceiptExtractor, error) {
		return gemini.NewExtractor(cfg), nil
	})
	extractor.RegisterProvider("demo", func(cfg *config.ExtractorProviderConfig) (port.ReceiptExtractor, error) {
		return demo.NewExtractor(cfg), nil
	})
}

// Build creates the configured extractor chain: the primary provider alone,
// or a FallbackExtractor when a secondary provider is configured.
func Build(cfg *config.ExtractorConfig) (port.ReceiptExtractor, error) {
	primary, err := extractor.NewExtractor(&cfg.Primary)
	if err != nil {
		return nil, err
	}
	secondaryCfg := cfg.SecondaryConfig()
	if secondaryCfg == nil {
		return primary, nil
	}
	secondary, err := extractor.NewExtractor(secondaryCfg)
	if err != nil {
		return nil, err
	}
	return extractor.NewFallbackExtractor(
		[]port.ReceiptExtractor{primary, secondary},
		[]string{cfg.Primary.Provider, secondaryCfg.Provider},
	), nil
}
