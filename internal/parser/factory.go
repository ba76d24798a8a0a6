package parser

import (
	"fmt"

	"go.uber.org/zap"

	"spendbot/internal/config"
	"spendbot/internal/port"
)

// ProviderFactory is a function that creates a DocumentParser from a provider config.
type ProviderFactory func(cfg *config.ParserProviderConfig) (port.DocumentParser, error)

// providers is populated by RegisterProvider, normally from main.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers a parser provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// NewParser creates a DocumentParser from a provider config using the registered factory.
func NewParser(cfg *config.ParserProviderConfig) (port.DocumentParser, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown parser provider: %s", cfg.Provider)
	}
	return factory(cfg)
}

// NewChain builds a FallbackParser over every configured provider, in order.
func NewChain(cfg *config.ParserConfig, log *zap.Logger) (*FallbackParser, error) {
	var (
		parsers []port.DocumentParser
		names   []string
	)
	for _, pc := range cfg.Providers() {
		p, err := NewParser(pc)
		if err != nil {
			return nil, err
		}
		parsers = append(parsers, p)
		names = append(names, pc.Provider)
	}
	return NewFallbackParser(parsers, names, log), nil
}
