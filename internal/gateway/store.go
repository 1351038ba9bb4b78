package gateway

import (
	"context"
	"strings"
)

// StoreGateway answers per-store settings the core does not own
type StoreGateway interface {
	// DefaultCurrency returns the store's configured currency code
	DefaultCurrency(ctx context.Context, storeID string) (string, error)
}

// ConfigStoreGateway serves every store the same configured default.
// Stands in until stores carry their own settings.
type ConfigStoreGateway struct {
	currency string
}

// NewConfigStoreGateway creates a new ConfigStoreGateway
func NewConfigStoreGateway(currency string) *ConfigStoreGateway {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = "USD"
	}
	return &ConfigStoreGateway{currency: currency}
}

// DefaultCurrency returns the configured default
func (g *ConfigStoreGateway) DefaultCurrency(ctx context.Context, storeID string) (string, error) {
	return g.currency, nil
}
