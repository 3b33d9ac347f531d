package strategy

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := mustConfig(t, scenarioParams())
	p := cfg.Params()
	assert.Equal(t, CategorySpot, p.Category)
	assert.Equal(t, 1.0, p.Leverage)
	assert.Equal(t, 2, p.MaxOutstandingOrders)
	assert.False(t, cfg.SupportsLeverage())
}

func TestNewConfigRejects(t *testing.T) {
	tests := []struct {
		name  string
		mut   func(p *Params)
		field string
	}{
		{"negative spread", func(p *Params) { p.BaseSpreadPct = -0.001 }, "baseSpreadPct"},
		{"zero order size", func(p *Params) { p.OrderSizePctOfBalance = 0 }, "orderSizePctOfBalance"},
		{"negative outstanding", func(p *Params) { p.MaxOutstandingOrders = -1 }, "maxOutstandingOrders"},
		{"unknown category", func(p *Params) { p.Category = "options" }, "category"},
		{"negative skew", func(p *Params) { p.Inventory.SkewIntensity = -1 }, "inventory.skewIntensity"},
		{"inventory without exposure", func(p *Params) {
			p.Inventory = InventoryParams{Enabled: true, SkewIntensity: 0.1, MaxInventoryRatio: 0.5}
		}, "maxNetExposure"},
		{"inventory without ratio", func(p *Params) {
			p.MaxNetExposure = 1000
			p.Inventory = InventoryParams{Enabled: true, SkewIntensity: 0.1}
		}, "inventory.maxInventoryRatio"},
		{"min spread above max", func(p *Params) {
			p.DynamicSpread = DynamicSpreadParams{MinSpreadPct: 0.01, MaxSpreadPct: 0.005}
		}, "dynamicSpread.minSpreadPct"},
		{"dynamic without window", func(p *Params) {
			p.DynamicSpread = DynamicSpreadParams{Enabled: true, MinSpreadPct: 0.001, MaxSpreadPct: 0.01}
		}, "dynamicSpread.volatilityWindowSeconds"},
		{"spot leverage", func(p *Params) { p.Leverage = 3 }, "leverage"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := scenarioParams()
			tt.mut(&p)
			_, err := NewConfig(p)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig))
			var cerr *ConfigError
			require.True(t, errors.As(err, &cerr))
			assert.Equal(t, tt.field, cerr.Field)
		})
	}
}

func TestConfigIsACopy(t *testing.T) {
	cfg := mustConfig(t, scenarioParams())
	p := cfg.Params()
	p.BaseSpreadPct = 0.5
	assert.Equal(t, 0.002, cfg.Params().BaseSpreadPct)
}

func TestLinearLeverage(t *testing.T) {
	p := scenarioParams()
	p.Category = CategoryLinear
	p.Leverage = 5
	cfg := mustConfig(t, p)
	assert.True(t, cfg.SupportsLeverage())
}
