package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func inventoryParams(intensity float64) Params {
	p := scenarioParams()
	p.MaxNetExposure = 1000
	p.Inventory = InventoryParams{Enabled: true, SkewIntensity: intensity, MaxInventoryRatio: 0.5}
	return p
}

func TestSkewFactorSign(t *testing.T) {
	cfg := mustConfig(t, inventoryParams(0.01))
	for _, h := range []float64{0.001, 1, 5, 1e6} {
		assert.LessOrEqual(t, SkewFactor(h, 100, cfg), 0.0, "holdings %v", h)
		assert.GreaterOrEqual(t, SkewFactor(-h, 100, cfg), 0.0, "holdings %v", -h)
	}
	assert.Zero(t, SkewFactor(0, 100, cfg))
}

func TestSkewFactorMagnitude(t *testing.T) {
	cfg := mustConfig(t, inventoryParams(0.01))
	// 2 * 100 / (1000*0.5) = 0.4
	assert.InDelta(t, -0.004, SkewFactor(2, 100, cfg), 1e-12)
	// 超过上限截断到 ±1
	assert.InDelta(t, -0.01, SkewFactor(50, 100, cfg), 1e-12)
	assert.InDelta(t, 0.01, SkewFactor(-50, 100, cfg), 1e-12)
}

func TestSkewFactorDisabled(t *testing.T) {
	cfg := mustConfig(t, scenarioParams())
	assert.Zero(t, SkewFactor(5, 100, cfg))

	cfg = mustConfig(t, inventoryParams(0.01))
	assert.Zero(t, SkewFactor(5, 0, cfg))
	assert.Zero(t, SkewFactor(5, -1, cfg))
}
