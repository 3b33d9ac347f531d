package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"market-maker-backtest/instrument"
)

func TestScenarioQuoteAtHundred(t *testing.T) {
	cfg := mustConfig(t, scenarioParams())
	q := ComputeQuote(stateAt(100, 0), cfg, scenarioRules())
	assert.Equal(t, 99.90, q.BidPrice)
	assert.Equal(t, 100.10, q.AskPrice)
	// 10000 * 0.02 / 99.9 = 2.002 -> 2；10000 * 0.02 / 100.1 = 1.998 -> 1
	assert.Equal(t, 2.0, q.BidQty)
	assert.Equal(t, 1.0, q.AskQty)
	assert.Empty(t, q.Warnings)
}

func TestQuoteMissingRules(t *testing.T) {
	cfg := mustConfig(t, scenarioParams())
	q := ComputeQuote(stateAt(100, 0), cfg, nil)
	assert.True(t, q.Empty())
	assert.NotEmpty(t, q.Warnings)

	q = ComputeQuote(stateAt(100, 0), cfg, &instrument.Rules{PriceTick: 0.01})
	assert.True(t, q.Empty())
}

func TestQuoteNonPositiveMid(t *testing.T) {
	cfg := mustConfig(t, scenarioParams())
	st := stateAt(100, 0)
	st.MidPrice = 0
	q := ComputeQuote(st, cfg, scenarioRules())
	assert.True(t, q.Empty())
	assert.Zero(t, q.BidPrice)
	assert.Contains(t, q.Warnings, "non-positive mid price")

	q = ComputeQuote(nil, cfg, scenarioRules())
	assert.True(t, q.Empty())
}

func TestQuoteEnforcesMinimumProfit(t *testing.T) {
	p := scenarioParams()
	p.BaseSpreadPct = 0.0002
	p.MinProfitSpreadAfterFeesPct = 0.001
	cfg := mustConfig(t, p)
	q := ComputeQuote(stateAt(100, 0), cfg, scenarioRules())
	// required = 0.001 + 2*0.0005 = 0.002 -> 以 mid 为中心各 0.10
	assert.Equal(t, 99.90, q.BidPrice)
	assert.Equal(t, 100.10, q.AskPrice)
}

func TestQuoteFloorAnchoredOnUnskewedMid(t *testing.T) {
	p := inventoryParams(0.05)
	p.BaseSpreadPct = 0.0002
	p.MinProfitSpreadAfterFeesPct = 0.001
	cfg := mustConfig(t, p)
	q := ComputeQuote(stateAt(100, 4), cfg, scenarioRules())
	assert.Less(t, q.SkewFactor, 0.0)
	assert.Equal(t, 99.90, q.BidPrice)
	assert.Equal(t, 100.10, q.AskPrice)
}

func TestQuoteSkewShiftsPrices(t *testing.T) {
	cfg := mustConfig(t, inventoryParams(0.01))
	flat := ComputeQuote(stateAt(100, 0), cfg, scenarioRules())
	long := ComputeQuote(stateAt(100, 2), cfg, scenarioRules())
	short := ComputeQuote(stateAt(100, -2), cfg, scenarioRules())
	assert.Less(t, long.AskPrice, flat.AskPrice)
	assert.Less(t, long.BidPrice, flat.BidPrice)
	assert.Greater(t, short.AskPrice, flat.AskPrice)
	assert.Greater(t, short.BidPrice, flat.BidPrice)
}

func TestQuoteOrderingAndFloor(t *testing.T) {
	rules := scenarioRules()
	rules.QtyStep = 0.001
	rules.MinOrderQty = 0.001
	for _, spread := range []float64{0.0001, 0.002, 0.05} {
		for _, intensity := range []float64{0, 0.01, 0.2} {
			p := inventoryParams(intensity)
			p.BaseSpreadPct = spread
			cfg := mustConfig(t, p)
			for _, mid := range []float64{0.5, 1, 99.99, 100, 2500.55} {
				for _, h := range []float64{-50, -3, 0, 3, 50} {
					q := ComputeQuote(stateAt(mid, h), cfg, rules)
					if q.BidPrice <= 0 || q.AskPrice <= 0 {
						continue
					}
					assert.Greater(t, q.AskPrice, q.BidPrice, "mid=%v h=%v spread=%v", mid, h, spread)
					floor := mid * RequiredSpread(cfg, rules)
					assert.GreaterOrEqual(t, q.AskPrice-q.BidPrice, floor-rules.PriceTick-1e-9,
						"mid=%v h=%v spread=%v", mid, h, spread)
				}
			}
		}
	}
}

func TestEngineLogsDegradedQuote(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	cfg := mustConfig(t, scenarioParams())
	eng := NewEngine(cfg, zap.New(core))
	q := eng.Quote(stateAt(100, 0), nil)
	require.True(t, q.Empty())
	require.Equal(t, 1, logs.FilterMessage("quote degraded").Len())
	assert.Equal(t, cfg, eng.Config())
}
