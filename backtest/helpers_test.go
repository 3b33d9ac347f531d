package backtest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"market-maker-backtest/instrument"
	"market-maker-backtest/market"
	"market-maker-backtest/sim"
	"market-maker-backtest/strategy"
)

func testParams() strategy.Params {
	return strategy.Params{
		BaseSpreadPct:               0.002,
		OrderSizePctOfBalance:       0.02,
		MaxOrderSizePct:             0.05,
		MinProfitSpreadAfterFeesPct: 0.0005,
	}
}

func testRunnerConfig(tb testing.TB) sim.RunnerConfig {
	tb.Helper()
	cfg, err := strategy.NewConfig(testParams())
	require.NoError(tb, err)
	return sim.RunnerConfig{
		Symbol: "TESTUSDT",
		Rules: &instrument.Rules{
			Symbol:       "TESTUSDT",
			PriceTick:    0.01,
			QtyStep:      1,
			MinOrderQty:  1,
			MinNotional:  5,
			MakerFeeRate: 0.0005,
			TakerFeeRate: 0.0005,
		},
		Strategy:       cfg,
		InitialBalance: 10000,
		BarInterval:    time.Minute,
	}
}

func flatBar(sec int64) market.Bar {
	return market.Bar{StartTime: time.Unix(sec, 0), Open: 100, High: 100, Low: 100, Close: 100, Volume: 4}
}

// scenarioBars: 第二根下探 99.80 触发买单，第三根上探 100.20 触发卖单。
func scenarioBars() []market.Bar {
	bars := []market.Bar{flatBar(0), flatBar(60), flatBar(120)}
	bars[1].Low = 99.80
	bars[2].High = 100.20
	return bars
}
