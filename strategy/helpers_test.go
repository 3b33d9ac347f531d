package strategy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"market-maker-backtest/instrument"
	"market-maker-backtest/market"
	"market-maker-backtest/state"
)

func scenarioRules() *instrument.Rules {
	return &instrument.Rules{
		Symbol:       "TESTUSDT",
		PriceTick:    0.01,
		QtyStep:      1,
		MinOrderQty:  1,
		MinNotional:  5,
		MakerFeeRate: 0.0005,
		TakerFeeRate: 0.0005,
	}
}

func scenarioParams() Params {
	return Params{
		BaseSpreadPct:               0.002,
		OrderSizePctOfBalance:       0.02,
		MaxOrderSizePct:             0.05,
		MinProfitSpreadAfterFeesPct: 0.0005,
	}
}

func mustConfig(t *testing.T, p Params) Config {
	t.Helper()
	cfg, err := NewConfig(p)
	require.NoError(t, err)
	return cfg
}

func stateAt(mid float64, holdings float64) *state.TradingState {
	st := state.New(state.Config{InitialBalance: 10000, CandleCapacity: 6})
	st.OnBar(market.Bar{StartTime: time.Unix(0, 0), Open: mid, High: mid, Low: mid, Close: mid, Volume: 4})
	switch {
	case holdings > 0:
		st.Apply(market.Buy, holdings, mid, 0)
	case holdings < 0:
		st.Apply(market.Sell, -holdings, mid, 0)
	}
	return st
}
