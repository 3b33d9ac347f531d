package inventory

import (
	"testing"

	"market-maker-backtest/market"
)

func TestValuation(t *testing.T) {
	var l Ledger
	l.Apply(market.Buy, 1, 100, 0)
	if pnl := l.UnrealizedPnL(110); pnl != 10 {
		t.Fatalf("expected unrealized 10, got %f", pnl)
	}
	l.Apply(market.Sell, 0.5, 120, 0)
	if eq := l.Equity(110); eq != 15 {
		t.Fatalf("expected equity 15, got %f", eq)
	}
	if pnl := l.UnrealizedPnL(0); pnl != 0 {
		t.Fatalf("expected zero pnl for missing mark, got %f", pnl)
	}
}

func TestSnapshot(t *testing.T) {
	var l Ledger
	l.Apply(market.Sell, 2, 50, 0.1)
	s := l.Snapshot()
	if s.Holdings != -2 || s.AverageEntryPrice != 50 || s.TotalFees != 0.1 {
		t.Fatalf("unexpected snapshot %+v", s)
	}
}
