package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"market-maker-backtest/backtest"
	"market-maker-backtest/sim"
)

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	return f.Sync()
}

func writeTradesCSV(path string, trades []sim.TradeRecord) error {
	header := []string{"ts_ms", "symbol", "side", "qty", "price", "fee", "realized_pnl",
		"holdings", "avg_entry_price", "net_realized_pnl", "balance"}
	rows := make([][]string, 0, len(trades))
	for _, t := range trades {
		rows = append(rows, []string{
			strconv.FormatInt(t.Ts.UnixMilli(), 10),
			t.Symbol,
			string(t.Side),
			formatFloat(t.Qty),
			formatFloat(t.Price),
			formatFloat(t.Fee),
			formatFloat(t.RealizedPnL),
			formatFloat(t.Holdings),
			formatFloat(t.AverageEntryPrice),
			formatFloat(t.NetRealizedPnL),
			formatFloat(t.Balance),
		})
	}
	return writeCSV(path, header, rows)
}

func writeEquityCSV(path string, curve []backtest.EquityPoint) error {
	rows := make([][]string, 0, len(curve))
	for _, p := range curve {
		rows = append(rows, []string{strconv.FormatInt(p.Ts.UnixMilli(), 10), formatFloat(p.Equity)})
	}
	return writeCSV(path, []string{"ts_ms", "equity"}, rows)
}

func writeSweepCSV(path string, results []backtest.TrialResult) error {
	if len(results) == 0 {
		return fmt.Errorf("no sweep results")
	}
	header := []string{"trial", "base_spread_pct", "order_size_pct", "skew_intensity", "volatility_multiplier",
		"status", "net_pnl", "max_drawdown", "sharpe_like", "trades", "final_position", "total_fees", "error"}
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		p := r.Trial.Params
		row := []string{
			r.Trial.Name,
			formatFloat(p.BaseSpreadPct),
			formatFloat(p.OrderSizePctOfBalance),
			formatFloat(p.Inventory.SkewIntensity),
			formatFloat(p.DynamicSpread.VolatilityMultiplier),
		}
		switch {
		case r.Rejected():
			row = append(row, "rejected", "", "", "", "", "", "", r.Err.Error())
		case r.Err != nil || r.Result == nil:
			row = append(row, "error", "", "", "", "", "", "", fmt.Sprint(r.Err))
		default:
			s := r.Result.Summary
			row = append(row, "ok",
				formatFloat(s.NetPnL),
				formatFloat(s.MaxDrawdown),
				formatFloat(s.SharpeLike),
				strconv.Itoa(s.TotalTrades),
				formatFloat(s.FinalPosition),
				formatFloat(s.TotalFees),
				"")
		}
		rows = append(rows, row)
	}
	return writeCSV(path, header, rows)
}
