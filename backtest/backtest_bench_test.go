package backtest

import (
	"context"
	"math"
	"testing"
	"time"

	"market-maker-backtest/market"
)

func syntheticBars(n int) []market.Bar {
	bars := make([]market.Bar, n)
	for i := range bars {
		mid := 100 + math.Sin(float64(i)/20)
		bars[i] = market.Bar{
			StartTime: time.Unix(int64(i*60), 0),
			Open:      mid,
			High:      mid + 0.3,
			Low:       mid - 0.3,
			Close:     mid,
			Volume:    10,
		}
	}
	return bars
}

// BenchmarkRun 基准测试单次回测（1 天分钟线）
func BenchmarkRun(b *testing.B) {
	cfg := testRunnerConfig(b)
	bars := syntheticBars(1440)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		eng, err := New(cfg, nil, nil)
		if err != nil {
			b.Fatal(err)
		}
		if _, err := eng.Run(context.Background(), bars); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkSweep 基准测试并行调参
func BenchmarkSweep(b *testing.B) {
	cfg := testRunnerConfig(b)
	bars := syntheticBars(1440)
	trials := Grid(testParams(), GridAxes{
		BaseSpreadPct:         []float64{0.002, 0.003, 0.004, 0.005},
		OrderSizePctOfBalance: []float64{0.01, 0.02},
	})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Sweep(context.Background(), cfg, trials, bars, 4, nil); err != nil {
			b.Fatal(err)
		}
	}
}
