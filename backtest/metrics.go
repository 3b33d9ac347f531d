package backtest

import "math"

// MaxDrawdown 从左到右扫描权益曲线，返回运行峰值与当前权益的最大差值。
func MaxDrawdown(curve []EquityPoint) float64 {
	if len(curve) == 0 {
		return 0
	}
	peak := curve[0].Equity
	maxDD := 0.0
	for _, p := range curve {
		if p.Equity > peak {
			peak = p.Equity
		}
		if dd := peak - p.Equity; dd > maxDD {
			maxDD = dd
		}
	}
	return maxDD
}

// SharpeLike 每根权益增量的均值除以标准差（总体标准差，未年化）。
// 增量少于 2 个或标准差为 0 时返回 0。
func SharpeLike(curve []EquityPoint) float64 {
	if len(curve) < 3 {
		return 0
	}
	deltas := make([]float64, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		deltas[i-1] = curve[i].Equity - curve[i-1].Equity
	}
	mean := 0.0
	for _, d := range deltas {
		mean += d
	}
	mean /= float64(len(deltas))

	variance := 0.0
	for _, d := range deltas {
		diff := d - mean
		variance += diff * diff
	}
	variance /= float64(len(deltas))
	std := math.Sqrt(variance)
	if std == 0 {
		return 0
	}
	return mean / std
}
