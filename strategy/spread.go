package strategy

import (
	"math"
	"time"

	"market-maker-backtest/state"
)

// DynamicSpread 基于窗口内 K 线的真实波幅（ATR）放大基础价差。
//
// 未启用或窗口内不足 2 根 K 线时直接返回基础价差；mid 非正时返回基础价差并附带告警。
// 最新一根的收盘价以当前 mid 代替，mid 落在该根高低点之外时扩展其波幅。
func DynamicSpread(st *state.TradingState, cfg Config) (float64, string) {
	p := cfg.p
	base := p.BaseSpreadPct
	if !p.DynamicSpread.Enabled || st == nil {
		return base, ""
	}
	candles := inWindow(st.Candles(), p.DynamicSpread.VolatilityWindowSeconds)
	if len(candles) < 2 {
		return base, ""
	}
	mid := st.MidPrice
	if mid <= 0 || math.IsNaN(mid) {
		return base, "non-positive mid price, dynamic spread falls back to base"
	}

	last := len(candles) - 1
	candles[last].Close = mid
	candles[last].High = math.Max(candles[last].High, mid)
	candles[last].Low = math.Min(candles[last].Low, mid)

	sum := 0.0
	for i := 1; i < len(candles); i++ {
		sum += trueRange(candles[i], candles[i-1].Close)
	}
	atr := sum / float64(last)
	if math.IsNaN(atr) || math.IsInf(atr, 0) {
		return base, "non-finite atr, dynamic spread falls back to base"
	}
	spread := base + atr/mid*p.DynamicSpread.VolatilityMultiplier
	return clamp(spread, p.DynamicSpread.MinSpreadPct, p.DynamicSpread.MaxSpreadPct), ""
}

func trueRange(c state.Candle, prevClose float64) float64 {
	return math.Max(c.High-c.Low, math.Max(math.Abs(c.High-prevClose), math.Abs(c.Low-prevClose)))
}

// inWindow 截取最新一根往前 windowSeconds 内的 K 线（含边界）。
func inWindow(candles []state.Candle, windowSeconds int) []state.Candle {
	if len(candles) == 0 || windowSeconds <= 0 {
		return candles
	}
	cutoff := candles[len(candles)-1].Ts.Add(-time.Duration(windowSeconds) * time.Second)
	i := 0
	for i < len(candles) && candles[i].Ts.Before(cutoff) {
		i++
	}
	return candles[i:]
}

func clamp(v, lo, hi float64) float64 {
	if hi > 0 && v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}
