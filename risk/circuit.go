package risk

import (
	"time"

	"market-maker-backtest/state"
)

// CircuitBreaker 基于近期价格点的相对涨跌幅触发熔断，触发时当根 K 线不报价。
type CircuitBreaker struct {
	// 阈值：1m、5m 相对涨跌幅，<=0 表示关闭该窗口
	OneMinuteThresh  float64
	FiveMinuteThresh float64
}

func NewCircuitBreaker(one, five float64) *CircuitBreaker {
	return &CircuitBreaker{
		OneMinuteThresh:  one,
		FiveMinuteThresh: five,
	}
}

// Enabled 至少一个窗口配置了阈值。
func (c *CircuitBreaker) Enabled() bool {
	return c != nil && (c.OneMinuteThresh > 0 || c.FiveMinuteThresh > 0)
}

// Check 返回 (是否触发, 触发窗口 "1m"/"5m"/"")，points 需按时间升序。
func (c *CircuitBreaker) Check(points []state.PricePoint) (bool, string) {
	if !c.Enabled() || len(points) == 0 {
		return false, ""
	}
	now := points[len(points)-1].Ts
	if trip := check(trim(points, now.Add(-1*time.Minute)), c.OneMinuteThresh); trip {
		return true, "1m"
	}
	if trip := check(trim(points, now.Add(-5*time.Minute)), c.FiveMinuteThresh); trip {
		return true, "5m"
	}
	return false, ""
}

func trim(buf []state.PricePoint, cutoff time.Time) []state.PricePoint {
	i := 0
	for ; i < len(buf); i++ {
		if !buf[i].Ts.Before(cutoff) {
			break
		}
	}
	return buf[i:]
}

func check(buf []state.PricePoint, thresh float64) bool {
	if thresh <= 0 || len(buf) == 0 {
		return false
	}
	first := buf[0].Price
	last := buf[len(buf)-1].Price
	if first == 0 {
		return false
	}
	change := (last - first) / first
	return change > thresh || change < -thresh
}
