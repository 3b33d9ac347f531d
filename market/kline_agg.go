package market

import (
	"sync"
	"time"
)

// KlineAggregator 从成交流生成固定周期的 Bar，供只推送成交的行情源使用。
type KlineAggregator struct {
	Interval time.Duration
	mu       sync.Mutex
	current  *Bar
}

func NewKlineAggregator(interval time.Duration) *KlineAggregator {
	if interval <= 0 {
		interval = time.Minute
	}
	return &KlineAggregator{Interval: interval}
}

// OnTrade 更新当前 Bar；跨入新周期时返回已闭合的 Bar，否则返回 nil。
// 早于当前周期的成交直接丢弃。
func (a *KlineAggregator) OnTrade(t Trade) *Bar {
	a.mu.Lock()
	defer a.mu.Unlock()
	if t.Price <= 0 {
		return nil
	}
	start := t.Ts.Truncate(a.Interval)
	if a.current != nil && start.Before(a.current.StartTime) {
		return nil
	}
	if a.current == nil || start.After(a.current.StartTime) {
		closed := a.current
		a.current = &Bar{
			StartTime: start,
			Open:      t.Price,
			High:      t.Price,
			Low:       t.Price,
			Close:     t.Price,
			Volume:    t.Qty,
		}
		return closed
	}

	if t.Price > a.current.High {
		a.current.High = t.Price
	}
	if t.Price < a.current.Low {
		a.current.Low = t.Price
	}
	a.current.Close = t.Price
	a.current.Volume += t.Qty
	return nil
}

// Current 返回尚未闭合的 Bar 副本。
func (a *KlineAggregator) Current() (Bar, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current == nil {
		return Bar{}, false
	}
	return *a.current, true
}
