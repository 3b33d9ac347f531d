package inventory

import (
	"math"

	"market-maker-backtest/market"
)

// 浮点残差小于该值时视为平仓。
const flatEpsilon = 1e-12

// Ledger 记录单次运行的持仓与盈亏，纯记账，不做 I/O。
// 非并发安全：一个 Ledger 只属于一个 TradingState。
type Ledger struct {
	holdings float64
	avgEntry float64
	realized float64
	fees     float64
}

// Apply 记入一笔成交，返回本笔的已实现盈亏。
//
// 已实现盈亏在修改仓位之前计算：多头卖出按 (price-avg)*qty，空头买入按
// (avg-price)*qty，开仓/加仓为 0。加仓时按持仓加权重算均价；减仓均价不变；
// 恰好平仓时均价归零；反手时均价重置为成交价，整笔数量都计入已实现盈亏。
func (l *Ledger) Apply(side market.Side, qty, price, fee float64) float64 {
	if qty <= 0 {
		return 0
	}
	delta := qty
	if side == market.Sell {
		delta = -qty
	}

	realized := 0.0
	switch {
	case side == market.Sell && l.holdings > 0:
		realized = (price - l.avgEntry) * qty
	case side == market.Buy && l.holdings < 0:
		realized = (l.avgEntry - price) * qty
	}

	prev := l.holdings
	next := prev + delta
	if math.Abs(next) < flatEpsilon {
		next = 0
	}
	switch {
	case prev == 0 || sameSign(prev, delta):
		l.avgEntry = (l.avgEntry*math.Abs(prev) + price*qty) / math.Abs(next)
	case next == 0:
		l.avgEntry = 0
	case sameSign(prev, next):
		// 减仓，均价不变
	default:
		l.avgEntry = price
	}

	l.holdings = next
	l.realized += realized
	l.fees += fee
	return realized
}

func sameSign(a, b float64) bool {
	return (a > 0 && b > 0) || (a < 0 && b < 0)
}

func (l *Ledger) Holdings() float64 { return l.holdings }

// AverageEntryPrice 仅在持仓非零时有意义。
func (l *Ledger) AverageEntryPrice() float64 { return l.avgEntry }

func (l *Ledger) NetRealizedPnL() float64 { return l.realized }

func (l *Ledger) TotalFees() float64 { return l.fees }
