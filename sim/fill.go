package sim

import (
	"math"
	"time"

	"market-maker-backtest/instrument"
	"market-maker-backtest/market"
	"market-maker-backtest/state"
	"market-maker-backtest/strategy"
)

// DefaultParticipationRatio 假设模拟挂单最多吃到当根成交量的 25%。
const DefaultParticipationRatio = 0.25

// TradeRecord 成交后的完整快照，追加后不再修改。
type TradeRecord struct {
	Symbol            string
	Ts                time.Time
	Side              market.Side
	Qty               float64
	Price             float64
	Fee               float64
	RealizedPnL       float64
	Holdings          float64
	AverageEntryPrice float64
	NetRealizedPnL    float64
	Balance           float64
}

// Simulator 按 K 线判断报价是否成交并结算到 TradingState。
type Simulator struct {
	ParticipationRatio float64

	rules  *instrument.Rules
	sink   EventSink
	trades []TradeRecord
}

func NewSimulator(rules *instrument.Rules, participation float64, sink EventSink) *Simulator {
	if participation <= 0 {
		participation = DefaultParticipationRatio
	}
	if sink == nil {
		sink = NopSink{}
	}
	return &Simulator{
		ParticipationRatio: participation,
		rules:              rules,
		sink:               sink,
		trades:             make([]TradeRecord, 0),
	}
}

// Capacity 当根可成交的最大数量，买卖两侧共享。
func (s *Simulator) Capacity(volume float64) float64 {
	return math.Max(0, volume) * s.ParticipationRatio
}

// Step 处理一根 K 线，返回本根产生的 0~2 笔成交。买单先于卖单判断。
func (s *Simulator) Step(st *state.TradingState, bar market.Bar, q strategy.Quote) []TradeRecord {
	if st == nil || s.rules == nil || q.Empty() {
		return nil
	}
	lo, hi := pathExtremes(IntrabarPath(bar.Open, bar.High, bar.Low, bar.Close, bar.StartTime))
	capacity := s.Capacity(bar.Volume)

	var fills []TradeRecord
	if q.BidQty > 0 && q.BidPrice > 0 && capacity > 0 && lo <= q.BidPrice {
		qty := math.Min(q.BidQty, capacity)
		capacity -= qty
		fills = append(fills, s.settle(st, bar.StartTime, market.Buy, qty, q.BidPrice))
	}
	if q.AskQty > 0 && q.AskPrice > 0 && capacity > 0 && hi >= q.AskPrice {
		qty := math.Min(q.AskQty, capacity)
		fills = append(fills, s.settle(st, bar.StartTime, market.Sell, qty, q.AskPrice))
	}
	return fills
}

// settle 统一按 taker 费率收费，先算已实现盈亏再更新仓位与余额。
func (s *Simulator) settle(st *state.TradingState, ts time.Time, side market.Side, qty, price float64) TradeRecord {
	notional := qty * price
	fee := notional * s.rules.TakerFeeRate
	realized := st.Apply(side, qty, price, fee)
	switch side {
	case market.Buy:
		st.CurrentBalance -= notional + fee
	case market.Sell:
		st.CurrentBalance += notional - fee
	}
	st.AvailableBalance = st.CurrentBalance

	pos := st.Snapshot()
	rec := TradeRecord{
		Symbol:            s.rules.Symbol,
		Ts:                ts,
		Side:              side,
		Qty:               qty,
		Price:             price,
		Fee:               fee,
		RealizedPnL:       realized,
		Holdings:          pos.Holdings,
		AverageEntryPrice: pos.AverageEntryPrice,
		NetRealizedPnL:    pos.NetRealizedPnL,
		Balance:           st.CurrentBalance,
	}
	s.trades = append(s.trades, rec)
	s.sink.OnFill(rec)
	return rec
}

// Trades 返回成交日志副本。
func (s *Simulator) Trades() []TradeRecord {
	out := make([]TradeRecord, len(s.trades))
	copy(out, s.trades)
	return out
}
