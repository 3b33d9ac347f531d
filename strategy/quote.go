package strategy

import (
	"math"

	"go.uber.org/zap"

	"market-maker-backtest/instrument"
	"market-maker-backtest/market"
	"market-maker-backtest/state"
)

// Quote 双边报价，数量为 0 表示该侧不挂单。
type Quote struct {
	BidPrice float64
	BidQty   float64
	AskPrice float64
	AskQty   float64

	Spread     float64  // 实际使用的相对价差
	SkewFactor float64  // 库存倾斜比例
	Warnings   []string // 降级原因
}

// Empty 两侧都不挂单。
func (q Quote) Empty() bool { return q.BidQty <= 0 && q.AskQty <= 0 }

func (q *Quote) warn(msg string) {
	if msg != "" {
		q.Warnings = append(q.Warnings, msg)
	}
}

// RequiredSpread 扣除双边 taker 费后仍需保留的最小相对价差。
func RequiredSpread(cfg Config, rules *instrument.Rules) float64 {
	fee := 0.0
	if rules != nil {
		fee = rules.TakerFeeRate
	}
	return cfg.p.MinProfitSpreadAfterFeesPct + 2*fee
}

// ComputeQuote 是无副作用的报价函数：行情异常时降级为不挂单，从不 panic。
func ComputeQuote(st *state.TradingState, cfg Config, rules *instrument.Rules) Quote {
	var q Quote
	if st == nil {
		q.warn("trading state unavailable")
		return q
	}
	if !rules.Usable() {
		q.warn("instrument rules unavailable")
		return q
	}
	mid := st.MidPrice
	if mid <= 0 || math.IsNaN(mid) || math.IsInf(mid, 0) {
		q.warn("non-positive mid price")
		return q
	}

	spread, msg := DynamicSpread(st, cfg)
	q.warn(msg)
	skew := SkewFactor(st.Holdings(), mid, cfg)
	skewedMid := mid * (1 + skew)

	bid := skewedMid * (1 - spread/2)
	ask := skewedMid * (1 + spread/2)

	// 最小利润价差以未倾斜的 mid 为锚，倾斜不能绕开该下限
	required := RequiredSpread(cfg, rules)
	if ask-bid < mid*required {
		half := mid * required / 2
		bid = mid - half
		ask = mid + half
	}

	bid = rules.QuantizePrice(bid)
	ask = rules.QuantizePrice(ask)
	if bid > 0 && ask <= bid {
		ask = rules.QuantizePrice(bid + rules.PriceTick)
	}

	q.Spread = spread
	q.SkewFactor = skew
	q.BidPrice = bid
	q.AskPrice = ask
	q.BidQty = OrderSize(market.Buy, bid, st, cfg, rules)
	q.AskQty = OrderSize(market.Sell, ask, st, cfg, rules)

	// 量化后的最终校验，不合规的一侧不挂单
	if q.BidQty > 0 {
		if err := rules.Validate(q.BidPrice, q.BidQty); err != nil {
			q.warn("bid dropped: " + err.Error())
			q.BidQty = 0
		}
	}
	if q.AskQty > 0 {
		if err := rules.Validate(q.AskPrice, q.AskQty); err != nil {
			q.warn("ask dropped: " + err.Error())
			q.AskQty = 0
		}
	}
	return q
}

// Engine 持有配置与日志器，按 K 线生成报价。
type Engine struct {
	cfg Config
	log *zap.Logger
}

func NewEngine(cfg Config, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{cfg: cfg, log: log.Named("quote")}
}

func (e *Engine) Config() Config { return e.cfg }

// Quote 计算报价并记录降级原因。
func (e *Engine) Quote(st *state.TradingState, rules *instrument.Rules) Quote {
	q := ComputeQuote(st, e.cfg, rules)
	for _, w := range q.Warnings {
		e.log.Warn("quote degraded", zap.String("reason", w))
	}
	if e.log.Core().Enabled(zap.DebugLevel) {
		e.log.Debug("quote computed",
			zap.Float64("bid", q.BidPrice),
			zap.Float64("bidQty", q.BidQty),
			zap.Float64("ask", q.AskPrice),
			zap.Float64("askQty", q.AskQty),
			zap.Float64("spread", q.Spread),
			zap.Float64("skew", q.SkewFactor),
		)
	}
	return q
}
