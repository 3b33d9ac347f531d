package sim

import (
	"go.uber.org/zap"

	"market-maker-backtest/instrument"
	"market-maker-backtest/market"
	"market-maker-backtest/risk"
	"market-maker-backtest/state"
	"market-maker-backtest/strategy"
)

// StepResult 单根 K 线的处理结果。
type StepResult struct {
	Quote  strategy.Quote
	Fills  []TradeRecord
	Halted bool
	Reason string
}

// Runner 将 行情->状态->报价->成交 串起来，回测与纸面交易共用。
// 非并发安全，一个 Runner 只由一个 goroutine 驱动。
type Runner struct {
	Symbol  string
	State   *state.TradingState
	Engine  *strategy.Engine
	Sim     *Simulator
	Rules   *instrument.Rules
	Breaker *risk.CircuitBreaker
	Sink    EventSink

	log *zap.Logger
}

// Step 依次执行 UPDATE_STATE -> 熔断检查 -> QUOTE -> FILL。
// 坏数据与熔断只影响当根，不返回错误。
func (r *Runner) Step(bar market.Bar) StepResult {
	if err := bar.Validate(); err != nil {
		r.log.Warn("skip bad bar", zap.Error(err))
		return r.halt(bar, "bad bar: "+err.Error())
	}
	r.State.OnBar(bar)

	if trip, span := r.Breaker.Check(r.State.PricePoints()); trip {
		r.log.Warn("circuit breaker tripped",
			zap.String("window", span),
			zap.Float64("mid", r.State.MidPrice),
			zap.Time("ts", bar.StartTime),
		)
		return r.halt(bar, "circuit breaker "+span)
	}

	q := r.Engine.Quote(r.State, r.Rules)
	r.Sink.OnQuote(QuoteEvent{
		Symbol:      r.Symbol,
		Ts:          bar.StartTime,
		Mid:         r.State.MidPrice,
		SmoothedMid: r.State.SmoothedMidPrice,
		Quote:       q,
	})
	fills := r.Sim.Step(r.State, bar, q)
	return StepResult{Quote: q, Fills: fills}
}

func (r *Runner) halt(bar market.Bar, reason string) StepResult {
	r.Sink.OnQuote(QuoteEvent{
		Symbol:      r.Symbol,
		Ts:          bar.StartTime,
		Mid:         r.State.MidPrice,
		SmoothedMid: r.State.SmoothedMidPrice,
		Halted:      true,
		Reason:      reason,
	})
	return StepResult{Halted: true, Reason: reason}
}

// Mark 当前用于估值的价格（最近一次有效 mid）。
func (r *Runner) Mark() float64 { return r.State.MidPrice }

// Equity 按当前 mark 计算权益。
func (r *Runner) Equity() float64 { return r.State.Equity(r.Mark()) }

// Trades 返回成交日志副本。
func (r *Runner) Trades() []TradeRecord { return r.Sim.Trades() }
