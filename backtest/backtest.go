// Package backtest 逐根 K 线回放报价逻辑，生成权益曲线与汇总指标。
package backtest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"market-maker-backtest/market"
	"market-maker-backtest/sim"
)

var (
	ErrNoBars         = errors.New("backtest: no bars provided")
	ErrBarsOutOfOrder = errors.New("backtest: bars not in ascending time order")
	ErrAlreadyRun     = errors.New("backtest: engine already run")
)

// Phase 回测状态机：INIT -> RUNNING -> DONE。
type Phase int

const (
	PhaseInit Phase = iota
	PhaseRunning
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseInit:
		return "INIT"
	case PhaseRunning:
		return "RUNNING"
	case PhaseDone:
		return "DONE"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// EquityPoint 权益曲线上的一个样本。
type EquityPoint struct {
	Ts     time.Time
	Equity float64
}

// Result 回测结果。
type Result struct {
	sim.Summary

	StartTime      time.Time
	EndTime        time.Time
	InitialBalance float64
	BuyTrades      int
	SellTrades     int
	HaltedBars     int

	Trades      []sim.TradeRecord
	EquityCurve []EquityPoint
}

// Engine 回测引擎，一个实例只运行一次，拥有独立的 TradingState。
type Engine struct {
	cfg    sim.RunnerConfig
	runner *sim.Runner
	sink   sim.EventSink
	log    *zap.Logger
	runID  string
	phase  Phase
}

// New 组装回测引擎；配置错误在这里返回，任何 K 线都不会被处理。
func New(cfg sim.RunnerConfig, log *zap.Logger, sink sim.EventSink) (*Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if sink == nil {
		sink = sim.NopSink{}
	}
	runID := uuid.NewString()
	log = log.With(zap.String("runId", runID))
	runner, err := sim.BuildRunner(cfg, log, sink)
	if err != nil {
		return nil, err
	}
	return &Engine{
		cfg:    cfg,
		runner: runner,
		sink:   sink,
		log:    log.Named("backtest"),
		runID:  runID,
		phase:  PhaseInit,
	}, nil
}

func (e *Engine) RunID() string { return e.runID }

func (e *Engine) Phase() Phase { return e.phase }

// Run 严格按时间顺序处理每根 K 线：更新状态 -> 报价 -> 成交 -> 记录权益。
// 输入不会被修改；乱序数据直接拒绝。
func (e *Engine) Run(ctx context.Context, bars []market.Bar) (*Result, error) {
	if e.phase != PhaseInit {
		return nil, ErrAlreadyRun
	}
	if len(bars) == 0 {
		return nil, ErrNoBars
	}
	for i := 1; i < len(bars); i++ {
		if !bars[i].StartTime.After(bars[i-1].StartTime) {
			return nil, fmt.Errorf("%w: bar %d at %s", ErrBarsOutOfOrder, i, bars[i].StartTime.Format(time.RFC3339))
		}
	}

	e.phase = PhaseRunning
	e.log.Info("backtest started",
		zap.Int("bars", len(bars)),
		zap.Time("from", bars[0].StartTime),
		zap.Time("to", bars[len(bars)-1].StartTime),
	)

	curve := make([]EquityPoint, 0, len(bars))
	halted := 0
	for _, bar := range bars {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if res := e.runner.Step(bar); res.Halted {
			halted++
		}
		curve = append(curve, EquityPoint{Ts: bar.StartTime, Equity: e.runner.Equity()})
	}
	e.phase = PhaseDone

	result := e.buildResult(bars, curve, halted)
	e.sink.OnSummary(result.Summary)
	e.log.Info("backtest finished",
		zap.Float64("netPnl", result.NetPnL),
		zap.Float64("maxDrawdown", result.MaxDrawdown),
		zap.Float64("sharpeLike", result.SharpeLike),
		zap.Float64("finalPosition", result.FinalPosition),
		zap.Int("trades", result.TotalTrades),
	)
	return result, nil
}

func (e *Engine) buildResult(bars []market.Bar, curve []EquityPoint, halted int) *Result {
	trades := e.runner.Trades()
	buys, sells := 0, 0
	for _, t := range trades {
		if t.Side == market.Buy {
			buys++
		} else {
			sells++
		}
	}
	st := e.runner.State
	netPnL := 0.0
	if len(curve) > 0 {
		netPnL = curve[len(curve)-1].Equity
	}
	return &Result{
		Summary: sim.Summary{
			RunID:         e.runID,
			Symbol:        e.cfg.Symbol,
			Bars:          len(bars),
			NetPnL:        netPnL,
			MaxDrawdown:   MaxDrawdown(curve),
			SharpeLike:    SharpeLike(curve),
			FinalPosition: st.Holdings(),
			TotalFees:     st.TotalFees(),
			FinalBalance:  st.CurrentBalance,
			TotalTrades:   len(trades),
		},
		StartTime:      bars[0].StartTime,
		EndTime:        bars[len(bars)-1].StartTime,
		InitialBalance: e.cfg.InitialBalance,
		BuyTrades:      buys,
		SellTrades:     sells,
		HaltedBars:     halted,
		Trades:         trades,
		EquityCurve:    curve,
	}
}
