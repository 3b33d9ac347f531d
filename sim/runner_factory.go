package sim

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"market-maker-backtest/instrument"
	"market-maker-backtest/risk"
	"market-maker-backtest/state"
	"market-maker-backtest/strategy"
)

// RunnerConfig 描述组装 Runner 所需的全部参数。
type RunnerConfig struct {
	Symbol             string
	Rules              *instrument.Rules // 缺失时 Runner 照常运行但从不报价
	Strategy           strategy.Config
	InitialBalance     float64
	ParticipationRatio float64
	BarInterval        time.Duration
	SmoothingAlpha     float64
	OneMinuteThresh    float64
	FiveMinuteThresh   float64
}

// BuildRunner 基于配置组装 Runner，每次调用都创建独立的状态与账本。
func BuildRunner(cfg RunnerConfig, log *zap.Logger, sink EventSink) (*Runner, error) {
	if !cfg.Strategy.Valid() {
		return nil, &strategy.ConfigError{Field: "strategy", Reason: "not constructed via strategy.NewConfig"}
	}
	if cfg.InitialBalance <= 0 {
		return nil, fmt.Errorf("initial balance must be > 0, got %f", cfg.InitialBalance)
	}
	if cfg.ParticipationRatio < 0 || cfg.ParticipationRatio > 1 {
		return nil, errors.New("participation ratio must be within [0, 1]")
	}
	if cfg.BarInterval <= 0 {
		cfg.BarInterval = time.Minute
	}
	if log == nil {
		log = zap.NewNop()
	}
	if sink == nil {
		sink = NopSink{}
	}
	log = log.With(zap.String("symbol", cfg.Symbol))
	if !cfg.Rules.Usable() {
		log.Warn("instrument rules unavailable, runner will not quote")
	}

	st := state.New(state.Config{
		InitialBalance: cfg.InitialBalance,
		CandleCapacity: state.CandleCapacity(cfg.Strategy.VolatilityWindowSeconds(), cfg.BarInterval),
		SmoothingAlpha: cfg.SmoothingAlpha,
	})
	return &Runner{
		Symbol:  cfg.Symbol,
		State:   st,
		Engine:  strategy.NewEngine(cfg.Strategy, log),
		Sim:     NewSimulator(cfg.Rules, cfg.ParticipationRatio, sink),
		Rules:   cfg.Rules,
		Breaker: risk.NewCircuitBreaker(cfg.OneMinuteThresh, cfg.FiveMinuteThresh),
		Sink:    sink,
		log:     log.Named("runner"),
	}, nil
}
