package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"market-maker-backtest/backtest"
	"market-maker-backtest/infrastructure/logger"
	"market-maker-backtest/instrument"
	"market-maker-backtest/sim"
	"market-maker-backtest/strategy"
)

// EnvInitialBalance 覆盖 backtest.initialBalance 的环境变量。
const EnvInitialBalance = "MMBT_INITIAL_BALANCE"

// AppConfig holds the main runtime configuration.
type AppConfig struct {
	Env         string                      `yaml:"env"`
	Logging     logger.Config               `yaml:"logging"`
	Metrics     MetricsConfig               `yaml:"metrics"`
	Instruments map[string]instrument.Rules `yaml:"instruments"`
	Strategy    strategy.Params             `yaml:"strategy"`
	Backtest    BacktestConfig              `yaml:"backtest"`
	Sweep       SweepConfig                 `yaml:"sweep"`
	Paper       PaperConfig                 `yaml:"paper"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"` // 为空时不启动 /metrics
}

type CircuitBreakerConfig struct {
	OneMinutePct  float64 `yaml:"oneMinutePct"`
	FiveMinutePct float64 `yaml:"fiveMinutePct"`
}

type BacktestConfig struct {
	Symbol             string               `yaml:"symbol"`
	InitialBalance     float64              `yaml:"initialBalance"`
	ParticipationRatio float64              `yaml:"participationRatio"` // 0 使用默认值 0.25
	BarIntervalSeconds int                  `yaml:"barIntervalSeconds"` // 0 视为 60
	MidSmoothingAlpha  float64              `yaml:"midSmoothingAlpha"`
	CircuitBreaker     CircuitBreakerConfig `yaml:"circuitBreaker"`
}

// SweepConfig 参数网格，空轴沿用 strategy 中的值。
type SweepConfig struct {
	Workers           int `yaml:"workers"`
	backtest.GridAxes `yaml:",inline"`
}

type PaperConfig struct {
	StreamURL string `yaml:"streamURL"`
}

// Load reads YAML config from path and applies basic validation.
func Load(path string) (AppConfig, error) {
	var cfg AppConfig
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadWithEnvOverrides loads config then overrides fields from env vars if present.
func LoadWithEnvOverrides(path string) (AppConfig, error) {
	cfg, err := Load(path)
	if err != nil {
		return cfg, err
	}
	if v := os.Getenv(EnvInitialBalance); v != "" {
		bal, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", EnvInitialBalance, err)
		}
		cfg.Backtest.InitialBalance = bal
	}
	return cfg, Validate(cfg)
}

// Validate 只检查结构性字段；策略参数的语义校验交给 strategy.NewConfig。
func Validate(cfg AppConfig) error {
	if cfg.Env == "" {
		return errors.New("env is required")
	}
	if cfg.Backtest.Symbol == "" {
		return errors.New("backtest.symbol is required")
	}
	if cfg.Backtest.InitialBalance <= 0 {
		return errors.New("backtest.initialBalance must be > 0")
	}
	if cfg.Backtest.ParticipationRatio < 0 || cfg.Backtest.ParticipationRatio > 1 {
		return errors.New("backtest.participationRatio must be within [0, 1]")
	}
	if cfg.Backtest.BarIntervalSeconds < 0 {
		return errors.New("backtest.barIntervalSeconds must be >= 0")
	}
	if a := cfg.Backtest.MidSmoothingAlpha; a < 0 || a > 1 {
		return errors.New("backtest.midSmoothingAlpha must be within [0, 1]")
	}
	if cfg.Backtest.CircuitBreaker.OneMinutePct < 0 || cfg.Backtest.CircuitBreaker.FiveMinutePct < 0 {
		return errors.New("backtest.circuitBreaker thresholds must be >= 0")
	}
	if cfg.Sweep.Workers < 0 {
		return errors.New("sweep.workers must be >= 0")
	}
	if len(cfg.Instruments) == 0 {
		return errors.New("instruments config is required")
	}
	for sym, r := range cfg.Instruments {
		if r.PriceTick <= 0 {
			return fmt.Errorf("instrument %s priceTick must be > 0", sym)
		}
		if r.QtyStep <= 0 {
			return fmt.Errorf("instrument %s qtyStep must be > 0", sym)
		}
		if r.MinOrderQty < 0 || r.MinNotional < 0 {
			return fmt.Errorf("instrument %s minimums must be >= 0", sym)
		}
		if r.MakerFeeRate < 0 || r.TakerFeeRate < 0 {
			return fmt.Errorf("instrument %s fee rates must be >= 0", sym)
		}
	}
	return nil
}

// RuleSource 以配置中的 instruments 构造规则源，map 的 key 作为缺省 Symbol。
func (c AppConfig) RuleSource() instrument.StaticSource {
	src := make(instrument.StaticSource, len(c.Instruments))
	for sym, r := range c.Instruments {
		if r.Symbol == "" {
			r.Symbol = strings.ToUpper(sym)
		}
		src[strings.ToUpper(sym)] = r
	}
	return src
}

// BarInterval 缺省一分钟。
func (c AppConfig) BarInterval() time.Duration {
	if c.Backtest.BarIntervalSeconds <= 0 {
		return time.Minute
	}
	return time.Duration(c.Backtest.BarIntervalSeconds) * time.Second
}

// BaseRunnerConfig 组装除策略外的运行参数，调参时每个 trial 再填入各自的策略配置。
// 规则缺失时 Rules 为 nil（运行但不报价）。
func (c AppConfig) BaseRunnerConfig() sim.RunnerConfig {
	rules, _ := c.RuleSource().Rules(c.Backtest.Symbol)
	return sim.RunnerConfig{
		Symbol:             strings.ToUpper(c.Backtest.Symbol),
		Rules:              rules,
		InitialBalance:     c.Backtest.InitialBalance,
		ParticipationRatio: c.Backtest.ParticipationRatio,
		BarInterval:        c.BarInterval(),
		SmoothingAlpha:     c.Backtest.MidSmoothingAlpha,
		OneMinuteThresh:    c.Backtest.CircuitBreaker.OneMinutePct,
		FiveMinuteThresh:   c.Backtest.CircuitBreaker.FiveMinutePct,
	}
}

// RunnerConfig 在 BaseRunnerConfig 基础上校验策略参数，非法时返回 *strategy.ConfigError。
func (c AppConfig) RunnerConfig() (sim.RunnerConfig, error) {
	strat, err := strategy.NewConfig(c.Strategy)
	if err != nil {
		return sim.RunnerConfig{}, err
	}
	rc := c.BaseRunnerConfig()
	rc.Strategy = strat
	return rc, nil
}

// Trials 由 strategy 基础参数和 sweep 网格生成调参组合。
func (c AppConfig) Trials() []backtest.Trial {
	return backtest.Grid(c.Strategy, c.Sweep.GridAxes)
}
