package backtest

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"market-maker-backtest/market"
	"market-maker-backtest/sim"
	"market-maker-backtest/strategy"
)

// Trial 一组待评估的策略参数。
type Trial struct {
	Name   string
	Params strategy.Params
}

// TrialResult 单组参数的结果；Err 为 *strategy.ConfigError 时表示参数被拒绝，不计分。
type TrialResult struct {
	Trial  Trial
	Result *Result
	Err    error
}

// Rejected 参数非法（区别于合法但亏损）。
func (r TrialResult) Rejected() bool {
	return errors.Is(r.Err, strategy.ErrInvalidConfig)
}

// GridAxes 参数网格，空轴沿用基础参数。
type GridAxes struct {
	BaseSpreadPct         []float64 `yaml:"baseSpreadPct"`
	OrderSizePctOfBalance []float64 `yaml:"orderSizePctOfBalance"`
	SkewIntensity         []float64 `yaml:"skewIntensity"`
	VolatilityMultiplier  []float64 `yaml:"volatilityMultiplier"`
}

// Grid 生成参数网格的笛卡尔积，每个 Trial 都是独立的 Params 值。
func Grid(base strategy.Params, axes GridAxes) []Trial {
	orDefault := func(vals []float64, def float64) []float64 {
		if len(vals) == 0 {
			return []float64{def}
		}
		return vals
	}
	spreads := orDefault(axes.BaseSpreadPct, base.BaseSpreadPct)
	sizes := orDefault(axes.OrderSizePctOfBalance, base.OrderSizePctOfBalance)
	skews := orDefault(axes.SkewIntensity, base.Inventory.SkewIntensity)
	mults := orDefault(axes.VolatilityMultiplier, base.DynamicSpread.VolatilityMultiplier)

	trials := make([]Trial, 0, len(spreads)*len(sizes)*len(skews)*len(mults))
	for _, sp := range spreads {
		for _, sz := range sizes {
			for _, sk := range skews {
				for _, vm := range mults {
					p := base
					p.BaseSpreadPct = sp
					p.OrderSizePctOfBalance = sz
					p.Inventory.SkewIntensity = sk
					p.DynamicSpread.VolatilityMultiplier = vm
					trials = append(trials, Trial{Name: trialName(sp, sz, sk, vm), Params: p})
				}
			}
		}
	}
	return trials
}

func trialName(vals ...float64) string {
	keys := []string{"spread", "size", "skew", "volMult"}
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = keys[i] + "=" + strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, ",")
}

// Sweep 并行评估多组参数。每个 trial 独立构造配置、规则副本、状态与账本，互不共享可变数据。
// 参数非法的 trial 记录在结果中；其他错误（如 ctx 取消）终止整个 sweep。
func Sweep(ctx context.Context, base sim.RunnerConfig, trials []Trial, bars []market.Bar, workers int, log *zap.Logger) ([]TrialResult, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if workers <= 0 {
		workers = 1
	}
	results := make([]TrialResult, len(trials))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, trial := range trials {
		g.Go(func() error {
			results[i] = runTrial(gctx, base, trial, bars, log)
			if results[i].Err != nil && !results[i].Rejected() {
				return fmt.Errorf("trial %s: %w", trial.Name, results[i].Err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func runTrial(ctx context.Context, base sim.RunnerConfig, trial Trial, bars []market.Bar, log *zap.Logger) TrialResult {
	out := TrialResult{Trial: trial}
	cfg, err := strategy.NewConfig(trial.Params)
	if err != nil {
		log.Debug("trial rejected", zap.String("trial", trial.Name), zap.Error(err))
		out.Err = err
		return out
	}
	rc := base
	rc.Strategy = cfg
	if base.Rules != nil {
		rules := *base.Rules
		rc.Rules = &rules
	}
	eng, err := New(rc, log.With(zap.String("trial", trial.Name)), nil)
	if err != nil {
		out.Err = err
		return out
	}
	out.Result, out.Err = eng.Run(ctx, bars)
	return out
}

// Best 返回净盈亏最高的有效 trial。
func Best(results []TrialResult) (TrialResult, bool) {
	var best TrialResult
	found := false
	for _, r := range results {
		if r.Err != nil || r.Result == nil {
			continue
		}
		if !found || r.Result.NetPnL > best.Result.NetPnL {
			best = r
			found = true
		}
	}
	return best, found
}
