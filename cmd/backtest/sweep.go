package main

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"market-maker-backtest/backtest"
	"market-maker-backtest/strategy"
)

func newSweepCommand() *cli.Command {
	return &cli.Command{
		Name:  "sweep",
		Usage: "evaluate the configured parameter grid in parallel",
		Flags: append(inputFlags(),
			&cli.StringFlag{Name: "out", Usage: "调参结果输出 CSV"},
			&cli.IntFlag{Name: "workers", Usage: "并发数，0 使用配置或 CPU 数"},
		),
		Action: runSweep,
	}
}

func runSweep(c *cli.Context) error {
	cfg, lg, bars, err := setup(c)
	if err != nil {
		return err
	}
	defer lg.Close()

	workers := c.Int("workers")
	if workers <= 0 {
		workers = cfg.Sweep.Workers
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	trials := cfg.Trials()
	lg.Info("sweep started", zap.Int("trials", len(trials)), zap.Int("workers", workers), zap.Int("bars", len(bars)))
	results, err := backtest.Sweep(c.Context, cfg.BaseRunnerConfig(), trials, bars, workers, lg.Logger)
	if err != nil {
		return err
	}

	rejected := 0
	for _, r := range results {
		var cerr *strategy.ConfigError
		if errors.As(r.Err, &cerr) {
			rejected++
			lg.LogRejected(r.Trial.Name, cerr.Field, cerr.Reason)
			continue
		}
		lg.LogSummary(r.Result.Summary)
	}

	if best, ok := backtest.Best(results); ok {
		fmt.Printf("最佳参数: %s\n", best.Trial.Name)
		best.Result.Print(os.Stdout)
	} else {
		fmt.Println("没有有效的参数组合")
	}
	fmt.Printf("共 %d 组，拒绝 %d 组\n", len(results), rejected)

	if out := c.String("out"); out != "" {
		if err := writeSweepCSV(out, results); err != nil {
			return fmt.Errorf("写入调参 CSV 失败: %w", err)
		}
		lg.Info("sweep results written", zap.String("path", out))
	}
	return nil
}
