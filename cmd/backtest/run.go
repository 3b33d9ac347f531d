package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"market-maker-backtest/backtest"
	"market-maker-backtest/config"
	"market-maker-backtest/feed"
	"market-maker-backtest/infrastructure/logger"
	"market-maker-backtest/market"
	"market-maker-backtest/metrics"
	"market-maker-backtest/sim"
)

func newRunCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "run a single backtest with the configured strategy",
		Flags: append(inputFlags(),
			&cli.StringFlag{Name: "trades", Usage: "成交明细输出 CSV"},
			&cli.StringFlag{Name: "equity", Usage: "权益曲线输出 CSV"},
			&cli.BoolFlag{Name: "watch", Usage: "配置文件变化时重新回测"},
		),
		Action: runBacktest,
	}
}

// setup 加载配置、日志与 K 线，run/sweep 共用。
func setup(c *cli.Context) (config.AppConfig, *logger.Logger, []market.Bar, error) {
	cfg, err := config.LoadWithEnvOverrides(c.String("config"))
	if err != nil {
		return cfg, nil, nil, fmt.Errorf("加载配置失败: %w", err)
	}
	lg, err := logger.New(cfg.Logging)
	if err != nil {
		return cfg, nil, nil, fmt.Errorf("初始化日志失败: %w", err)
	}
	bars, err := feed.LoadCSV(c.String("bars"))
	if err != nil {
		return cfg, nil, nil, fmt.Errorf("读取 K 线失败: %w", err)
	}
	return cfg, lg, bars, nil
}

func runBacktest(c *cli.Context) error {
	cfg, lg, bars, err := setup(c)
	if err != nil {
		return err
	}
	defer lg.Close()

	collector := metrics.NewCollector(metrics.DefaultConfig())
	if c.Bool("watch") && cfg.Metrics.Addr != "" {
		srv := metrics.StartMetricsServer(cfg.Metrics.Addr, collector.Registry(), lg.Logger)
		defer srv.Close()
	}
	sink := sim.MultiSink{lg, collector}

	if err := runOnce(c.Context, cfg, bars, lg, sink, c.String("trades"), c.String("equity")); err != nil {
		return err
	}
	if !c.Bool("watch") {
		return nil
	}

	w := config.NewWatcher(c.String("config"), 0, lg.Logger)
	err = w.Start(c.Context, func(updated config.AppConfig) {
		if err := runOnce(c.Context, updated, bars, lg, sink, c.String("trades"), c.String("equity")); err != nil {
			lg.Error("backtest rerun failed", zap.Error(err))
		}
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func runOnce(ctx context.Context, cfg config.AppConfig, bars []market.Bar, lg *logger.Logger, sink sim.EventSink, tradesPath, equityPath string) error {
	rc, err := cfg.RunnerConfig()
	if err != nil {
		return err
	}
	eng, err := backtest.New(rc, lg.Logger, sink)
	if err != nil {
		return err
	}
	res, err := eng.Run(ctx, bars)
	if err != nil {
		return err
	}
	res.Print(os.Stdout)

	if tradesPath != "" {
		if err := writeTradesCSV(tradesPath, res.Trades); err != nil {
			return fmt.Errorf("写入成交 CSV 失败: %w", err)
		}
		lg.Info("trades written", zap.String("path", tradesPath), zap.Int("rows", len(res.Trades)))
	}
	if equityPath != "" {
		if err := writeEquityCSV(equityPath, res.EquityCurve); err != nil {
			return fmt.Errorf("写入权益 CSV 失败: %w", err)
		}
		lg.Info("equity curve written", zap.String("path", equityPath), zap.Int("rows", len(res.EquityCurve)))
	}
	return nil
}
