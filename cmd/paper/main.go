package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
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

// 纸面交易：用实时 K 线驱动与回测相同的 Runner，只模拟成交，不下真实订单。
// 用法：
//
//	go run ./cmd/paper -config configs/config.yaml -url wss://stream.binance.com:9443/ws/ethusdt@kline_1m
func main() {
	app := &cli.App{
		Name:  "paper",
		Usage: "paper-trade the quoting engine against a live kline stream",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "configs/config.yaml",
				Usage:   "配置文件路径",
			},
			&cli.StringFlag{
				Name:  "url",
				Usage: "WebSocket 行情地址，默认使用 paper.streamURL",
			},
		},
		Action: runPaper,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func runPaper(c *cli.Context) error {
	cfg, err := config.LoadWithEnvOverrides(c.String("config"))
	if err != nil {
		return fmt.Errorf("加载配置失败: %w", err)
	}
	lg, err := logger.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("初始化日志失败: %w", err)
	}
	defer lg.Close()

	url := c.String("url")
	if url == "" {
		url = cfg.Paper.StreamURL
	}
	if url == "" {
		return errors.New("stream url required (--url or paper.streamURL)")
	}

	rc, err := cfg.RunnerConfig()
	if err != nil {
		return err
	}
	collector := metrics.NewCollector(metrics.DefaultConfig())
	if cfg.Metrics.Addr != "" {
		srv := metrics.StartMetricsServer(cfg.Metrics.Addr, collector.Registry(), lg.Logger)
		defer srv.Close()
	}
	sink := sim.MultiSink{lg, collector}

	runID := uuid.NewString()
	zl := lg.With(zap.String("runId", runID))
	runner, err := sim.BuildRunner(rc, zl, sink)
	if err != nil {
		return err
	}

	// 读取与驱动在同一个 goroutine 上完成
	stream := feed.NewKlineStream(url, rc.BarInterval, zl)
	var curve []backtest.EquityPoint
	var last market.Bar
	err = stream.Run(c.Context, func(bar market.Bar) {
		if len(curve) > 0 && !bar.StartTime.After(last.StartTime) {
			zl.Warn("skip out-of-order bar", zap.Time("ts", bar.StartTime), zap.Time("last", last.StartTime))
			return
		}
		last = bar
		runner.Step(bar)
		curve = append(curve, backtest.EquityPoint{Ts: bar.StartTime, Equity: runner.Equity()})
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		zl.Error("stream stopped", zap.Error(err))
	}

	st := runner.State
	summary := sim.Summary{
		RunID:         runID,
		Symbol:        rc.Symbol,
		Bars:          len(curve),
		MaxDrawdown:   backtest.MaxDrawdown(curve),
		SharpeLike:    backtest.SharpeLike(curve),
		FinalPosition: st.Holdings(),
		TotalFees:     st.TotalFees(),
		FinalBalance:  st.CurrentBalance,
		TotalTrades:   len(runner.Trades()),
	}
	if len(curve) > 0 {
		summary.NetPnL = curve[len(curve)-1].Equity
	}
	sink.OnSummary(summary)
	return nil
}
