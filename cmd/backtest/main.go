package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
)

// 回测与调参命令行。
// 用法：
//
//	go run ./cmd/backtest run --config configs/config.yaml --bars data/bars.csv --trades trades.csv --equity equity.csv
//	go run ./cmd/backtest sweep --config configs/config.yaml --bars data/bars.csv --out sweep.csv
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newApp().RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "backtest",
		Usage: "replay historical bars through the quoting engine",
		Commands: []*cli.Command{
			newRunCommand(),
			newSweepCommand(),
		},
	}
}

// inputFlags run/sweep 共用的输入参数。
func inputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Value:   "configs/config.yaml",
			Usage:   "配置文件路径",
		},
		&cli.StringFlag{
			Name:     "bars",
			Aliases:  []string{"b"},
			Usage:    "K 线 CSV（start_time_ms,open,high,low,close,volume）",
			Required: true,
		},
	}
}
