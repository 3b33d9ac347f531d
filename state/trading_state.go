// Package state 保存单次运行的可变行情/账户快照。
// 报价引擎只读，成交模拟器写入；一个 TradingState 只属于一个调用方。
package state

import (
	"math"
	"time"

	"market-maker-backtest/inventory"
	"market-maker-backtest/market"
)

const (
	DefaultSmoothingAlpha = 0.2
	DefaultPriceCapacity  = 512
)

// Candle 是波动率窗口中的一根 K 线样本。
type Candle struct {
	Ts    time.Time
	High  float64
	Low   float64
	Close float64
}

// PricePoint 用于熔断检查的价格点。
type PricePoint struct {
	Ts    time.Time
	Price float64
}

// Config 描述 TradingState 的初始余额与窗口容量。
type Config struct {
	InitialBalance float64
	CandleCapacity int
	PriceCapacity  int
	SmoothingAlpha float64
}

// TradingState 每根 K 线更新一次的运行时状态，Ledger 以组合方式嵌入。
type TradingState struct {
	CurrentBalance   float64
	AvailableBalance float64
	MidPrice         float64
	SmoothedMidPrice float64

	inventory.Ledger

	alpha   float64
	candles window[Candle]
	points  window[PricePoint]
}

// New 以初始余额创建状态。
func New(cfg Config) *TradingState {
	alpha := cfg.SmoothingAlpha
	if alpha <= 0 || alpha > 1 {
		alpha = DefaultSmoothingAlpha
	}
	priceCap := cfg.PriceCapacity
	if priceCap <= 0 {
		priceCap = DefaultPriceCapacity
	}
	return &TradingState{
		CurrentBalance:   cfg.InitialBalance,
		AvailableBalance: cfg.InitialBalance,
		alpha:            alpha,
		candles:          newWindow[Candle](cfg.CandleCapacity),
		points:           newWindow[PricePoint](priceCap),
	}
}

// CandleCapacity 按波动率窗口与 K 线周期计算窗口容量（窗口内根数 + 1）。
func CandleCapacity(windowSeconds int, barInterval time.Duration) int {
	if windowSeconds <= 0 || barInterval <= 0 {
		return 2
	}
	bars := int(math.Ceil(float64(windowSeconds) / barInterval.Seconds()))
	return bars + 1
}

// OnBar 以收盘价作为 mid 更新状态，并写入 K 线与价格窗口。
func (s *TradingState) OnBar(bar market.Bar) {
	s.candles.push(Candle{Ts: bar.StartTime, High: bar.High, Low: bar.Low, Close: bar.Close})
	s.SetMid(bar.StartTime, bar.Close)
}

// SetMid 更新 mid 与平滑 mid；非正或非有限价格只记录不参与平滑。
func (s *TradingState) SetMid(ts time.Time, mid float64) {
	s.MidPrice = mid
	if mid <= 0 || math.IsNaN(mid) || math.IsInf(mid, 0) {
		return
	}
	if s.SmoothedMidPrice <= 0 {
		s.SmoothedMidPrice = mid
	} else {
		s.SmoothedMidPrice = s.alpha*mid + (1-s.alpha)*s.SmoothedMidPrice
	}
	s.points.push(PricePoint{Ts: ts, Price: mid})
}

// Candles 返回窗口内 K 线的副本，按时间升序。
func (s *TradingState) Candles() []Candle { return s.candles.snapshot() }

// PricePoints 返回价格点副本，按时间升序。
func (s *TradingState) PricePoints() []PricePoint { return s.points.snapshot() }

func (s *TradingState) CandleCount() int { return s.candles.len() }

// Equity 返回按标记价计算的权益（已实现 + 未实现）。
func (s *TradingState) Equity(mark float64) float64 {
	return s.Ledger.Equity(mark)
}
