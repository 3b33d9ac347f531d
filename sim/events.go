package sim

import (
	"time"

	"market-maker-backtest/strategy"
)

// QuoteEvent 每根 K 线的报价结果；Halted 表示因熔断或坏数据未报价。
type QuoteEvent struct {
	Symbol      string
	Ts          time.Time
	Mid         float64
	SmoothedMid float64
	Quote       strategy.Quote
	Halted      bool
	Reason      string
}

// Summary 一次运行的汇总，数值均为原始数字。
type Summary struct {
	RunID         string
	Symbol        string
	Bars          int
	NetPnL        float64
	MaxDrawdown   float64
	SharpeLike    float64
	FinalPosition float64
	TotalFees     float64
	FinalBalance  float64
	TotalTrades   int
}

// EventSink 接收核心产生的结构化事件；文件格式与传输由实现方负责。
type EventSink interface {
	OnQuote(QuoteEvent)
	OnFill(TradeRecord)
	OnSummary(Summary)
}

// NopSink 丢弃所有事件。
type NopSink struct{}

func (NopSink) OnQuote(QuoteEvent) {}
func (NopSink) OnFill(TradeRecord) {}
func (NopSink) OnSummary(Summary) {}

// MultiSink 依次转发给多个 sink。
type MultiSink []EventSink

func (m MultiSink) OnQuote(e QuoteEvent) {
	for _, s := range m {
		s.OnQuote(e)
	}
}

func (m MultiSink) OnFill(t TradeRecord) {
	for _, s := range m {
		s.OnFill(t)
	}
}

func (m MultiSink) OnSummary(sum Summary) {
	for _, s := range m {
		s.OnSummary(sum)
	}
}
