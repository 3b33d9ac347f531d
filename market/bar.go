package market

import (
	"fmt"
	"math"
	"time"
)

// Side 订单/成交方向。
type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

// Bar 表示一根 OHLCV K 线，StartTime 为开盘时间。
type Bar struct {
	StartTime time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// Millis 返回开盘时间的毫秒时间戳。
func (b Bar) Millis() int64 {
	return b.StartTime.UnixMilli()
}

// Validate 检查数值有限且价格关系自洽（high >= open/close >= low > 0）。
func (b Bar) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{{"open", b.Open}, {"high", b.High}, {"low", b.Low}, {"close", b.Close}, {"volume", b.Volume}} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("bar %s: non-finite %s %v", b.StartTime.Format(time.RFC3339), f.name, f.v)
		}
	}
	if b.Low <= 0 {
		return fmt.Errorf("bar %s: non-positive low %.8f", b.StartTime.Format(time.RFC3339), b.Low)
	}
	if b.High < b.Low || b.Open > b.High || b.Open < b.Low || b.Close > b.High || b.Close < b.Low {
		return fmt.Errorf("bar %s: inconsistent ohlc %.8f/%.8f/%.8f/%.8f",
			b.StartTime.Format(time.RFC3339), b.Open, b.High, b.Low, b.Close)
	}
	return nil
}
