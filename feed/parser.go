package feed

import (
	"encoding/json"
	"time"

	"market-maker-backtest/market"
)

// combinedMessage 对应 binance combined stream 包装。
type combinedMessage struct {
	Stream string          `json:"stream"`
	Data   json.RawMessage `json:"data"`
}

// streamEvent 兼容 kline 与 trade/aggTrade 两类推送。
type streamEvent struct {
	Event  string       `json:"e"`
	Symbol string       `json:"s"`
	Kline  *klinePayload `json:"k,omitempty"`

	Price     json.Number `json:"p"`
	Qty       json.Number `json:"q"`
	TradeTime int64       `json:"T"`
}

type klinePayload struct {
	StartTime int64       `json:"t"`
	Interval  string      `json:"i"`
	Open      json.Number `json:"o"`
	High      json.Number `json:"h"`
	Low       json.Number `json:"l"`
	Close     json.Number `json:"c"`
	Volume    json.Number `json:"v"`
	Closed    bool        `json:"x"`
}

// parseEvent 解析单条消息；combined stream 的外层包装会被自动剥离。
func parseEvent(raw []byte) (streamEvent, error) {
	var wrapped combinedMessage
	if err := json.Unmarshal(raw, &wrapped); err == nil && len(wrapped.Data) > 0 {
		raw = wrapped.Data
	}
	var ev streamEvent
	err := json.Unmarshal(raw, &ev)
	return ev, err
}

func (k *klinePayload) bar() (market.Bar, error) {
	var vals [5]float64
	for i, n := range []json.Number{k.Open, k.High, k.Low, k.Close, k.Volume} {
		v, err := n.Float64()
		if err != nil {
			return market.Bar{}, err
		}
		vals[i] = v
	}
	return market.Bar{
		StartTime: time.UnixMilli(k.StartTime),
		Open:      vals[0],
		High:      vals[1],
		Low:       vals[2],
		Close:     vals[3],
		Volume:    vals[4],
	}, nil
}

func (e streamEvent) trade() (market.Trade, error) {
	price, err := e.Price.Float64()
	if err != nil {
		return market.Trade{}, err
	}
	qty, err := e.Qty.Float64()
	if err != nil {
		return market.Trade{}, err
	}
	return market.Trade{Price: price, Qty: qty, Ts: time.UnixMilli(e.TradeTime)}, nil
}
