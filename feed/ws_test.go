package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"market-maker-backtest/market"
)

func wsServer(t *testing.T, msgs []string) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for _, m := range msgs {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(m)); err != nil {
				return
			}
		}
		// 保持连接直到客户端断开
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestKlineStreamEmitsClosedBars(t *testing.T) {
	msgs := []string{
		`{"e":"kline","s":"TESTUSDT","k":{"t":0,"i":"1m","o":"100","h":"100.5","l":"99.5","c":"100","v":"4","x":false}}`,
		`{"e":"kline","s":"TESTUSDT","k":{"t":0,"i":"1m","o":"100","h":"100.5","l":"99.5","c":"100.2","v":"5","x":true}}`,
		`{"stream":"testusdt@kline_1m","data":{"e":"kline","s":"TESTUSDT","k":{"t":60000,"i":"1m","o":"100.2","h":"100.3","l":"100","c":"100.1","v":"3","x":true}}}`,
		`not json`,
	}
	srv := wsServer(t, msgs)
	s := NewKlineStream(wsURL(srv), time.Minute, nil)
	s.ReconnectDelay = 0

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	var bars []market.Bar
	err := s.Run(ctx, func(b market.Bar) {
		bars = append(bars, b)
		if len(bars) == 2 {
			cancel()
		}
	})
	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, bars, 2)
	assert.Equal(t, 100.2, bars[0].Close)
	assert.Equal(t, 5.0, bars[0].Volume)
	assert.Equal(t, time.UnixMilli(60000), bars[1].StartTime)
}

func TestKlineStreamAggregatesTrades(t *testing.T) {
	msgs := []string{
		`{"e":"aggTrade","s":"TESTUSDT","p":"100","q":"1","T":1000}`,
		`{"e":"aggTrade","s":"TESTUSDT","p":"101","q":"2","T":30000}`,
		`{"e":"aggTrade","s":"TESTUSDT","p":"99","q":"1","T":61000}`,
	}
	srv := wsServer(t, msgs)
	s := NewKlineStream(wsURL(srv), time.Minute, nil)
	s.ReconnectDelay = 0

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	var bars []market.Bar
	_ = s.Run(ctx, func(b market.Bar) {
		bars = append(bars, b)
		cancel()
	})
	require.Len(t, bars, 1)
	assert.Equal(t, 100.0, bars[0].Open)
	assert.Equal(t, 101.0, bars[0].High)
	assert.Equal(t, 101.0, bars[0].Close)
	assert.Equal(t, 3.0, bars[0].Volume)
}

func TestKlineStreamDialError(t *testing.T) {
	s := NewKlineStream("ws://127.0.0.1:1/ws", time.Minute, nil)
	s.ReconnectDelay = 0
	err := s.Run(context.Background(), nil)
	assert.Error(t, err)

	assert.Error(t, (&KlineStream{}).Run(context.Background(), nil))
}
