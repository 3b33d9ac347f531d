package feed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"market-maker-backtest/market"
)

// DefaultReadTimeout 超过该时间没有任何消息视为连接失效。
const DefaultReadTimeout = 90 * time.Second

// KlineStream 连接 Binance 风格的 WebSocket 行情流，只向外推送已闭合的 Bar。
// kline 流直接使用交易所给出的闭合 K 线；trade/aggTrade 流经 KlineAggregator 聚合。
type KlineStream struct {
	URL            string
	Dialer         *websocket.Dialer
	ReadTimeout    time.Duration
	ReconnectDelay time.Duration // <=0 时断线直接返回错误

	agg *market.KlineAggregator
	log *zap.Logger
}

// NewKlineStream barInterval 用于 trade 流的聚合周期。
func NewKlineStream(url string, barInterval time.Duration, log *zap.Logger) *KlineStream {
	if log == nil {
		log = zap.NewNop()
	}
	return &KlineStream{
		URL:            url,
		Dialer:         websocket.DefaultDialer,
		ReadTimeout:    DefaultReadTimeout,
		ReconnectDelay: 5 * time.Second,
		agg:            market.NewKlineAggregator(barInterval),
		log:            log.Named("feed"),
	}
}

// Run 阻塞读取消息并在调用方 goroutine 上回调 onBar，直到 ctx 结束。
func (s *KlineStream) Run(ctx context.Context, onBar func(market.Bar)) error {
	if s.URL == "" {
		return errors.New("feed: stream url required")
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.agg == nil {
		s.agg = market.NewKlineAggregator(time.Minute)
	}
	for {
		err := s.runOnce(ctx, onBar)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if s.ReconnectDelay <= 0 {
			return err
		}
		s.log.Warn("stream disconnected, reconnecting", zap.Error(err), zap.Duration("delay", s.ReconnectDelay))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.ReconnectDelay):
		}
	}
}

func (s *KlineStream) runOnce(ctx context.Context, onBar func(market.Bar)) error {
	dialer := s.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	conn, _, err := dialer.DialContext(ctx, s.URL, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", s.URL, err)
	}
	defer conn.Close()
	s.log.Info("stream connected", zap.String("url", s.URL))

	// ctx 结束时关闭连接以打断阻塞的 ReadMessage
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
			_ = conn.Close()
		case <-stop:
		}
	}()

	timeout := s.ReadTimeout
	if timeout <= 0 {
		timeout = DefaultReadTimeout
	}
	for {
		_ = conn.SetReadDeadline(time.Now().Add(timeout))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		if bar, ok := s.handle(msg); ok && onBar != nil {
			onBar(bar)
		}
	}
}

// handle 解析单条消息，返回闭合的 Bar；未闭合或无法识别的消息返回 false。
func (s *KlineStream) handle(msg []byte) (market.Bar, bool) {
	ev, err := parseEvent(msg)
	if err != nil {
		s.log.Debug("skip unparsable message", zap.Error(err))
		return market.Bar{}, false
	}
	switch ev.Event {
	case "kline":
		if ev.Kline == nil || !ev.Kline.Closed {
			return market.Bar{}, false
		}
		bar, err := ev.Kline.bar()
		if err != nil {
			s.log.Warn("bad kline payload", zap.String("symbol", ev.Symbol), zap.Error(err))
			return market.Bar{}, false
		}
		return bar, true
	case "trade", "aggTrade":
		t, err := ev.trade()
		if err != nil {
			s.log.Warn("bad trade payload", zap.String("symbol", ev.Symbol), zap.Error(err))
			return market.Bar{}, false
		}
		if closed := s.agg.OnTrade(t); closed != nil {
			return *closed, true
		}
	}
	return market.Bar{}, false
}
