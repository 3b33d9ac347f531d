package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"market-maker-backtest/sim"
)

// Config 指标命名空间
type Config struct {
	Namespace string
	Subsystem string
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Namespace: "mmbt",
		Subsystem: "sim",
	}
}

// Collector 把核心事件转成 Prometheus 指标，实现 sim.EventSink
type Collector struct {
	registry *prometheus.Registry

	quotes     *prometheus.CounterVec
	halts      *prometheus.CounterVec
	fills      *prometheus.CounterVec
	fillVolume *prometheus.CounterVec
	fees       *prometheus.CounterVec

	midPrice    *prometheus.GaugeVec
	smoothedMid *prometheus.GaugeVec
	bidPrice    *prometheus.GaugeVec
	askPrice    *prometheus.GaugeVec
	spread      *prometheus.GaugeVec
	position    *prometheus.GaugeVec
	realizedPnL *prometheus.GaugeVec
	equity      *prometheus.GaugeVec
	balance     *prometheus.GaugeVec

	netPnL      *prometheus.GaugeVec
	maxDrawdown *prometheus.GaugeVec
	sharpeLike  *prometheus.GaugeVec

	mu   sync.Mutex
	last map[string]sim.TradeRecord
}

// NewCollector 创建 Collector，使用独立 registry
func NewCollector(cfg Config) *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	sym := []string{"symbol"}
	counter := func(name, help string, labels []string) *prometheus.CounterVec {
		return factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace, Subsystem: cfg.Subsystem, Name: name, Help: help,
		}, labels)
	}
	gauge := func(name, help string) *prometheus.GaugeVec {
		return factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: cfg.Namespace, Subsystem: cfg.Subsystem, Name: name, Help: help,
		}, sym)
	}

	return &Collector{
		registry: reg,

		quotes:     counter("quotes_total", "生成报价的 K 线数", sym),
		halts:      counter("halted_bars_total", "暂停报价的 K 线数", sym),
		fills:      counter("fills_total", "模拟成交笔数", []string{"symbol", "side"}),
		fillVolume: counter("fill_volume_total", "模拟成交数量", []string{"symbol", "side"}),
		fees:       counter("fees_total", "累计手续费", sym),

		midPrice:    gauge("mid_price", "当前中间价"),
		smoothedMid: gauge("smoothed_mid_price", "EMA 平滑后的中间价"),
		bidPrice:    gauge("bid_price", "当前买价报价"),
		askPrice:    gauge("ask_price", "当前卖价报价"),
		spread:      gauge("spread_ratio", "当前相对价差"),
		position:    gauge("position", "当前净仓位"),
		realizedPnL: gauge("realized_pnl", "已实现盈亏（不含手续费）"),
		equity:      gauge("equity", "已实现+未实现盈亏"),
		balance:     gauge("balance", "当前余额"),

		netPnL:      gauge("run_net_pnl", "最近一次运行的净盈亏"),
		maxDrawdown: gauge("run_max_drawdown", "最近一次运行的最大回撤"),
		sharpeLike:  gauge("run_sharpe_like", "最近一次运行的 Sharpe-like"),

		last: make(map[string]sim.TradeRecord),
	}
}

// Registry 返回prometheus registry
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

func (c *Collector) OnQuote(e sim.QuoteEvent) {
	if e.Halted {
		c.halts.WithLabelValues(e.Symbol).Inc()
		return
	}
	c.quotes.WithLabelValues(e.Symbol).Inc()
	c.midPrice.WithLabelValues(e.Symbol).Set(e.Mid)
	c.smoothedMid.WithLabelValues(e.Symbol).Set(e.SmoothedMid)
	c.bidPrice.WithLabelValues(e.Symbol).Set(e.Quote.BidPrice)
	c.askPrice.WithLabelValues(e.Symbol).Set(e.Quote.AskPrice)
	c.spread.WithLabelValues(e.Symbol).Set(e.Quote.Spread)

	c.mu.Lock()
	rec, ok := c.last[e.Symbol]
	c.mu.Unlock()
	switch {
	case !ok:
		// 尚无成交，权益为 0
		c.equity.WithLabelValues(e.Symbol).Set(0)
	case e.Mid > 0:
		unrealized := 0.0
		if rec.Holdings != 0 {
			unrealized = rec.Holdings * (e.Mid - rec.AverageEntryPrice)
		}
		c.equity.WithLabelValues(e.Symbol).Set(rec.NetRealizedPnL + unrealized)
	}
}

func (c *Collector) OnFill(t sim.TradeRecord) {
	side := string(t.Side)
	c.fills.WithLabelValues(t.Symbol, side).Inc()
	c.fillVolume.WithLabelValues(t.Symbol, side).Add(t.Qty)
	c.fees.WithLabelValues(t.Symbol).Add(t.Fee)
	c.position.WithLabelValues(t.Symbol).Set(t.Holdings)
	c.realizedPnL.WithLabelValues(t.Symbol).Set(t.NetRealizedPnL)
	c.balance.WithLabelValues(t.Symbol).Set(t.Balance)

	c.mu.Lock()
	c.last[t.Symbol] = t
	c.mu.Unlock()
}

func (c *Collector) OnSummary(s sim.Summary) {
	c.netPnL.WithLabelValues(s.Symbol).Set(s.NetPnL)
	c.maxDrawdown.WithLabelValues(s.Symbol).Set(s.MaxDrawdown)
	c.sharpeLike.WithLabelValues(s.Symbol).Set(s.SharpeLike)
	c.position.WithLabelValues(s.Symbol).Set(s.FinalPosition)
}
