package market

import (
	"testing"
	"time"
)

func TestKlineAggregator(t *testing.T) {
	agg := NewKlineAggregator(time.Minute)
	ts := time.Unix(0, 0)
	if closed := agg.OnTrade(Trade{Price: 100, Qty: 1, Ts: ts}); closed != nil {
		t.Fatalf("should not close on first trade")
	}
	agg.OnTrade(Trade{Price: 102, Qty: 2, Ts: ts.Add(10 * time.Second)})
	agg.OnTrade(Trade{Price: 99, Qty: 1, Ts: ts.Add(20 * time.Second)})
	agg.OnTrade(Trade{Price: 101, Qty: 1, Ts: ts.Add(50 * time.Second)})
	closed := agg.OnTrade(Trade{Price: 105, Qty: 1, Ts: ts.Add(70 * time.Second)})
	if closed == nil {
		t.Fatalf("expected kline close")
	}
	if closed.Open != 100 || closed.High != 102 || closed.Low != 99 || closed.Close != 101 || closed.Volume != 5 {
		t.Fatalf("unexpected kline %+v", closed)
	}
	cur, ok := agg.Current()
	if !ok || cur.Open != 105 || !cur.StartTime.Equal(ts.Add(time.Minute)) {
		t.Fatalf("unexpected current bar %+v", cur)
	}
}

func TestKlineAggregatorDropsLateTrades(t *testing.T) {
	agg := NewKlineAggregator(time.Minute)
	ts := time.Unix(600, 0)
	agg.OnTrade(Trade{Price: 100, Qty: 1, Ts: ts})
	if closed := agg.OnTrade(Trade{Price: 50, Qty: 1, Ts: ts.Add(-2 * time.Minute)}); closed != nil {
		t.Fatalf("late trade must not close the bar")
	}
	cur, _ := agg.Current()
	if cur.Low != 100 {
		t.Fatalf("late trade leaked into bar: %+v", cur)
	}
}
