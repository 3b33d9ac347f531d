package risk

import (
	"testing"
	"time"

	"market-maker-backtest/state"
)

func TestCircuitBreaker(t *testing.T) {
	cb := NewCircuitBreaker(0.01, 0.02)
	now := time.Unix(1_700_000_000, 0)
	var pts []state.PricePoint
	// stable prices
	for i := 0; i < 5; i++ {
		pts = append(pts, state.PricePoint{Price: 100, Ts: now.Add(time.Duration(i) * 10 * time.Second)})
		if trip, _ := cb.Check(pts); trip {
			t.Fatalf("did not expect trip")
		}
	}
	// jump 2% within 1m triggers
	pts = append(pts, state.PricePoint{Price: 102, Ts: now.Add(50 * time.Second)})
	trip, span := cb.Check(pts)
	if !trip || span != "1m" {
		t.Fatalf("expected 1m trip")
	}
}

func TestCircuitBreakerFiveMinute(t *testing.T) {
	cb := NewCircuitBreaker(0.01, 0.02)
	now := time.Unix(1_700_000_000, 0)
	var pts []state.PricePoint
	for i := 0; i <= 4; i++ {
		pts = append(pts, state.PricePoint{Price: 100 + float64(i)*0.75, Ts: now.Add(time.Duration(i) * time.Minute)})
	}
	// 每分钟 0.75%，5 分钟累计 3%
	trip, span := cb.Check(pts)
	if !trip || span != "5m" {
		t.Fatalf("expected 5m trip, got %v %q", trip, span)
	}
}

func TestCircuitBreakerDisabled(t *testing.T) {
	var cb *CircuitBreaker
	if cb.Enabled() {
		t.Fatalf("nil breaker must be disabled")
	}
	pts := []state.PricePoint{{Price: 100, Ts: time.Unix(0, 0)}, {Price: 200, Ts: time.Unix(1, 0)}}
	if trip, _ := NewCircuitBreaker(0, 0).Check(pts); trip {
		t.Fatalf("zero thresholds must not trip")
	}
}
