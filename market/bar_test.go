package market

import (
	"math"
	"testing"
	"time"
)

func TestBarValidate(t *testing.T) {
	ts := time.UnixMilli(1_700_000_000_000)
	ok := Bar{StartTime: ts, Open: 100, High: 101, Low: 99, Close: 100.5, Volume: 10}
	if err := ok.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok.Millis() != 1_700_000_000_000 {
		t.Fatalf("unexpected millis %d", ok.Millis())
	}
	bad := []Bar{
		{StartTime: ts, Open: 100, High: 99, Low: 101, Close: 100},
		{StartTime: ts, Open: 102, High: 101, Low: 99, Close: 100},
		{StartTime: ts, Open: 0, High: 0, Low: 0, Close: 0},
		{StartTime: ts, Open: 100, High: 101, Low: 99, Close: math.NaN()},
		{StartTime: ts, Open: 100, High: math.Inf(1), Low: 99, Close: 100},
		{StartTime: ts, Open: math.NaN(), High: math.NaN(), Low: math.NaN(), Close: math.NaN()},
		{StartTime: ts, Open: 100, High: 101, Low: 99, Close: 100, Volume: math.Inf(1)},
	}
	for i, b := range bad {
		if err := b.Validate(); err == nil {
			t.Fatalf("case %d: expected error for %+v", i, b)
		}
	}
}
