package market

import "time"

// Trade 表示一笔归一化的成交。
type Trade struct {
	Price float64
	Qty   float64
	Ts    time.Time
}
