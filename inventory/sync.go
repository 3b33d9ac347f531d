package inventory

// Position 是 Ledger 在某一时刻的只读快照。
type Position struct {
	Holdings          float64
	AverageEntryPrice float64
	NetRealizedPnL    float64
	TotalFees         float64
}

// Snapshot 返回当前仓位快照。
func (l *Ledger) Snapshot() Position {
	return Position{
		Holdings:          l.holdings,
		AverageEntryPrice: l.avgEntry,
		NetRealizedPnL:    l.realized,
		TotalFees:         l.fees,
	}
}
