package inventory

// UnrealizedPnL 基于标记价计算未实现盈亏。
func (l *Ledger) UnrealizedPnL(mark float64) float64 {
	if l.holdings == 0 || mark <= 0 {
		return 0
	}
	return (mark - l.avgEntry) * l.holdings
}

// Equity 为已实现与未实现盈亏之和（不含手续费）。
func (l *Ledger) Equity(mark float64) float64 {
	return l.realized + l.UnrealizedPnL(mark)
}
