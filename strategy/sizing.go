package strategy

import (
	"math"

	"market-maker-backtest/instrument"
	"market-maker-backtest/market"
	"market-maker-backtest/state"
)

// OrderSize 计算单侧下单数量，不满足最小数量或最小名义时返回 0。
func OrderSize(side market.Side, price float64, st *state.TradingState, cfg Config, rules *instrument.Rules) float64 {
	if st == nil || !rules.Usable() || price <= 0 {
		return 0
	}
	p := cfg.p
	capital := st.AvailableBalance
	if cfg.SupportsLeverage() {
		capital *= p.Leverage
	}
	if capital <= 0 {
		return 0
	}

	size := capital * p.OrderSizePctOfBalance / price
	size = math.Min(size, capital*p.MaxOrderSizePct/price)

	if p.Inventory.Enabled && p.MaxNetExposure > 0 && st.MidPrice > 0 {
		maxAbs := p.MaxNetExposure / st.MidPrice
		holdings := st.Holdings()
		switch side {
		case market.Buy:
			room := maxAbs - holdings
			if room <= 0 {
				return 0
			}
			size = math.Min(size, room)
		case market.Sell:
			if holdings > 0 {
				// 多头时最多卖出现有仓位，不从这里开空
				size = math.Min(size, holdings)
			} else {
				room := maxAbs + holdings
				if room <= 0 {
					return 0
				}
				size = math.Min(size, room)
			}
		}
	}

	qty := rules.QuantizeQty(size)
	if qty <= 0 || qty < rules.MinOrderQty {
		return 0
	}
	if qty*price < math.Max(rules.MinNotional, p.MinOrderValue) {
		return 0
	}
	return qty
}
