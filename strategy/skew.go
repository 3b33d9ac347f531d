package strategy

// SkewFactor 根据库存计算 mid 的偏移比例。
// 多头返回负值（下移 mid，卖单更易成交），空头返回正值，无仓位为 0。
func SkewFactor(holdings, mid float64, cfg Config) float64 {
	p := cfg.p
	if !p.Inventory.Enabled || p.MaxNetExposure <= 0 || p.Inventory.MaxInventoryRatio <= 0 || mid <= 0 || holdings == 0 {
		return 0
	}
	ratio := holdings * mid / (p.MaxNetExposure * p.Inventory.MaxInventoryRatio)
	if ratio > 1 {
		ratio = 1
	} else if ratio < -1 {
		ratio = -1
	}
	return -ratio * p.Inventory.SkewIntensity
}
