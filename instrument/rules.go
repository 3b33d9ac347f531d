package instrument

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrUnknownSymbol 表示元数据源中没有该交易对。
var ErrUnknownSymbol = errors.New("instrument: unknown symbol")

// Rules 描述交易对的精度、最小下单量与费率，加载后不可变。
type Rules struct {
	Symbol       string  `yaml:"symbol"`
	PriceTick    float64 `yaml:"priceTick"`
	QtyStep      float64 `yaml:"qtyStep"`
	MinOrderQty  float64 `yaml:"minOrderQty"`
	MinNotional  float64 `yaml:"minNotional"`
	MakerFeeRate float64 `yaml:"makerFeeRate"`
	TakerFeeRate float64 `yaml:"takerFeeRate"`
}

// Usable 判断规则是否足以对价格和数量做量化。
func (r *Rules) Usable() bool {
	return r != nil && r.PriceTick > 0 && r.QtyStep > 0
}

// QuantizePrice 将价格四舍五入（half up）到 tick 的整数倍。
// 规则缺失或价格非法时返回 0，调用方据此放弃该侧报价。
func (r *Rules) QuantizePrice(price float64) float64 {
	if r == nil || r.PriceTick <= 0 || !finitePositive(price) {
		return 0
	}
	tick := decimal.NewFromFloat(r.PriceTick)
	steps := decimal.NewFromFloat(price).Div(tick).Round(0)
	return steps.Mul(tick).InexactFloat64()
}

// QuantizeQty 将数量向下取整到 step 的整数倍。
func (r *Rules) QuantizeQty(qty float64) float64 {
	if r == nil || r.QtyStep <= 0 || !finitePositive(qty) {
		return 0
	}
	step := decimal.NewFromFloat(r.QtyStep)
	steps := decimal.NewFromFloat(qty).Div(step).Floor()
	return steps.Mul(step).InexactFloat64()
}

// Validate 检查订单价格/数量是否符合精度与最小名义。
func (r *Rules) Validate(price, qty float64) error {
	if r == nil {
		return ErrUnknownSymbol
	}
	if r.PriceTick > 0 && !isMultiple(price, r.PriceTick) {
		return fmt.Errorf("price %.8f not aligned to priceTick %.8f", price, r.PriceTick)
	}
	if r.QtyStep > 0 && !isMultiple(qty, r.QtyStep) {
		return fmt.Errorf("qty %.8f not aligned to qtyStep %.8f", qty, r.QtyStep)
	}
	if r.MinOrderQty > 0 && qty < r.MinOrderQty {
		return fmt.Errorf("qty %.8f < minOrderQty %.8f", qty, r.MinOrderQty)
	}
	if r.MinNotional > 0 && price*qty < r.MinNotional {
		return fmt.Errorf("notional %.8f < minNotional %.8f", price*qty, r.MinNotional)
	}
	return nil
}

func isMultiple(value, step float64) bool {
	if step <= 0 {
		return true
	}
	ratio := value / step
	return math.Abs(ratio-math.Round(ratio)) <= 1e-8
}

func finitePositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// Source 按交易对解析 Rules。
type Source interface {
	Rules(symbol string) (*Rules, error)
}

// StaticSource 基于配置文件的静态元数据源。
type StaticSource map[string]Rules

// Rules 返回规则副本，未知交易对返回 ErrUnknownSymbol。
func (s StaticSource) Rules(symbol string) (*Rules, error) {
	r, ok := s[strings.ToUpper(symbol)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}
	if r.Symbol == "" {
		r.Symbol = strings.ToUpper(symbol)
	}
	return &r, nil
}
