package strategy

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidConfig 所有配置错误都包装该哨兵错误，便于调参器区分“参数非法”与“合法但亏损”。
var ErrInvalidConfig = errors.New("invalid strategy config")

// ConfigError 描述单个非法字段。
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid strategy config: %s %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfig }

// 产品类别。
const (
	CategorySpot    = "spot"
	CategoryLinear  = "linear"
	CategoryInverse = "inverse"
)

// InventoryParams 库存倾斜参数。
type InventoryParams struct {
	Enabled           bool    `yaml:"enabled"`
	SkewIntensity     float64 `yaml:"skewIntensity" validate:"gte=0"`
	MaxInventoryRatio float64 `yaml:"maxInventoryRatio" validate:"gte=0"`
}

// DynamicSpreadParams 波动率自适应价差参数。
type DynamicSpreadParams struct {
	Enabled                 bool    `yaml:"enabled"`
	VolatilityMultiplier    float64 `yaml:"volatilityMultiplier" validate:"gte=0"`
	MinSpreadPct            float64 `yaml:"minSpreadPct" validate:"gte=0,lt=1"`
	MaxSpreadPct            float64 `yaml:"maxSpreadPct" validate:"gte=0,lt=1"`
	VolatilityWindowSeconds int     `yaml:"volatilityWindowSeconds" validate:"gte=0"`
}

// Params 是可序列化的原始参数，经 NewConfig 校验后才能使用。
// 所有百分比均为小数（0.002 = 0.2%）。
type Params struct {
	BaseSpreadPct               float64             `yaml:"baseSpreadPct" validate:"gt=0,lt=1"`
	OrderSizePctOfBalance       float64             `yaml:"orderSizePctOfBalance" validate:"gt=0,lte=1"`
	MaxOrderSizePct             float64             `yaml:"maxOrderSizePct" validate:"gt=0,lte=1"`
	MaxOutstandingOrders        int                 `yaml:"maxOutstandingOrders" validate:"gte=1"`
	MinProfitSpreadAfterFeesPct float64             `yaml:"minProfitSpreadAfterFeesPct" validate:"gte=0,lt=1"`
	MaxNetExposure              float64             `yaml:"maxNetExposure" validate:"gte=0"`
	MinOrderValue               float64             `yaml:"minOrderValue" validate:"gte=0"`
	Category                    string              `yaml:"category" validate:"oneof=spot linear inverse"`
	Leverage                    float64             `yaml:"leverage" validate:"gte=1,lte=125"`
	Inventory                   InventoryParams     `yaml:"inventory"`
	DynamicSpread               DynamicSpreadParams `yaml:"dynamicSpread"`
}

// Config 是校验过的不可变策略配置；调参时每组参数构造一个新的 Config。
type Config struct {
	p     Params
	valid bool
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// NewConfig 填充缺省值后校验参数，失败时返回 *ConfigError。
func NewConfig(p Params) (Config, error) {
	if p.Category == "" {
		p.Category = CategorySpot
	}
	if p.Leverage == 0 {
		p.Leverage = 1
	}
	if p.MaxOutstandingOrders == 0 {
		p.MaxOutstandingOrders = 2
	}
	if err := validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			field := strings.TrimPrefix(fe.Namespace(), "Params.")
			return Config{}, &ConfigError{Field: field, Reason: describe(fe)}
		}
		return Config{}, &ConfigError{Field: "params", Reason: err.Error()}
	}
	if err := crossCheck(p); err != nil {
		return Config{}, err
	}
	return Config{p: p, valid: true}, nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "gt":
		return fmt.Sprintf("must be > %s, got %v", fe.Param(), fe.Value())
	case "gte":
		return fmt.Sprintf("must be >= %s, got %v", fe.Param(), fe.Value())
	case "lt":
		return fmt.Sprintf("must be < %s, got %v", fe.Param(), fe.Value())
	case "lte":
		return fmt.Sprintf("must be <= %s, got %v", fe.Param(), fe.Value())
	case "oneof":
		return fmt.Sprintf("must be one of [%s], got %v", fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("failed %s check", fe.Tag())
	}
}

func crossCheck(p Params) error {
	ds := p.DynamicSpread
	if ds.MinSpreadPct > 0 && ds.MaxSpreadPct > 0 && ds.MinSpreadPct > ds.MaxSpreadPct {
		return &ConfigError{Field: "dynamicSpread.minSpreadPct", Reason: "must not exceed dynamicSpread.maxSpreadPct"}
	}
	if ds.Enabled {
		if ds.MaxSpreadPct <= 0 {
			return &ConfigError{Field: "dynamicSpread.maxSpreadPct", Reason: "must be > 0 when dynamic spread is enabled"}
		}
		if ds.VolatilityWindowSeconds <= 0 {
			return &ConfigError{Field: "dynamicSpread.volatilityWindowSeconds", Reason: "must be > 0 when dynamic spread is enabled"}
		}
	}
	if p.Inventory.Enabled {
		if p.MaxNetExposure <= 0 {
			return &ConfigError{Field: "maxNetExposure", Reason: "must be > 0 when inventory management is enabled"}
		}
		if p.Inventory.MaxInventoryRatio <= 0 {
			return &ConfigError{Field: "inventory.maxInventoryRatio", Reason: "must be > 0 when inventory management is enabled"}
		}
	}
	if p.Category == CategorySpot && p.Leverage != 1 {
		return &ConfigError{Field: "leverage", Reason: "must be 1 for spot"}
	}
	return nil
}

// Valid 仅 NewConfig 构造的 Config 有效，零值 Config 无效。
func (c Config) Valid() bool { return c.valid }

// Params 返回参数副本。
func (c Config) Params() Params { return c.p }

// SupportsLeverage 合约类别按杠杆放大可用资金。
func (c Config) SupportsLeverage() bool {
	return c.p.Category == CategoryLinear || c.p.Category == CategoryInverse
}

// VolatilityWindowSeconds 供状态窗口确定容量。
func (c Config) VolatilityWindowSeconds() int { return c.p.DynamicSpread.VolatilityWindowSeconds }
