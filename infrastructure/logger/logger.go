package logger

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"market-maker-backtest/monitor/logschema"
	"market-maker-backtest/sim"
)

// Logger 封装zap日志器，提供结构化日志功能；同时实现 sim.EventSink
type Logger struct {
	*zap.Logger
	config Config
	files  []*lumberjack.Logger
}

// Config 日志配置
type Config struct {
	Level      string   `yaml:"level"`       // debug, info, warn, error
	Outputs    []string `yaml:"outputs"`     // stdout, file
	OutputFile string   `yaml:"output_file"` // 日志文件路径
	ErrorFile  string   `yaml:"error_file"`  // 错误日志单独文件
	Format     string   `yaml:"format"`      // json 或 console
	MaxSize    int      `yaml:"max_size"`    // 单个日志文件最大MB
	MaxBackups int      `yaml:"max_backups"` // 保留的旧日志文件数
	MaxAge     int      `yaml:"max_age"`     // 保留天数
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Outputs:    []string{"stdout"},
		Format:     "json",
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     7,
	}
}

// New 创建新的Logger实例
func New(cfg Config) (*Logger, error) {
	// 解析日志级别
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %s: %w", cfg.Level, err)
	}

	// 配置编码器
	var encoderConfig zapcore.EncoderConfig
	if cfg.Format == "console" {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		encoderConfig = zap.NewProductionEncoderConfig()
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	if len(cfg.Outputs) == 0 {
		cfg.Outputs = []string{"stdout"}
	}

	// 构建核心
	cores := []zapcore.Core{}
	var files []*lumberjack.Logger

	// 标准输出
	if contains(cfg.Outputs, "stdout") {
		var encoder zapcore.Encoder
		if cfg.Format == "console" {
			encoder = zapcore.NewConsoleEncoder(encoderConfig)
		} else {
			encoder = zapcore.NewJSONEncoder(encoderConfig)
		}
		cores = append(cores, zapcore.NewCore(
			encoder,
			zapcore.AddSync(os.Stdout),
			level,
		))
	}

	// 文件输出，按 MaxSize/MaxBackups/MaxAge 滚动
	if contains(cfg.Outputs, "file") && cfg.OutputFile != "" {
		w := cfg.rotating(cfg.OutputFile)
		files = append(files, w)
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderConfig),
			zapcore.AddSync(w),
			level,
		))
	}

	// 错误日志单独文件
	if cfg.ErrorFile != "" {
		w := cfg.rotating(cfg.ErrorFile)
		files = append(files, w)
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderConfig),
			zapcore.AddSync(w),
			zapcore.ErrorLevel,
		))
	}

	core := zapcore.NewTee(cores...)
	zapLogger := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))

	return &Logger{
		Logger: zapLogger,
		config: cfg,
		files:  files,
	}, nil
}

func (c Config) rotating(path string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    c.MaxSize,
		MaxBackups: c.MaxBackups,
		MaxAge:     c.MaxAge,
	}
}

// Wrap 包装已有的 zap.Logger，测试中配合 observer 使用。
func Wrap(z *zap.Logger) *Logger {
	if z == nil {
		z = zap.NewNop()
	}
	return &Logger{Logger: z, config: DefaultConfig()}
}

// LogQuote 记录每根 K 线的报价（含暂停报价）
func (l *Logger) LogQuote(e sim.QuoteEvent) {
	fields := map[string]interface{}{
		"symbol":      e.Symbol,
		"ts":          e.Ts.UnixMilli(),
		"mid":         e.Mid,
		"smoothedMid": e.SmoothedMid,
		"bid":         e.Quote.BidPrice,
		"ask":         e.Quote.AskPrice,
		"bidQty":      e.Quote.BidQty,
		"askQty":      e.Quote.AskQty,
		"halted":      e.Halted,
	}
	if e.Reason != "" {
		fields["reason"] = e.Reason
	}
	if len(e.Quote.Warnings) > 0 {
		fields["warnings"] = e.Quote.Warnings
	}
	l.emit(zapcore.DebugLevel, logschema.EventQuote, fields)
}

// LogFill 记录模拟成交
func (l *Logger) LogFill(t sim.TradeRecord) {
	l.emit(zapcore.InfoLevel, logschema.EventFill, map[string]interface{}{
		"symbol":         t.Symbol,
		"ts":             t.Ts.UnixMilli(),
		"side":           string(t.Side),
		"qty":            t.Qty,
		"price":          t.Price,
		"fee":            t.Fee,
		"realizedPnl":    t.RealizedPnL,
		"holdings":       t.Holdings,
		"avgEntryPrice":  t.AverageEntryPrice,
		"netRealizedPnl": t.NetRealizedPnL,
		"balance":        t.Balance,
	})
}

// LogSummary 记录一次运行的汇总
func (l *Logger) LogSummary(s sim.Summary) {
	l.emit(zapcore.InfoLevel, logschema.EventSummary, map[string]interface{}{
		"runId":         s.RunID,
		"symbol":        s.Symbol,
		"bars":          s.Bars,
		"netPnl":        s.NetPnL,
		"maxDrawdown":   s.MaxDrawdown,
		"sharpeLike":    s.SharpeLike,
		"finalPosition": s.FinalPosition,
		"totalFees":     s.TotalFees,
		"finalBalance":  s.FinalBalance,
		"trades":        s.TotalTrades,
	})
}

// LogRejected 记录调参中被拒绝的参数组合
func (l *Logger) LogRejected(trial, field, reason string) {
	l.emit(zapcore.WarnLevel, logschema.EventTrialRejected, map[string]interface{}{
		"trial":  trial,
		"field":  field,
		"reason": reason,
	})
}

// OnQuote/OnFill/OnSummary 实现 sim.EventSink
func (l *Logger) OnQuote(e sim.QuoteEvent) { l.LogQuote(e) }

func (l *Logger) OnFill(t sim.TradeRecord) { l.LogFill(t) }

func (l *Logger) OnSummary(s sim.Summary) { l.LogSummary(s) }

func (l *Logger) emit(level zapcore.Level, event string, fields map[string]interface{}) {
	if !l.Core().Enabled(level) {
		return
	}
	if err := logschema.Validate(event, fields); err != nil {
		l.Error("log schema violation", zap.String("event", event), zap.Error(err))
	}
	zapFields := make([]zap.Field, 0, len(fields)+1)
	zapFields = append(zapFields, zap.String("event", event))
	for k, v := range fields {
		zapFields = append(zapFields, zap.Any(k, v))
	}
	if ce := l.Check(level, event); ce != nil {
		ce.Write(zapFields...)
	}
}

// Close 关闭日志器
func (l *Logger) Close() error {
	err := l.Sync()
	for _, f := range l.files {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
