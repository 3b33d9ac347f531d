package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultCooldown 两次重载之间的最小间隔，编辑器保存时常连续触发多个事件。
const DefaultCooldown = 500 * time.Millisecond

// Watcher 监听配置文件，写入或重建后重新加载并回调。
type Watcher struct {
	Path     string
	Cooldown time.Duration
	Log      *zap.Logger

	mu         sync.Mutex
	lastReload time.Time
}

// NewWatcher 创建监听器，cooldown<=0 时使用 DefaultCooldown。
func NewWatcher(path string, cooldown time.Duration, log *zap.Logger) *Watcher {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Watcher{Path: path, Cooldown: cooldown, Log: log.Named("config")}
}

// Start 阻塞直到 ctx 结束；加载失败的版本只记录日志，不回调。
func (w *Watcher) Start(ctx context.Context, onUpdate func(AppConfig)) error {
	if w.Log == nil {
		w.Log = zap.NewNop()
	}
	if w.Cooldown <= 0 {
		w.Cooldown = DefaultCooldown
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	// 监听目录，兼容“写临时文件再 rename”的保存方式
	if err := fw.Add(filepath.Dir(w.Path)); err != nil {
		return fmt.Errorf("watch config dir: %w", err)
	}
	target := filepath.Clean(w.Path)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.reload(onUpdate)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.Log.Warn("config watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) reload(onUpdate func(AppConfig)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if time.Since(w.lastReload) < w.Cooldown {
		return
	}
	// 写到一半的文件会解析失败，不计入冷却
	cfg, err := LoadWithEnvOverrides(w.Path)
	if err != nil {
		w.Log.Warn("config reload failed", zap.String("path", w.Path), zap.Error(err))
		return
	}
	w.lastReload = time.Now()
	w.Log.Info("config reloaded", zap.String("path", w.Path))
	if onUpdate != nil {
		onUpdate(cfg)
	}
}
