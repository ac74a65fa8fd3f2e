package engine

import (
	"Prism3D/internal/logger"
	"Prism3D/internal/renderer"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ConfigWatcher reloads a render config file whenever it changes. Only
// valid configs are delivered; a file that fails to load is logged and the
// previous config stays in effect.
type ConfigWatcher struct {
	path    string
	watcher *fsnotify.Watcher
	updates chan renderer.RenderConfig
	done    chan struct{}
	wg      sync.WaitGroup
}

// NewConfigWatcher watches path. The directory is watched rather than the
// file so that editors replacing the file are noticed too.
func NewConfigWatcher(path string) (*ConfigWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("config watcher: %w", err)
	}
	w := &ConfigWatcher{
		path:    abs,
		watcher: watcher,
		updates: make(chan renderer.RenderConfig, 1),
		done:    make(chan struct{}),
	}
	w.wg.Add(1)
	go w.run()
	logger.Log.Info("Watching render config", zap.String("path", abs))
	return w, nil
}

// Updates delivers the latest valid config. Configs not yet received are
// replaced by newer ones, so a host polling once per frame sees the latest.
func (w *ConfigWatcher) Updates() <-chan renderer.RenderConfig { return w.updates }

// Close stops watching. It is safe to call more than once.
func (w *ConfigWatcher) Close() error {
	select {
	case <-w.done:
		return nil
	default:
	}
	close(w.done)
	err := w.watcher.Close()
	w.wg.Wait()
	return err
}

func (w *ConfigWatcher) run() {
	defer w.wg.Done()
	for {
		select {
		case e, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(e.Name) != w.path || !e.Op.Has(fsnotify.Write) && !e.Op.Has(fsnotify.Create) {
				continue
			}
			w.reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Log.Warn("Config watcher error", zap.Error(err))
		case <-w.done:
			return
		}
	}
}

func (w *ConfigWatcher) reload() {
	config, err := renderer.LoadRenderConfig(w.path)
	if err != nil {
		logger.Log.Warn("Render config not reloaded", zap.String("path", w.path), zap.Error(err))
		return
	}
	// Drop an unread config in favor of this one.
	select {
	case <-w.updates:
	default:
	}
	w.updates <- config
	logger.Log.Info("Render config reloaded",
		zap.String("path", w.path),
		zap.String("pipeline", config.Pipeline))
}
