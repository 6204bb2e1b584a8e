// FILE: lixenwraith/vlog/watch.go
package vlog

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Reload applies the runtime-adjustable settings of cfg, the level and the
// trace depth, to a running handle. Sink settings require a new handle.
func (h *Handle) Reload(cfg *Config) error {
	if cfg == nil {
		return fmtErrorf("configuration cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return fmtErrorf("invalid configuration: %w", err)
	}
	if err := h.SetTraceDepth(cfg.TraceDepth); err != nil {
		return err
	}
	h.SetLevel(cfg.level())
	return nil
}

// WatchConfig reloads the level and trace depth from the TOML file at path
// whenever it changes, until ctx is done. The parent directory is watched so
// editors that replace the file are followed. Reload failures keep the
// current settings and are reported as diagnostics.
func (h *Handle) WatchConfig(ctx context.Context, path string) error {
	path = filepath.Clean(path)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmtErrorf("unable to create config watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return fmtErrorf("unable to watch '%s': %w", path, err)
	}

	go h.watchConfig(ctx, watcher, path)
	return nil
}

func (h *Handle) watchConfig(ctx context.Context, watcher *fsnotify.Watcher, path string) {
	defer watcher.Close()

	logger := h.GetLogger(internalLoggerName)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != path || !event.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			cfg, err := NewConfigFromFile(path)
			if err != nil {
				internalLog("config reload from '%s' failed: %v", path, err)
				continue
			}
			if err := h.Reload(cfg); err != nil {
				internalLog("config reload from '%s' failed: %v", path, err)
				continue
			}
			logger.Info("configuration reloaded from {}: level={} trace_depth={}", path, cfg.level(), cfg.TraceDepth)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			internalLog("error whilst watching '%s': %v", path, err)

		case <-ctx.Done():
			return
		}
	}
}
