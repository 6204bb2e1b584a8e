// FILE: lixenwraith/vlog/default.go
package vlog

import (
	"sync"
	"time"
)

// Process-wide handle for the package-level functions
var (
	defaultMu     sync.Mutex
	defaultHandle *Handle
)

// InitDefault replaces the process-wide handle, shutting down the previous one.
func InitDefault(cfg *Config, extra ...Sink) error {
	h, err := Init(cfg, extra...)
	if err != nil {
		return err
	}

	defaultMu.Lock()
	prev := defaultHandle
	defaultHandle = h
	defaultMu.Unlock()

	if prev != nil {
		return prev.Shutdown(time.Duration(prev.getConfig().StopTimeoutMs) * time.Millisecond)
	}
	return nil
}

// LoadDefault returns the process-wide handle, creating it from the VLOG_*
// environment on first use. Invalid environment values and sink failures are
// returned and no handle is kept, so a later call retries.
func LoadDefault() (*Handle, error) {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultHandle != nil {
		return defaultHandle, nil
	}

	cfg, err := NewConfigFromEnv()
	if err != nil {
		return nil, fmtErrorf("invalid environment configuration: %w", err)
	}
	h, err := Init(cfg)
	if err != nil {
		return nil, err
	}
	defaultHandle = h
	return h, nil
}

// Default is LoadDefault for callers without an error path. It panics when
// the process-wide handle cannot be created.
func Default() *Handle {
	h, err := LoadDefault()
	if err != nil {
		panic(err)
	}
	return h
}

// GetLogger returns a logger of the process-wide handle. It panics like
// Default when the environment configuration is invalid.
func GetLogger(name string) *Logger {
	return Default().GetLogger(name)
}

// SetLevel changes the threshold of the process-wide handle.
func SetLevel(level Level) {
	Default().SetLevel(level)
}

// Shutdown drains and stops the process-wide handle. A later GetLogger
// creates a fresh handle.
func Shutdown(timeout time.Duration) error {
	defaultMu.Lock()
	h := defaultHandle
	defaultHandle = nil
	defaultMu.Unlock()

	if h == nil {
		return nil
	}
	return h.Shutdown(timeout)
}
