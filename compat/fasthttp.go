// FILE: lixenwraith/vlog/compat/fasthttp.go
package compat

import (
	"fmt"
	"strings"

	"github.com/valyala/fasthttp"

	"github.com/lixenwraith/vlog"
)

var _ fasthttp.Logger = (*FastHTTPAdapter)(nil)

// FastHTTPAdapter routes fasthttp server logging into a vlog Logger. fasthttp
// only offers Printf, so the level is inferred from the message text.
type FastHTTPAdapter struct {
	logger        *vlog.Logger
	defaultLevel  vlog.Level
	levelDetector func(string) (vlog.Level, bool)
}

// FastHTTPOption allows customizing adapter behavior
type FastHTTPOption func(*FastHTTPAdapter)

// NewFastHTTPAdapter creates a fasthttp-compatible adapter
func NewFastHTTPAdapter(logger *vlog.Logger, opts ...FastHTTPOption) *FastHTTPAdapter {
	adapter := &FastHTTPAdapter{
		logger:        logger,
		defaultLevel:  vlog.LevelInfo,
		levelDetector: DetectLogLevel,
	}
	for _, opt := range opts {
		opt(adapter)
	}
	return adapter
}

// WithDefaultLevel sets the level used when detection finds nothing
func WithDefaultLevel(level vlog.Level) FastHTTPOption {
	return func(a *FastHTTPAdapter) {
		a.defaultLevel = level
	}
}

// WithLevelDetector replaces the message based level detection; nil disables it
func WithLevelDetector(detector func(string) (vlog.Level, bool)) FastHTTPOption {
	return func(a *FastHTTPAdapter) {
		a.levelDetector = detector
	}
}

// Printf implements fasthttp.Logger
func (a *FastHTTPAdapter) Printf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)

	level := a.defaultLevel
	if a.levelDetector != nil {
		if detected, ok := a.levelDetector(msg); ok {
			level = detected
		}
	}
	a.logger.Log(level, nil, "{}", msg)
}

// DetectLogLevel infers a level from keywords in msg
func DetectLogLevel(msg string) (vlog.Level, bool) {
	msgLower := strings.ToLower(msg)

	switch {
	case containsAny(msgLower, "error", "failed", "fatal", "panic"):
		return vlog.LevelError, true
	case containsAny(msgLower, "warn", "deprecated"):
		return vlog.LevelWarn, true
	case containsAny(msgLower, "debug"):
		return vlog.LevelDebug, true
	case containsAny(msgLower, "trace"):
		return vlog.LevelTrace, true
	}
	return vlog.LevelInfo, false
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
