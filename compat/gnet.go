// FILE: lixenwraith/vlog/compat/gnet.go
package compat

import (
	"fmt"
	"os"
	"time"

	"github.com/panjf2000/gnet/v2/pkg/logging"

	"github.com/lixenwraith/vlog"
)

var _ logging.Logger = (*GnetAdapter)(nil)

// GnetAdapter routes gnet engine logging into a vlog Logger
type GnetAdapter struct {
	logger       *vlog.Logger
	drainer      vlog.Drainer
	drainTimeout time.Duration
	fatalHandler func(msg string)
}

// GnetOption allows customizing adapter behavior
type GnetOption func(*GnetAdapter)

// NewGnetAdapter creates a gnet-compatible adapter. By default Fatalf exits
// the process with status 1, as gnet expects.
func NewGnetAdapter(logger *vlog.Logger, opts ...GnetOption) *GnetAdapter {
	adapter := &GnetAdapter{
		logger:       logger,
		drainTimeout: 500 * time.Millisecond,
		fatalHandler: func(string) { os.Exit(1) },
	}
	for _, opt := range opts {
		opt(adapter)
	}
	return adapter
}

// WithFatalHandler sets a custom fatal handler
func WithFatalHandler(handler func(string)) GnetOption {
	return func(a *GnetAdapter) {
		a.fatalHandler = handler
	}
}

// WithDrainer makes Fatalf wait for pending events before the fatal handler runs
func WithDrainer(d vlog.Drainer, timeout time.Duration) GnetOption {
	return func(a *GnetAdapter) {
		a.drainer = d
		if timeout > 0 {
			a.drainTimeout = timeout
		}
	}
}

func (a *GnetAdapter) Debugf(format string, args ...any) {
	a.logger.Debug("{}", fmt.Sprintf(format, args...))
}

func (a *GnetAdapter) Infof(format string, args ...any) {
	a.logger.Info("{}", fmt.Sprintf(format, args...))
}

func (a *GnetAdapter) Warnf(format string, args ...any) {
	a.logger.Warn("{}", fmt.Sprintf(format, args...))
}

func (a *GnetAdapter) Errorf(format string, args ...any) {
	a.logger.Error("{}", fmt.Sprintf(format, args...))
}

// Fatalf logs at error level, drains if a drainer is set, then calls the fatal handler
func (a *GnetAdapter) Fatalf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	a.logger.Error("fatal: {}", msg)

	if a.drainer != nil {
		_ = a.drainer.Drain(a.drainTimeout)
	}
	if a.fatalHandler != nil {
		a.fatalHandler(msg)
	}
}
