// FILE: lixenwraith/vlog/handle.go
package vlog

import (
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
)

// levelOff is above every real level; loggers of a shut down handle use it.
const levelOff = LevelError + 1

// Handle owns a configured set of sinks and the loggers writing to them.
// It is created by Init and released by Shutdown.
type Handle struct {
	currentConfig atomic.Pointer[Config]
	combiner      *Combiner
	fileSink      *RollingFileSink

	mu      sync.Mutex
	loggers map[string]*Logger

	level      atomic.Int32
	traceDepth atomic.Int64

	heartbeatMu  sync.Mutex
	heartbeat    *cron.Cron
	heartbeatSeq atomic.Uint64
	startTime    time.Time

	shutdownCalled atomic.Bool
}

// Init validates cfg, builds the console and file sinks it enables plus any
// extra sinks, and starts them all. A nil cfg selects the defaults.
func Init(cfg *Config, extra ...Sink) (*Handle, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	cfg = cfg.Clone()
	if err := cfg.Validate(); err != nil {
		return nil, fmtErrorf("invalid configuration: %w", err)
	}

	internalErrorsEnabled.Store(cfg.InternalErrorsToStderr)

	h := &Handle{
		combiner:  NewCombiner(),
		loggers:   make(map[string]*Logger),
		startTime: time.Now(),
	}
	h.currentConfig.Store(cfg)
	h.level.Store(int32(cfg.level()))
	h.traceDepth.Store(cfg.TraceDepth)

	opts := AsyncOptions{
		BufferSize:    int(cfg.BufferSize),
		StopTimeout:   time.Duration(cfg.StopTimeoutMs) * time.Millisecond,
		FlushInterval: time.Duration(cfg.FlushIntervalMs) * time.Millisecond,
	}

	if cfg.EnableConsole {
		layout, err := NewLayout(cfg.Layout, cfg)
		if err != nil {
			return nil, err
		}
		console, err := NewConsoleSink(os.Stdout, os.Stderr, layout)
		if err != nil {
			return nil, err
		}
		console.Color(cfg.ConsoleColor)
		h.combiner.AddSink(NewAsyncSink("console", console, opts))
	}

	if cfg.Directory != "" {
		layout, err := NewLayout(cfg.Layout, cfg)
		if err != nil {
			return nil, err
		}
		file, err := NewRollingFileSink(cfg.Directory, layout)
		if err != nil {
			return nil, err
		}
		file.RetentionDays(int(cfg.RetentionDays)).
			MaxFileBytes(cfg.MaxFileBytes).
			CleanupInterval(time.Duration(cfg.CleanupIntervalMins) * time.Minute)
		h.fileSink = file
		h.combiner.AddSink(NewAsyncSink("file", file, opts))
	}

	for _, s := range extra {
		h.combiner.AddSink(s)
	}

	if err := h.combiner.Start(); err != nil {
		if stopErr := h.combiner.Stop(); stopErr != nil {
			internalLog("%v", stopErr)
		}
		return nil, fmtErrorf("failed to start sinks: %w", err)
	}

	h.startHeartbeat(cfg)
	return h, nil
}

// GetLogger returns the logger named name, creating it on first use.
func (h *Handle) GetLogger(name string) *Logger {
	h.mu.Lock()
	defer h.mu.Unlock()

	if l, ok := h.loggers[name]; ok {
		return l
	}
	level := Level(h.level.Load())
	if h.shutdownCalled.Load() {
		level = levelOff
	}
	l := newLogger(name, level, h.traceDepth.Load(), h.combiner)
	h.loggers[name] = l
	return l
}

// SetLevel changes the threshold of every logger of the handle. Loggers of a
// shut down handle stay off.
func (h *Handle) SetLevel(level Level) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.level.Store(int32(level))
	cfg := h.getConfig().Clone()
	cfg.Level = strings.ToLower(level.String())
	h.currentConfig.Store(cfg)

	if h.shutdownCalled.Load() {
		return
	}
	for _, l := range h.loggers {
		l.setLevel(level)
	}
}

// Level returns the handle's threshold.
func (h *Handle) Level() Level {
	return Level(h.level.Load())
}

// SetTraceDepth changes the call trace depth recorded by every logger.
func (h *Handle) SetTraceDepth(depth int64) error {
	if depth < 0 || depth > maxTraceDepth {
		return fmtErrorf("trace_depth must be between 0 and %d: %d", maxTraceDepth, depth)
	}
	h.traceDepth.Store(depth)

	cfg := h.getConfig().Clone()
	cfg.TraceDepth = depth
	h.currentConfig.Store(cfg)

	h.forEachLogger(func(l *Logger) { l.setTraceDepth(depth) })
	return nil
}

// GetConfig returns a copy of the current configuration
func (h *Handle) GetConfig() *Config {
	return h.getConfig().Clone()
}

func (h *Handle) getConfig() *Config {
	return h.currentConfig.Load()
}

// AddSink attaches s, starting it if the handle is running.
func (h *Handle) AddSink(s Sink) error {
	if h.shutdownCalled.Load() {
		return fmtErrorf("%w", ErrShutdown)
	}
	h.combiner.AddSink(s)
	if h.combiner.Started() {
		return s.Start()
	}
	return nil
}

// Sink returns the combiner all loggers of the handle write to.
func (h *Handle) Sink() *Combiner {
	return h.combiner
}

// Drain waits until every queued event has been delivered or timeout elapses.
func (h *Handle) Drain(timeout time.Duration) error {
	return h.combiner.Drain(timeout)
}

// Flush syncs every sink's written output and waits for completion or timeout.
func (h *Handle) Flush(timeout time.Duration) error {
	return h.combiner.Flush(timeout)
}

// Stats returns a snapshot of every sink's counters.
func (h *Handle) Stats() []SinkStats {
	return h.combiner.Stats()
}

// Shutdown drains pending events within timeout, then stops all sinks.
// Loggers of the handle become no-ops. Safe to call multiple times.
func (h *Handle) Shutdown(timeout time.Duration) error {
	h.mu.Lock()
	if h.shutdownCalled.Load() {
		h.mu.Unlock()
		return nil
	}
	h.shutdownCalled.Store(true)
	for _, l := range h.loggers {
		l.setLevel(levelOff)
	}
	h.mu.Unlock()

	h.stopHeartbeat()

	var finalErr error
	if err := h.combiner.Drain(timeout); err != nil {
		finalErr = combineErrors(finalErr, err)
	}
	if err := h.combiner.Stop(); err != nil {
		finalErr = combineErrors(finalErr, err)
	}
	return finalErr
}

func (h *Handle) forEachLogger(fn func(l *Logger)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, l := range h.loggers {
		fn(l)
	}
}
