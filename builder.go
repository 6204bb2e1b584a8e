// FILE: lixenwraith/vlog/builder.go
package vlog

import (
	"strings"
	"time"
)

// Builder provides a fluent API for building a Handle.
// Setter errors are accumulated and reported by Build.
type Builder struct {
	cfg   *Config
	sinks []Sink
	err   error
}

// NewBuilder creates a new configuration builder with default values.
func NewBuilder() *Builder {
	return &Builder{
		cfg: DefaultConfig(),
	}
}

// Config returns the configuration built so far, validated.
func (b *Builder) Config() (*Config, error) {
	if b.err != nil {
		return nil, b.err
	}
	if err := b.cfg.Validate(); err != nil {
		return nil, err
	}
	return b.cfg.Clone(), nil
}

// Build validates the configuration and initializes a Handle from it.
func (b *Builder) Build() (*Handle, error) {
	cfg, err := b.Config()
	if err != nil {
		return nil, err
	}
	return Init(cfg, b.sinks...)
}

// Level sets the threshold.
func (b *Builder) Level(level Level) *Builder {
	b.cfg.Level = strings.ToLower(level.String())
	return b
}

// LevelString sets the threshold from a level name.
func (b *Builder) LevelString(level string) *Builder {
	if b.err != nil {
		return b
	}
	if _, err := ParseLevel(level); err != nil {
		b.err = err
		return b
	}
	b.cfg.Level = level
	return b
}

// Directory enables the rolling-file sink in dir.
func (b *Builder) Directory(dir string) *Builder {
	b.cfg.Directory = dir
	return b
}

// Layout selects a registered layout by name.
func (b *Builder) Layout(name string) *Builder {
	b.cfg.Layout = name
	return b
}

// RetentionDays sets how many days of log files are kept.
func (b *Builder) RetentionDays(days int64) *Builder {
	b.cfg.RetentionDays = days
	return b
}

// MaxFileBytes sets the rotation size in bytes.
func (b *Builder) MaxFileBytes(n int64) *Builder {
	b.cfg.MaxFileBytes = n
	return b
}

// MaxFileSize sets the rotation size from a human size such as "10MB".
func (b *Builder) MaxFileSize(size string) *Builder {
	if b.err != nil {
		return b
	}
	n, err := parseByteSize(size)
	if err != nil {
		b.err = fmtErrorf("invalid max file size '%s': %w", size, err)
		return b
	}
	b.cfg.MaxFileBytes = n
	return b
}

// CleanupInterval sets the retention schedule, rounded down to minutes.
func (b *Builder) CleanupInterval(d time.Duration) *Builder {
	b.cfg.CleanupIntervalMins = int64(d / time.Minute)
	return b
}

// TimestampFormat sets the time layout used by the layouts.
func (b *Builder) TimestampFormat(format string) *Builder {
	b.cfg.TimestampFormat = format
	return b
}

// Sanitize enables hex encoding of non-printable message bytes.
func (b *Builder) Sanitize(enabled bool) *Builder {
	b.cfg.Sanitize = enabled
	return b
}

// TraceDepth sets the recorded call trace depth.
func (b *Builder) TraceDepth(depth int64) *Builder {
	b.cfg.TraceDepth = depth
	return b
}

// BufferSize bounds each sink queue; 0 leaves it unbounded.
func (b *Builder) BufferSize(size int64) *Builder {
	b.cfg.BufferSize = size
	return b
}

// StopTimeout bounds how long stopping a sink waits.
func (b *Builder) StopTimeout(d time.Duration) *Builder {
	b.cfg.StopTimeoutMs = d.Milliseconds()
	return b
}

// FlushInterval enables periodic syncing.
func (b *Builder) FlushInterval(d time.Duration) *Builder {
	b.cfg.FlushIntervalMs = d.Milliseconds()
	return b
}

// EnableConsole toggles the console sink.
func (b *Builder) EnableConsole(enabled bool) *Builder {
	b.cfg.EnableConsole = enabled
	return b
}

// ConsoleColor toggles level colors on terminals.
func (b *Builder) ConsoleColor(enabled bool) *Builder {
	b.cfg.ConsoleColor = enabled
	return b
}

// HeartbeatInterval enables periodic statistics events.
func (b *Builder) HeartbeatInterval(d time.Duration) *Builder {
	b.cfg.HeartbeatIntervalS = int64(d / time.Second)
	return b
}

// InternalErrorsToStderr toggles runtime diagnostics.
func (b *Builder) InternalErrorsToStderr(enabled bool) *Builder {
	b.cfg.InternalErrorsToStderr = enabled
	return b
}

// Override applies "key=value" overrides.
func (b *Builder) Override(overrides ...string) *Builder {
	if b.err != nil {
		return b
	}
	if err := b.cfg.ApplyOverride(overrides...); err != nil {
		b.err = err
	}
	return b
}

// Sink attaches an extra sink to the built handle.
func (b *Builder) Sink(s Sink) *Builder {
	if s != nil {
		b.sinks = append(b.sinks, s)
	}
	return b
}
