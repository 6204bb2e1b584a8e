// FILE: lixenwraith/vlog/logger.go
package vlog

import (
	"sync/atomic"
	"time"
)

// Logger is a named facade over a sink. Loggers are obtained from a Handle,
// which owns their threshold. All methods are safe for concurrent use and
// never fail the caller.
type Logger struct {
	name       string
	sink       Sink
	level      atomic.Int32
	traceDepth atomic.Int64
}

func newLogger(name string, level Level, traceDepth int64, sink Sink) *Logger {
	l := &Logger{name: name, sink: sink}
	l.level.Store(int32(level))
	l.traceDepth.Store(traceDepth)
	return l
}

// Name returns the logger's identity key.
func (l *Logger) Name() string {
	return l.name
}

// Level returns the current threshold.
func (l *Logger) Level() Level {
	return Level(l.level.Load())
}

// Enabled reports whether an event at level would be emitted.
func (l *Logger) Enabled(level Level) bool {
	return l != nil && level >= Level(l.level.Load())
}

func (l *Logger) setLevel(level Level) {
	l.level.Store(int32(level))
}

func (l *Logger) setTraceDepth(depth int64) {
	l.traceDepth.Store(depth)
}

// Trace logs a message at trace level
func (l *Logger) Trace(msg string, args ...any) {
	l.log(LevelTrace, nil, msg, args)
}

// Debug logs a message at debug level
func (l *Logger) Debug(msg string, args ...any) {
	l.log(LevelDebug, nil, msg, args)
}

// Info logs a message at info level
func (l *Logger) Info(msg string, args ...any) {
	l.log(LevelInfo, nil, msg, args)
}

// Warn logs a message at warning level
func (l *Logger) Warn(msg string, args ...any) {
	l.log(LevelWarn, nil, msg, args)
}

// Error logs a message at error level
func (l *Logger) Error(msg string, args ...any) {
	l.log(LevelError, nil, msg, args)
}

// TraceErr logs a message with an error payload at trace level
func (l *Logger) TraceErr(err error, msg string, args ...any) {
	l.log(LevelTrace, err, msg, args)
}

// DebugErr logs a message with an error payload at debug level
func (l *Logger) DebugErr(err error, msg string, args ...any) {
	l.log(LevelDebug, err, msg, args)
}

// InfoErr logs a message with an error payload at info level
func (l *Logger) InfoErr(err error, msg string, args ...any) {
	l.log(LevelInfo, err, msg, args)
}

// WarnErr logs a message with an error payload at warning level
func (l *Logger) WarnErr(err error, msg string, args ...any) {
	l.log(LevelWarn, err, msg, args)
}

// ErrorErr logs a message with an error payload at error level
func (l *Logger) ErrorErr(err error, msg string, args ...any) {
	l.log(LevelError, err, msg, args)
}

// Log logs at an explicit level; err may be nil.
func (l *Logger) Log(level Level, err error, msg string, args ...any) {
	l.log(level, err, msg, args)
}

// log builds and appends the event. Nothing is captured when the level is
// filtered out.
func (l *Logger) log(level Level, err error, msg string, args []any) {
	if !l.Enabled(level) || l.sink == nil {
		return
	}

	var trace string
	if depth := l.traceDepth.Load(); depth > 0 {
		const skipTrace = 3 // Logger.Info -> log -> getTrace
		trace = getTrace(depth, skipTrace)
	}

	e := &Event{
		Level:      level,
		ThreadName: goroutineName(),
		Time:       time.Now(),
		LoggerName: l.name,
		Message:    msg,
		Arguments:  args,
		Err:        err,
		Trace:      trace,
	}

	defer func() {
		if r := recover(); r != nil {
			internalLog("logger '%s' recovered from panic in sink: %v", l.name, r)
		}
	}()
	l.sink.Append(e)
}
