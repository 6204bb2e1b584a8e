// FILE: lixenwraith/vlog/constant.go
package vlog

import (
	"errors"
	"time"
)

// Sentinel errors, always returned wrapped with context
var (
	ErrInvalidLevel  = errors.New("invalid level")
	ErrUnknownLayout = errors.New("unknown layout")
	ErrMissingStream = errors.New("missing output stream")
	ErrNotStarted    = errors.New("sink not started")
	ErrDrainTimeout  = errors.New("drain timed out")
	ErrShutdown      = errors.New("handle already shut down")
)

// File naming
const (
	dayLayout     = "2006-01-02"
	fileExtension = ".log"
)

// Timers
const (
	// Minimum wait time used throughout the package
	minWaitTime = 10 * time.Millisecond
	// Stop timeout when none is configured
	defaultStopTimeout = 2 * time.Second
)

const (
	maxTraceDepth = 10
	// Placeholder for event fields that were never set
	undefinedField = "undefined"
	// Logger name used for runtime generated events
	internalLoggerName = "vlog"
)
