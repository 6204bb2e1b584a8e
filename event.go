// FILE: lixenwraith/vlog/event.go
package vlog

import (
	"time"
)

// Event is a single log occurrence. It is built once by a Logger and never
// modified afterwards; sinks must not retain it past a write.
type Event struct {
	Level      Level
	ThreadName string    // goroutine that emitted the event
	Time       time.Time // wall clock at capture
	LoggerName string
	Message    string // template, "{}" marks a placeholder
	Arguments  []any
	Err        error  // optional error payload
	Trace      string // optional call trace
}

// EventTimeMillis returns the capture time in Unix milliseconds, 0 if unset.
func (e *Event) EventTimeMillis() int64 {
	if e.Time.IsZero() {
		return 0
	}
	return e.Time.UnixMilli()
}
