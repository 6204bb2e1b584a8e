// FILE: lixenwraith/vlog/sink.go
package vlog

import (
	"time"
)

// Sink is a destination for events with a start/stop lifecycle.
// Append never blocks on I/O and never returns an error to the caller.
type Sink interface {
	Start() error
	Stop() error
	Started() bool
	// Support is a cheap precondition checked before any queuing or I/O.
	Support(e *Event) bool
	Append(e *Event)
}

// Writer performs the synchronous delivery of one event. An AsyncSink calls
// Write from a single goroutine.
type Writer interface {
	Support(e *Event) bool
	Write(e *Event) error
}

// Opener is implemented by writers that acquire resources when their sink starts.
type Opener interface {
	Open() error
}

// Syncer is implemented by writers that can commit buffered output.
type Syncer interface {
	Sync() error
}

// Drainer is implemented by sinks that can wait for their queue to empty.
type Drainer interface {
	Drain(timeout time.Duration) error
}

// Flusher is implemented by sinks that can sync written output on request.
type Flusher interface {
	Flush(timeout time.Duration) error
}

// SinkStats is a snapshot of a sink's delivery counters.
type SinkStats struct {
	Name        string
	Started     bool
	Enqueued    uint64
	Written     uint64
	Failed      uint64
	Dropped     uint64
	Unsupported uint64
	Pending     int64

	// rolling-file only
	CurrentFile string
	CurrentSize int64
	Rotations   uint64
	Deletions   uint64
}

// StatsProvider is implemented by sinks that expose delivery counters.
type StatsProvider interface {
	Stats() []SinkStats
}

// writerStats lets a writer add its own counters to the owning sink's snapshot.
type writerStats interface {
	fillStats(s *SinkStats)
}

// supportEvent is the common precondition shared by the built-in writers.
func supportEvent(e *Event) bool {
	return e != nil
}
