// FILE: lixenwraith/vlog/async.go
package vlog

import (
	"io"
	"sync"
	"sync/atomic"
	"time"
)

// AsyncSink decouples event producers from a Writer. Append enqueues and
// returns; a single worker goroutine delivers events in FIFO order.
//
// Stop does not drain: events still queued when Stop returns remain queued
// and are delivered after a later Start. Use Drain before Stop to wait for
// delivery.
type AsyncSink struct {
	name   string
	writer Writer
	queue  *eventQueue

	stopTimeout   time.Duration
	flushInterval time.Duration

	lifecycleMu sync.Mutex // serializes Start and Stop
	started     atomic.Bool
	stopCh      chan struct{}
	doneCh      chan struct{}

	flushMu          sync.Mutex
	flushRequestChan chan chan error

	// pending counts events enqueued but not yet fully handled by the worker
	pending     atomic.Int64
	enqueued    atomic.Uint64
	written     atomic.Uint64
	failed      atomic.Uint64
	dropped     atomic.Uint64
	unsupported atomic.Uint64
}

// AsyncOptions tunes an AsyncSink. Zero values select the defaults.
type AsyncOptions struct {
	// BufferSize bounds the queue; 0 means unbounded. When bounded and full,
	// new events are dropped and counted.
	BufferSize int
	// StopTimeout bounds how long Stop waits for the in-flight event.
	StopTimeout time.Duration
	// FlushInterval, if positive, syncs the writer periodically.
	FlushInterval time.Duration
}

// NewAsyncSink wraps w. The sink starts stopped.
func NewAsyncSink(name string, w Writer, opts AsyncOptions) *AsyncSink {
	stopTimeout := opts.StopTimeout
	if stopTimeout <= 0 {
		stopTimeout = defaultStopTimeout
	}
	return &AsyncSink{
		name:             name,
		writer:           w,
		queue:            newEventQueue(opts.BufferSize),
		stopTimeout:      stopTimeout,
		flushInterval:    opts.FlushInterval,
		flushRequestChan: make(chan chan error),
	}
}

// Name returns the sink's name used in diagnostics and stats.
func (s *AsyncSink) Name() string {
	return s.name
}

// Start opens the writer and spawns the worker. Safe to call multiple times.
func (s *AsyncSink) Start() error {
	s.lifecycleMu.Lock()
	defer s.lifecycleMu.Unlock()

	if s.started.Load() {
		return nil
	}

	// A worker from a timed-out Stop must be gone before a new one runs
	if s.doneCh != nil {
		select {
		case <-s.doneCh:
		case <-time.After(s.stopTimeout):
			return fmtErrorf("previous worker of sink '%s' still running", s.name)
		}
	}

	if o, ok := s.writer.(Opener); ok {
		if err := o.Open(); err != nil {
			return fmtErrorf("failed to open sink '%s': %w", s.name, err)
		}
	}

	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.started.Store(true)
	go s.processEvents(s.stopCh, s.doneCh)

	return nil
}

// Stop signals the worker to exit after its current event and waits for it,
// then closes the writer. Returns nil if already stopped.
func (s *AsyncSink) Stop() error {
	s.lifecycleMu.Lock()
	defer s.lifecycleMu.Unlock()

	if !s.started.CompareAndSwap(true, false) {
		return nil
	}

	close(s.stopCh)

	select {
	case <-s.doneCh:
		return s.closeWriter()
	case <-time.After(s.stopTimeout):
		// Close once the worker is actually gone
		done := s.doneCh
		go func() {
			<-done
			if err := s.closeWriter(); err != nil {
				internalLog("%v", err)
			}
		}()
		return fmtErrorf("worker of sink '%s' did not exit within timeout (%v)", s.name, s.stopTimeout)
	}
}

// Started reports whether the worker is running.
func (s *AsyncSink) Started() bool {
	return s.started.Load()
}

// Support reports whether e would be accepted by the writer.
func (s *AsyncSink) Support(e *Event) bool {
	return e != nil && s.writer.Support(e)
}

// Append enqueues e regardless of the running state. Unsupported events are
// dropped silently.
func (s *AsyncSink) Append(e *Event) {
	if !s.Support(e) {
		s.unsupported.Add(1)
		return
	}

	s.pending.Add(1)
	if !s.queue.push(e) {
		s.pending.Add(-1)
		if s.dropped.Add(1) == 1 {
			internalLog("sink '%s' queue full, dropping events", s.name)
		}
		return
	}
	s.enqueued.Add(1)
}

// Drain blocks until every queued event has been handled by the worker or the
// timeout elapses.
func (s *AsyncSink) Drain(timeout time.Duration) error {
	if s.pending.Load() == 0 {
		return nil
	}
	if !s.started.Load() {
		return fmtErrorf("%w: sink '%s' has %d pending events", ErrNotStarted, s.name, s.pending.Load())
	}

	deadline := time.Now().Add(timeout)
	for s.pending.Load() > 0 {
		if !s.started.Load() {
			return fmtErrorf("%w: sink '%s' stopped while draining", ErrNotStarted, s.name)
		}
		if !time.Now().Before(deadline) {
			return fmtErrorf("%w: sink '%s' (%v, %d pending)", ErrDrainTimeout, s.name, timeout, s.pending.Load())
		}
		time.Sleep(minWaitTime)
	}
	return nil
}

// Flush asks the worker to sync the writer and waits for completion or timeout.
func (s *AsyncSink) Flush(timeout time.Duration) error {
	s.flushMu.Lock()
	defer s.flushMu.Unlock()

	if !s.started.Load() {
		return fmtErrorf("%w: sink '%s'", ErrNotStarted, s.name)
	}

	confirmChan := make(chan error, 1)
	select {
	case s.flushRequestChan <- confirmChan:
	case <-time.After(timeout):
		return fmtErrorf("failed to send flush request to sink '%s' (worker busy)", s.name)
	}

	select {
	case err := <-confirmChan:
		return err
	case <-time.After(timeout):
		return fmtErrorf("timeout waiting for flush confirmation (%v)", timeout)
	}
}

// Stats returns a snapshot of the sink's counters.
func (s *AsyncSink) Stats() []SinkStats {
	st := SinkStats{
		Name:        s.name,
		Started:     s.started.Load(),
		Enqueued:    s.enqueued.Load(),
		Written:     s.written.Load(),
		Failed:      s.failed.Load(),
		Dropped:     s.dropped.Load(),
		Unsupported: s.unsupported.Load(),
		Pending:     s.pending.Load(),
	}
	if ws, ok := s.writer.(writerStats); ok {
		ws.fillStats(&st)
	}
	return []SinkStats{st}
}

// processEvents is the worker loop. The stop signal is checked before each
// event is taken, so at most the in-flight event completes after Stop.
func (s *AsyncSink) processEvents(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	var flushTick <-chan time.Time
	if s.flushInterval > 0 {
		ticker := time.NewTicker(s.flushInterval)
		defer ticker.Stop()
		flushTick = ticker.C
	}

	for {
		select {
		case <-stop:
			return
		case confirmChan := <-s.flushRequestChan:
			confirmChan <- s.syncWriter()
			continue
		case <-flushTick:
			if err := s.syncWriter(); err != nil {
				internalLog("%v", err)
			}
			continue
		default:
		}

		e, ok := s.queue.pop()
		if !ok {
			select {
			case <-stop:
				return
			case <-s.queue.notify:
			case confirmChan := <-s.flushRequestChan:
				confirmChan <- s.syncWriter()
			case <-flushTick:
				if err := s.syncWriter(); err != nil {
					internalLog("%v", err)
				}
			}
			continue
		}

		s.processEvent(e)
	}
}

// processEvent delivers one event. Errors and panics are contained.
func (s *AsyncSink) processEvent(e *Event) {
	defer s.pending.Add(-1)
	defer func() {
		if r := recover(); r != nil {
			s.failed.Add(1)
			internalLog("sink '%s' recovered from panic while writing: %v", s.name, r)
		}
	}()

	if err := s.writer.Write(e); err != nil {
		s.failed.Add(1)
		internalLog("sink '%s' failed to write event: %v", s.name, err)
		return
	}
	s.written.Add(1)
}

func (s *AsyncSink) syncWriter() error {
	if sy, ok := s.writer.(Syncer); ok {
		if err := sy.Sync(); err != nil {
			return fmtErrorf("failed to sync sink '%s': %w", s.name, err)
		}
	}
	return nil
}

func (s *AsyncSink) closeWriter() error {
	if c, ok := s.writer.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return fmtErrorf("failed to close sink '%s': %w", s.name, err)
		}
	}
	return nil
}
