// FILE: lixenwraith/vlog/combiner.go
package vlog

import (
	"sync"
	"sync/atomic"
	"time"
)

// Combiner fans events out to an ordered list of sinks. It is itself a Sink.
type Combiner struct {
	mu      sync.Mutex // serializes AddSink
	sinks   atomic.Pointer[[]Sink]
	started atomic.Bool
}

// NewCombiner returns a combiner over sinks, in order.
func NewCombiner(sinks ...Sink) *Combiner {
	c := &Combiner{}
	list := append([]Sink(nil), sinks...)
	c.sinks.Store(&list)
	return c
}

// AddSink appends s. Concurrent Append calls see either the old or the new list.
func (c *Combiner) AddSink(s Sink) {
	if s == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := *c.sinks.Load()
	list := make([]Sink, len(old), len(old)+1)
	copy(list, old)
	list = append(list, s)
	c.sinks.Store(&list)
}

// Sinks returns the current sink list.
func (c *Combiner) Sinks() []Sink {
	return *c.sinks.Load()
}

// Start starts every sink. A failing sink does not prevent the others from
// starting; all failures are returned combined.
func (c *Combiner) Start() error {
	var errs error
	for _, s := range c.Sinks() {
		if err := s.Start(); err != nil {
			errs = combineErrors(errs, err)
		}
	}
	c.started.Store(true)
	return errs
}

// Stop stops every sink, collecting failures the same way as Start.
func (c *Combiner) Stop() error {
	var errs error
	for _, s := range c.Sinks() {
		if err := s.Stop(); err != nil {
			errs = combineErrors(errs, err)
		}
	}
	c.started.Store(false)
	return errs
}

func (c *Combiner) Started() bool {
	return c.started.Load()
}

func (c *Combiner) Support(e *Event) bool {
	return supportEvent(e)
}

// Append forwards e to every sink that supports it, in registration order.
func (c *Combiner) Append(e *Event) {
	if !c.Support(e) {
		return
	}
	for _, s := range c.Sinks() {
		appendToSink(s, e)
	}
}

// appendToSink isolates the other sinks from a panicking one.
func appendToSink(s Sink, e *Event) {
	defer func() {
		if r := recover(); r != nil {
			internalLog("recovered from panic in sink append: %v", r)
		}
	}()
	if s.Support(e) {
		s.Append(e)
	}
}

// Drain waits for every draining sink to empty, sharing one deadline.
func (c *Combiner) Drain(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	var errs error
	for _, s := range c.Sinks() {
		d, ok := s.(Drainer)
		if !ok {
			continue
		}
		if err := d.Drain(remaining(deadline)); err != nil {
			errs = combineErrors(errs, err)
		}
	}
	return errs
}

// Flush syncs every flushing sink, sharing one deadline.
func (c *Combiner) Flush(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	var errs error
	for _, s := range c.Sinks() {
		f, ok := s.(Flusher)
		if !ok || !s.Started() {
			continue
		}
		if err := f.Flush(remaining(deadline)); err != nil {
			errs = combineErrors(errs, err)
		}
	}
	return errs
}

// Stats collects the stats of every sink that provides them.
func (c *Combiner) Stats() []SinkStats {
	var stats []SinkStats
	for _, s := range c.Sinks() {
		if p, ok := s.(StatsProvider); ok {
			stats = append(stats, p.Stats()...)
		}
	}
	return stats
}

// remaining returns the time left until deadline, never less than minWaitTime.
func remaining(deadline time.Time) time.Duration {
	d := time.Until(deadline)
	if d < minWaitTime {
		return minWaitTime
	}
	return d
}
