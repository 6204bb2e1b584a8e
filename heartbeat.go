// FILE: lixenwraith/vlog/heartbeat.go
package vlog

import (
	"fmt"
	"runtime"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/robfig/cron/v3"
)

// heartbeatLoggerName identifies runtime statistics events
const heartbeatLoggerName = internalLoggerName + ".heartbeat"

func (h *Handle) startHeartbeat(cfg *Config) {
	if cfg.HeartbeatIntervalS <= 0 {
		return
	}
	h.heartbeatMu.Lock()
	defer h.heartbeatMu.Unlock()

	h.heartbeat = cron.New()
	h.heartbeat.Schedule(cron.Every(time.Duration(cfg.HeartbeatIntervalS)*time.Second), cron.FuncJob(h.emitHeartbeat))
	h.heartbeat.Start()
}

func (h *Handle) stopHeartbeat() {
	h.heartbeatMu.Lock()
	defer h.heartbeatMu.Unlock()
	if h.heartbeat != nil {
		<-h.heartbeat.Stop().Done()
		h.heartbeat = nil
	}
}

// emitHeartbeat appends a statistics event directly to the sinks. Heartbeats
// are not subject to logger thresholds.
func (h *Handle) emitHeartbeat() {
	h.combiner.Append(h.heartbeatEvent())
}

func (h *Handle) heartbeatEvent() *Event {
	sequence := h.heartbeatSeq.Add(1)
	uptime := time.Since(h.startTime).Round(time.Second)

	var totals SinkStats
	for _, st := range h.Stats() {
		totals.Enqueued += st.Enqueued
		totals.Written += st.Written
		totals.Failed += st.Failed
		totals.Dropped += st.Dropped
		totals.Rotations += st.Rotations
		totals.Deletions += st.Deletions
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	msg := "heartbeat sequence={} uptime={} goroutines={} heap={} enqueued={} written={} failed={} dropped={}"
	args := []any{
		sequence,
		uptime,
		runtime.NumGoroutine(),
		humanize.IBytes(mem.HeapAlloc),
		totals.Enqueued,
		totals.Written,
		totals.Failed,
		totals.Dropped,
	}

	if h.fileSink != nil {
		dirSize := "unknown"
		if size, err := h.fileSink.DirSize(); err == nil {
			dirSize = humanize.IBytes(uint64(size))
		}
		msg += " rotations={} deletions={} dir_size={}"
		args = append(args, totals.Rotations, totals.Deletions, dirSize)
	}

	return &Event{
		Level:      LevelInfo,
		ThreadName: goroutineName(),
		Time:       time.Now(),
		LoggerName: heartbeatLoggerName,
		Message:    msg,
		Arguments:  args,
	}
}

// String renders the counters of a single sink, used by the demo CLI.
func (s SinkStats) String() string {
	out := fmt.Sprintf("%s: started=%t enqueued=%d written=%d failed=%d dropped=%d unsupported=%d pending=%d",
		s.Name, s.Started, s.Enqueued, s.Written, s.Failed, s.Dropped, s.Unsupported, s.Pending)
	if s.CurrentFile != "" || s.Rotations > 0 || s.Deletions > 0 {
		out += fmt.Sprintf(" file=%s size=%s rotations=%d deletions=%d",
			s.CurrentFile, humanize.IBytes(uint64(s.CurrentSize)), s.Rotations, s.Deletions)
	}
	return out
}
