// FILE: lixenwraith/vlog/metrics.go
package vlog

import (
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "vlog"

// Collector exports the sink counters of a Handle as Prometheus metrics,
// labeled by sink name. Values are read at scrape time.
type Collector struct {
	source StatsProvider

	enqueued    *prometheus.Desc
	written     *prometheus.Desc
	failed      *prometheus.Desc
	dropped     *prometheus.Desc
	unsupported *prometheus.Desc
	pending     *prometheus.Desc
	started     *prometheus.Desc
	fileBytes   *prometheus.Desc
	rotations   *prometheus.Desc
	deletions   *prometheus.Desc
}

// NewCollector returns a collector over source, typically a *Handle.
func NewCollector(source StatsProvider) *Collector {
	labels := []string{"sink"}
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(metricsNamespace, "sink", name), help, labels, nil)
	}
	return &Collector{
		source:      source,
		enqueued:    desc("enqueued_total", "Events accepted into the sink queue."),
		written:     desc("written_total", "Events delivered by the sink writer."),
		failed:      desc("failed_total", "Events whose write failed or panicked."),
		dropped:     desc("dropped_total", "Events dropped because the bounded queue was full."),
		unsupported: desc("unsupported_total", "Events rejected by the sink precondition."),
		pending:     desc("pending", "Events queued or in flight."),
		started:     desc("started", "1 if the sink worker is running."),
		fileBytes:   desc("current_file_bytes", "Size of the open log file."),
		rotations:   desc("rotations_total", "Log file rotations."),
		deletions:   desc("retention_deletions_total", "Log files deleted by retention."),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.enqueued
	ch <- c.written
	ch <- c.failed
	ch <- c.dropped
	ch <- c.unsupported
	ch <- c.pending
	ch <- c.started
	ch <- c.fileBytes
	ch <- c.rotations
	ch <- c.deletions
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for _, st := range c.source.Stats() {
		counter := func(d *prometheus.Desc, v uint64) {
			ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, float64(v), st.Name)
		}
		gauge := func(d *prometheus.Desc, v float64) {
			ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, v, st.Name)
		}

		counter(c.enqueued, st.Enqueued)
		counter(c.written, st.Written)
		counter(c.failed, st.Failed)
		counter(c.dropped, st.Dropped)
		counter(c.unsupported, st.Unsupported)
		gauge(c.pending, float64(st.Pending))
		started := 0.0
		if st.Started {
			started = 1
		}
		gauge(c.started, started)

		if st.CurrentFile != "" || st.Rotations > 0 || st.Deletions > 0 {
			gauge(c.fileBytes, float64(st.CurrentSize))
			counter(c.rotations, st.Rotations)
			counter(c.deletions, st.Deletions)
		}
	}
}

// RegisterMetrics registers a collector for h with reg.
func (h *Handle) RegisterMetrics(reg prometheus.Registerer) error {
	if err := reg.Register(NewCollector(h)); err != nil {
		return fmtErrorf("failed to register metrics collector: %w", err)
	}
	return nil
}
