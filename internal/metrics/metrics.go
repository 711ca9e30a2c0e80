// Package metrics holds the Prometheus collectors for the tool layer.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds all Prometheus metrics on a private registry, no global state.
// A nil *Collector is valid and records nothing.
type Collector struct {
	Registry *prometheus.Registry

	ExecTotal    *prometheus.CounterVec
	ExecDuration *prometheus.HistogramVec
	ExecDenied   *prometheus.CounterVec

	ScriptRunsTotal *prometheus.CounterVec
	ScriptDuration  prometheus.Histogram

	SearchMatchesTotal prometheus.Counter
	SearchFilesTotal   prometheus.Counter

	ToolCallsTotal *prometheus.CounterVec
}

// New creates a Collector with every metric registered.
func New() *Collector {
	reg := prometheus.NewRegistry()

	m := &Collector{
		Registry: reg,

		ExecTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "iavtools",
			Subsystem: "exec",
			Name:      "total",
			Help:      "Process executions by mode and outcome.",
		}, []string{"mode", "outcome"}),

		ExecDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "iavtools",
			Subsystem: "exec",
			Name:      "duration_seconds",
			Help:      "Process execution wall time in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300},
		}, []string{"mode"}),

		ExecDenied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "iavtools",
			Subsystem: "exec",
			Name:      "denied_total",
			Help:      "Executions rejected before spawn, by reason.",
		}, []string{"reason"}),

		ScriptRunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "iavtools",
			Subsystem: "script",
			Name:      "runs_total",
			Help:      "Script sandbox runs by status.",
		}, []string{"status"}),

		ScriptDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "iavtools",
			Subsystem: "script",
			Name:      "duration_seconds",
			Help:      "Script sandbox run time in seconds.",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		}),

		SearchMatchesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "iavtools",
			Subsystem: "search",
			Name:      "matches_total",
			Help:      "Matching lines emitted by search.",
		}),

		SearchFilesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "iavtools",
			Subsystem: "search",
			Name:      "files_scanned_total",
			Help:      "Files read by search after filtering.",
		}),

		ToolCallsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "iavtools",
			Subsystem: "tool",
			Name:      "calls_total",
			Help:      "Tool invocations by tool and status.",
		}, []string{"tool", "status"}),
	}

	reg.MustRegister(
		m.ExecTotal,
		m.ExecDuration,
		m.ExecDenied,
		m.ScriptRunsTotal,
		m.ScriptDuration,
		m.SearchMatchesTotal,
		m.SearchFilesTotal,
		m.ToolCallsTotal,
	)

	return m
}

// Gatherer exposes the registry for dumping or serving.
func (m *Collector) Gatherer() prometheus.Gatherer {
	if m == nil {
		return prometheus.NewRegistry()
	}
	return m.Registry
}

// RecordExec records one finished process execution.
func (m *Collector) RecordExec(mode, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.ExecTotal.WithLabelValues(mode, outcome).Inc()
	m.ExecDuration.WithLabelValues(mode).Observe(d.Seconds())
}

// RecordExecDenied records an execution rejected before spawn.
func (m *Collector) RecordExecDenied(reason string) {
	if m == nil {
		return
	}
	m.ExecDenied.WithLabelValues(reason).Inc()
}

// RecordScript records one sandbox run.
func (m *Collector) RecordScript(status string, d time.Duration) {
	if m == nil {
		return
	}
	m.ScriptRunsTotal.WithLabelValues(status).Inc()
	m.ScriptDuration.Observe(d.Seconds())
}

// RecordSearch records the files scanned and matching lines of one search.
func (m *Collector) RecordSearch(files, matches int) {
	if m == nil {
		return
	}
	m.SearchFilesTotal.Add(float64(files))
	m.SearchMatchesTotal.Add(float64(matches))
}

// RecordToolCall records one registry dispatch.
func (m *Collector) RecordToolCall(tool, status string) {
	if m == nil {
		return
	}
	m.ToolCallsTotal.WithLabelValues(tool, status).Inc()
}
