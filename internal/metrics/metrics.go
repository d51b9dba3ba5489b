// Package metrics provides a small, backend-agnostic abstraction for recording
// operational metrics from pipeline runs.
//
// It exposes a narrow interface (Backend) of counters and timings, and a
// process-level pluggable backend that defaults to a no-op, so recording is
// always safe even when no metrics system is configured. Concrete backends
// live in subpackages (prompush, datadog) and are installed once in main.
package metrics

import (
	"sync"
	"time"
)

// Metric names shared by all backends.
const (
	StageTotal           = "tabetl_stage_total"
	StageDurationSeconds = "tabetl_stage_duration_seconds"
	RowsTotal            = "tabetl_rows_total"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}
func (nopBackend) Flush() error                             { return nil }

var (
	mu      sync.RWMutex
	backend Backend = nopBackend{}
)

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	mu.Lock()
	backend = b
	mu.Unlock()
}

func current() Backend {
	mu.RLock()
	defer mu.RUnlock()
	return backend
}

// Flush delegates to the current backend.
func Flush() error {
	return current().Flush()
}

// RecordStage counts one execution of a pipeline stage and records its
// duration, labelled by job, stage and success or failure.
func RecordStage(job, stage string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := Labels{
		"job":    job,
		"stage":  stage,
		"status": status,
	}
	b := current()
	b.IncCounter(StageTotal, 1, lbls)
	b.ObserveHistogram(StageDurationSeconds, d.Seconds(), lbls)
}

// RecordRows adds n to the row counter for the given job and kind. Kinds
// name the point in the run the rows were counted at:
//   - "extracted"
//   - "transformed"
//   - "merged"
//   - "loaded"
func RecordRows(job, kind string, n int) {
	if n <= 0 {
		return
	}
	current().IncCounter(RowsTotal, float64(n), Labels{
		"job":  job,
		"kind": kind,
	})
}
