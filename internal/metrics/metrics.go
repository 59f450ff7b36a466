// Package metrics records operational metrics of a migration run behind a
// backend-agnostic interface.
//
// The installed backend defaults to a no-op, so calls are always safe.
// Concrete systems live in subpackages (prompush, datadog).
package metrics

import "time"

// Metric names.
const (
	StepTotal           = "migrate_step_total"
	StepDurationSeconds = "migrate_step_duration_seconds"
	RecordsTotal        = "migrate_records_total"
	BatchesTotal        = "migrate_batches_total"
)

// Record kinds reported through RecordRows.
const (
	KindTuples    = "tuples"
	KindDecoded   = "decoded"
	KindSkipped   = "skipped"
	KindConflicts = "conflicts"
	KindEmitted   = "emitted"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a duration-style value.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics if the backend needs it.
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}
func (nopBackend) Flush() error                             { return nil }

var backend Backend = nopBackend{}

// SetBackend installs b. nil keeps the current backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordStep counts one execution of a pipeline step and its duration.
func RecordStep(job, step string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := Labels{"job": job, "step": step, "status": status}
	backend.IncCounter(StepTotal, 1, lbls)
	backend.ObserveHistogram(StepDurationSeconds, d.Seconds(), lbls)
}

// RecordRows adds delta records of kind for a legacy table or destination
// stage. Non-positive deltas are ignored.
func RecordRows(job, table, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter(RecordsTotal, float64(delta), Labels{"job": job, "table": table, "kind": kind})
}

// RecordBatches adds delta emitted batches for stage.
func RecordBatches(job, stage string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter(BatchesTotal, float64(delta), Labels{"job": job, "stage": stage})
}
