// Package skiplog writes a CSV report of legacy rows that did not migrate:
// tuples the decoders dropped and owners left unresolved by reconciliation.
package skiplog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
)

// ReasonConflict marks an owner whose every candidate value was taken.
const ReasonConflict = "conflict"

// Header is the first row of every report.
var Header = []string{"reason", "table", "key", "detail"}

// Recorder counts skipped rows by reason and writes one CSV row per skip.
// It satisfies legacy.SkipRecorder.
type Recorder struct {
	reasons map[string]int
	w       *csv.Writer
	err     error
}

// New returns a Recorder writing to w. The header is written immediately.
func New(w io.Writer) *Recorder {
	r := &Recorder{reasons: make(map[string]int), w: csv.NewWriter(w)}
	r.write(Header)
	return r
}

// Create opens path for writing, creating parent directories, and returns a
// Recorder on it. closeFn flushes and closes the file and reports the first
// write error.
func Create(path string) (rec *Recorder, closeFn func() error, err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("skiplog: create dir %s: %w", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("skiplog: open %s: %w", path, err)
	}
	rec = New(f)
	return rec, func() error {
		ferr := rec.Flush()
		if cerr := f.Close(); ferr == nil && cerr != nil {
			ferr = fmt.Errorf("skiplog: close %s: %w", path, cerr)
		}
		return ferr
	}, nil
}

// Skip records one dropped tuple.
func (r *Recorder) Skip(table, reason, key, detail string) {
	r.reasons[reason]++
	r.write([]string{reason, table, key, detail})
}

// Conflict records one unresolved reconciliation owner.
func (r *Recorder) Conflict(table, key, detail string) {
	r.Skip(table, ReasonConflict, key, detail)
}

// Counts returns the number of records per reason.
func (r *Recorder) Counts() map[string]int {
	out := make(map[string]int, len(r.reasons))
	for k, v := range r.reasons {
		out[k] = v
	}
	return out
}

// Total is the number of recorded rows.
func (r *Recorder) Total() int {
	n := 0
	for _, v := range r.reasons {
		n += v
	}
	return n
}

// Reasons returns the recorded reasons sorted by name.
func (r *Recorder) Reasons() []string {
	out := make([]string, 0, len(r.reasons))
	for k := range r.reasons {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Flush writes buffered rows and returns the first error seen.
func (r *Recorder) Flush() error {
	r.w.Flush()
	if r.err == nil {
		r.err = r.w.Error()
	}
	return r.err
}

func (r *Recorder) write(row []string) {
	if err := r.w.Write(row); err != nil && r.err == nil {
		r.err = fmt.Errorf("skiplog: write: %w", err)
	}
}
