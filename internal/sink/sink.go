// Package sink writes emitted batches: either one file per batch plus a
// manifest, or a single concatenated stream.
package sink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"posmigrate/internal/emit"
)

// ManifestName is the manifest file written by Dir.
const ManifestName = "manifest.json"

// batchGlob matches the batch files of any earlier run.
const batchGlob = "[0-9][0-9]_*_batch_*.sql"

// Sink receives batches in execution order.
type Sink interface {
	Write(ctx context.Context, b emit.Batch) error
	// Close finalizes the output. It is called once after the last batch.
	Close() error
}

// Manifest lists the batches of a run in execution order.
type Manifest struct {
	Job              string       `json:"job"`
	ExternalMappings []string     `json:"external_mappings,omitempty"`
	Expects          []string     `json:"expects,omitempty"`
	Batches          []emit.Batch `json:"batches"`
}

// Dir writes each batch to <dir>/<batch name> and the manifest on Close.
type Dir struct {
	dir      string
	manifest Manifest
}

// NewDir creates dir if needed and returns a Dir sink on it. Batch files and
// the manifest left by an earlier run are removed so that only this run's
// batches remain.
func NewDir(dir string, m Manifest) (*Dir, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("sink: create dir %s: %w", dir, err)
	}
	stale, err := filepath.Glob(filepath.Join(dir, batchGlob))
	if err != nil {
		return nil, fmt.Errorf("sink: list %s: %w", dir, err)
	}
	for _, p := range append(stale, filepath.Join(dir, ManifestName)) {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("sink: remove stale %s: %w", p, err)
		}
	}
	m.Batches = nil
	return &Dir{dir: dir, manifest: m}, nil
}

// Write stores one batch file.
func (d *Dir) Write(ctx context.Context, b emit.Batch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := filepath.Join(d.dir, b.Name)
	if err := os.WriteFile(path, []byte(b.SQL), 0o644); err != nil {
		return fmt.Errorf("sink: write %s: %w", path, err)
	}
	d.manifest.Batches = append(d.manifest.Batches, b)
	for _, x := range b.Expects {
		if !slices.Contains(d.manifest.Expects, x) {
			d.manifest.Expects = append(d.manifest.Expects, x)
		}
	}
	return nil
}

// Close writes the manifest.
func (d *Dir) Close() error {
	if d.manifest.Batches == nil {
		d.manifest.Batches = []emit.Batch{}
	}
	data, err := json.MarshalIndent(d.manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("sink: encode manifest: %w", err)
	}
	path := filepath.Join(d.dir, ManifestName)
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("sink: write %s: %w", path, err)
	}
	return nil
}

// Stream concatenates batches on w, each preceded by a name marker.
type Stream struct {
	w io.Writer
}

// NewStream returns a Stream sink on w.
func NewStream(w io.Writer) *Stream { return &Stream{w: w} }

// Write appends one batch.
func (s *Stream) Write(ctx context.Context, b emit.Batch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "-- >>> %s (checksum %s)\n%s\n", b.Name, b.Checksum, b.SQL); err != nil {
		return fmt.Errorf("sink: stream %s: %w", b.Name, err)
	}
	return nil
}

// Close is a no-op; the caller owns w.
func (s *Stream) Close() error { return nil }
