// Package file implements a local filesystem-backed dump source.
package file

import (
	"context"
	"fmt"
	"io"
	"os"
)

// Local opens a dump from the local disk.
type Local struct{ path string }

// NewLocal returns a Local source bound to path.
func NewLocal(path string) *Local { return &Local{path: path} }

// Path returns the configured path.
func (l *Local) Path() string { return l.path }

// Open opens the configured path for reading. A canceled ctx returns its
// error without touching the filesystem. Filesystem errors already name the
// op and path; they are wrapped once and keep errors.Is working.
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("file: %w", err)
	}
	return f, nil
}
