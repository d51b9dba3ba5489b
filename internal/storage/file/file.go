// Package file implements the local CSV file sink.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"tabetl/internal/dataset"
	"tabetl/internal/logging"
	"tabetl/internal/storage"
)

func init() {
	storage.Register("file", func(_ context.Context, d storage.Descriptor) (storage.Sink, error) {
		return New(d.Path)
	})
}

// Sink writes a dataset as CSV to one path. The file is written next to the
// destination and renamed over it, so readers see either the previous file
// or the complete new one.
type Sink struct {
	path string
}

// New returns a Sink for path. The parent directory must already exist.
func New(path string) (*Sink, error) {
	if path == "" {
		return nil, errors.New("file: path must not be empty")
	}
	return &Sink{path: path}, nil
}

// Write implements storage.Sink.
func (s *Sink) Write(ctx context.Context, ds *dataset.Dataset) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	log := logging.FromContext(ctx)

	a, err := storage.Encode(ds)
	if err != nil {
		return err
	}

	switch st, err := os.Stat(s.path); {
	case err == nil && st.IsDir():
		return fmt.Errorf("file: %s is a directory", s.path)
	case err == nil:
		log.Warn("destination exists and will be replaced", "sink", "file:"+s.path)
	case !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("file: stat %s: %w", s.path, err)
	}

	dir, base := filepath.Split(s.path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return fmt.Errorf("file: create temp in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(a.Body); err != nil {
		return fmt.Errorf("file: write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("file: sync %s: %w", tmpName, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("file: chmod %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("file: close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("file: rename into %s: %w", s.path, err)
	}
	committed = true

	log.Info("file written", "sink", "file:"+s.path, "rows", ds.NumRows(), "bytes", len(a.Body), "xxh3", a.Checksum)
	return nil
}

// Close implements storage.Sink.
func (s *Sink) Close() error { return nil }
