// Package datasource defines where raw bytes for extraction come from.
package datasource

import (
	"context"
	"fmt"
	"io"
)

// Source yields the raw bytes of one input. String identifies the source in
// logs and errors and must not contain credentials.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	String() string
}

// ReadAll opens src and reads it to the end. The datasets handled here are
// bounded and parsed in memory, so there is no streaming variant.
func ReadAll(ctx context.Context, src Source) ([]byte, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	b, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", src, err)
	}
	return b, nil
}
