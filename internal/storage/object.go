package storage

import (
	"context"
	"errors"
	"fmt"

	"tabetl/internal/dataset"
	"tabetl/internal/logging"
)

// Uploader puts one object into an object store. Implementations wrap a
// cloud SDK client; tests substitute fakes.
type Uploader interface {
	Upload(ctx context.Context, bucket, key string, a Artifact) error
	Close() error
}

// ObjectSink serializes a dataset in memory and uploads it as a single
// object. Nothing is staged on local disk.
type ObjectSink struct {
	Uploader Uploader
	Bucket   string
	Key      string
	Name     string // descriptor string used in logs
}

// CheckObject reports a missing bucket or key. Backends call it before
// building an SDK client.
func CheckObject(bucket, key string) error {
	if bucket == "" {
		return errors.New("bucket or container must not be empty")
	}
	if key == "" {
		return errors.New("object key must not be empty")
	}
	return nil
}

// NewObjectSink validates the bucket and key of d and wraps u.
func NewObjectSink(d Descriptor, bucket string, u Uploader) (*ObjectSink, error) {
	if err := CheckObject(bucket, d.Key); err != nil {
		return nil, err
	}
	return &ObjectSink{Uploader: u, Bucket: bucket, Key: d.Key, Name: d.String()}, nil
}

// Write implements Sink.
func (s *ObjectSink) Write(ctx context.Context, ds *dataset.Dataset) error {
	a, err := Encode(ds)
	if err != nil {
		return err
	}
	if err := s.Uploader.Upload(ctx, s.Bucket, s.Key, a); err != nil {
		return fmt.Errorf("upload: %w", err)
	}
	logging.FromContext(ctx).Info("object uploaded",
		"sink", s.Name, "rows", ds.NumRows(), "bytes", len(a.Body), "xxh3", a.Checksum)
	return nil
}

// Close implements Sink.
func (s *ObjectSink) Close() error { return s.Uploader.Close() }
