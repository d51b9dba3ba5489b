// Package gcs implements the Google Cloud Storage object sink.
package gcs

import (
	"context"
	"fmt"

	gcstorage "cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"tabetl/internal/storage"
)

func init() {
	storage.Register("gcs", func(ctx context.Context, d storage.Descriptor) (storage.Sink, error) {
		if err := storage.CheckObject(d.Bucket, d.Key); err != nil {
			return nil, fmt.Errorf("gcs: %w", err)
		}
		u, err := NewUploader(ctx, d.CredentialsFile)
		if err != nil {
			return nil, err
		}
		return storage.NewObjectSink(d, d.Bucket, u)
	})
}

// Uploader writes artifacts through an object Writer.
type Uploader struct {
	client *gcstorage.Client
}

// NewUploader creates a client authenticated with the service account key
// in credentialsFile, or with application default credentials when it is
// empty.
func NewUploader(ctx context.Context, credentialsFile string) (*Uploader, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithAuthCredentialsFile(option.ServiceAccount, credentialsFile))
	}
	client, err := gcstorage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gcs: create client: %w", err)
	}
	return &Uploader{client: client}, nil
}

// Upload implements storage.Uploader.
func (u *Uploader) Upload(ctx context.Context, bucket, key string, a storage.Artifact) error {
	w := u.client.Bucket(bucket).Object(key).NewWriter(ctx)
	w.ContentType = storage.ContentType
	w.Metadata = map[string]string{storage.ChecksumMetadataKey: a.Checksum}

	if _, err := w.Write(a.Body); err != nil {
		_ = w.Close()
		return fmt.Errorf("gcs: write gs://%s/%s: %w", bucket, key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("gcs: finalize gs://%s/%s: %w", bucket, key, err)
	}
	return nil
}

// Close implements storage.Uploader.
func (u *Uploader) Close() error { return u.client.Close() }
