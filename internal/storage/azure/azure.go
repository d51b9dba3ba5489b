// Package azure implements the Azure Blob Storage object sink.
package azure

import (
	"context"
	"errors"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"

	"tabetl/internal/storage"
)

func init() {
	storage.Register("azblob", func(ctx context.Context, d storage.Descriptor) (storage.Sink, error) {
		if err := storage.CheckObject(d.Container, d.Key); err != nil {
			return nil, fmt.Errorf("azblob: %w", err)
		}
		u, err := NewUploader(d.ConnectionString, d.Endpoint)
		if err != nil {
			return nil, err
		}
		return storage.NewObjectSink(d, d.Container, u)
	})
}

// Uploader uploads artifacts as block blobs.
type Uploader struct {
	client *azblob.Client
}

// NewUploader builds a client from a storage account connection string, or
// from a service URL carrying a SAS token when no connection string is set.
func NewUploader(connectionString, serviceURL string) (*Uploader, error) {
	var (
		client *azblob.Client
		err    error
	)
	switch {
	case connectionString != "":
		client, err = azblob.NewClientFromConnectionString(connectionString, nil)
	case serviceURL != "":
		client, err = azblob.NewClientWithNoCredential(serviceURL, nil)
	default:
		return nil, errors.New("azblob: connection_string or endpoint is required")
	}
	if err != nil {
		return nil, fmt.Errorf("azblob: create client: %w", err)
	}
	return &Uploader{client: client}, nil
}

// Upload implements storage.Uploader.
func (u *Uploader) Upload(ctx context.Context, container, key string, a storage.Artifact) error {
	contentType := storage.ContentType
	checksum := a.Checksum
	_, err := u.client.UploadBuffer(ctx, container, key, a.Body, &azblob.UploadBufferOptions{
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: &contentType},
		Metadata:    map[string]*string{storage.ChecksumMetadataKey: &checksum},
	})
	if err != nil {
		return fmt.Errorf("azblob: upload %s/%s: %w", container, key, err)
	}
	return nil
}

// Close implements storage.Uploader.
func (u *Uploader) Close() error { return nil }
