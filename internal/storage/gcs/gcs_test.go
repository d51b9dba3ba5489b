package gcs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"tabetl/internal/storage"
)

func TestFactory_RequiresBucketAndKey(t *testing.T) {
	t.Parallel()

	_, err := storage.New(context.Background(), storage.Descriptor{Kind: "gcs", Key: "k"})
	require.ErrorContains(t, err, "bucket")
	_, err = storage.New(context.Background(), storage.Descriptor{Kind: "gcs", Bucket: "b"})
	require.ErrorContains(t, err, "key")
}

func TestNewUploader_MissingCredentialsFile(t *testing.T) {
	t.Parallel()

	_, err := NewUploader(context.Background(), "/nonexistent/service-account.json")
	require.Error(t, err)
}
