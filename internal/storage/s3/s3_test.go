package s3

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabetl/internal/dataset"
	"tabetl/internal/storage"
)

type captured struct {
	method, path, contentType, checksum string
	body                                string
}

func TestSink_PutObjectAgainstCompatibleEndpoint(t *testing.T) {
	var (
		mu  sync.Mutex
		got captured
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		got = captured{
			method:      r.Method,
			path:        r.URL.Path,
			contentType: r.Header.Get("Content-Type"),
			checksum:    r.Header.Get("X-Amz-Meta-Xxh3"),
			body:        string(b),
		}
		mu.Unlock()
		w.Header().Set("ETag", `"abc"`)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d := storage.Descriptor{
		Kind:            "s3",
		Bucket:          "etl",
		Key:             "out/carts.csv",
		Region:          "eu-west-1",
		Endpoint:        srv.URL,
		UsePathStyle:    true,
		AccessKeyID:     "AKIDEXAMPLE",
		SecretAccessKey: "secret",
	}
	ds := dataset.MustFromRows([]string{"id", "title"}, [][]any{{int64(1), "Phone"}})
	require.NoError(t, storage.Load(context.Background(), ds, d))

	want, err := storage.Encode(ds)
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, http.MethodPut, got.method)
	assert.Equal(t, "/etl/out/carts.csv", got.path)
	assert.Equal(t, storage.ContentType, got.contentType)
	assert.Equal(t, want.Checksum, got.checksum)
	assert.True(t, strings.Contains(got.body, "id,title\n1,Phone\n"), "body: %q", got.body)
}

func TestSink_ServerErrorIsLoadError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `<?xml version="1.0"?><Error><Code>AccessDenied</Code><Message>denied</Message></Error>`)
	}))
	defer srv.Close()

	d := storage.Descriptor{
		Kind: "s3", Bucket: "etl", Key: "x.csv", Region: "us-east-1",
		Endpoint: srv.URL, UsePathStyle: true, AccessKeyID: "a", SecretAccessKey: "b",
	}
	err := storage.Load(context.Background(), dataset.MustFromRows([]string{"a"}, nil), d)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "s3://etl/x.csv")
}

func TestFactory_RequiresBucketAndKey(t *testing.T) {
	t.Parallel()

	_, err := storage.New(context.Background(), storage.Descriptor{Kind: "s3", Key: "k"})
	require.Error(t, err)
	_, err = storage.New(context.Background(), storage.Descriptor{Kind: "s3", Bucket: "b"})
	require.Error(t, err)
}
