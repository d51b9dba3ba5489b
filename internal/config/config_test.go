package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabetl/internal/etlerr"
)

// -----------------------------------------------------------------------------
// Config decoding tests
// -----------------------------------------------------------------------------
//
// These tests decode YAML strings directly to keep them hermetic; only the
// Load tests touch the filesystem.

func TestDecode_FullDocument(t *testing.T) {
	t.Setenv("TEST_S3_BUCKET", "from-env")

	const doc = `
paths:
  raw_data: data/raw.xlsx
  output_data: data/out.csv
logging:
  level: INFO
  format: "%(asctime)s - %(levelname)s - %(message)s"
  datefmt: "%Y-%m-%d %H:%M:%S"
transformations:
  - rename_columns:
      old_name: new_name
  - drop_columns: [tmp, scratch]
  - kind: normalize_text
    options:
      strip_accents: true
api:
  carts_url: https://fakestoreapi.com/carts
  products_url: https://fakestoreapi.com/products
  products:
    flatten: true
aws:
  s3_bucket: ${TEST_S3_BUCKET}
sinks:
  - kind: sqlite
    dsn: out.db
    table: merged
http:
  timeout: 15s
  max_retries: 0
metrics:
  backend: none
`
	c, err := Decode(strings.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t, "data/raw.xlsx", c.Paths.RawData)
	assert.Equal(t, "data/out.csv", c.Paths.OutputData)
	assert.Equal(t, "INFO", c.Logging.Level)
	assert.Equal(t, "%Y-%m-%d %H:%M:%S", c.Logging.DateFmt)

	require.Len(t, c.Transformations, 3)
	assert.Equal(t, "rename_columns", c.Transformations[0].Kind)
	assert.Equal(t, "new_name", c.Transformations[0].Options.String("old_name", ""))
	assert.Equal(t, "drop_columns", c.Transformations[1].Kind)
	assert.Equal(t, []string{"tmp", "scratch"}, c.Transformations[1].Options.StringSlice("columns"))
	assert.Equal(t, "normalize_text", c.Transformations[2].Kind)
	assert.True(t, c.Transformations[2].Options.Bool("strip_accents", false))

	assert.True(t, c.API.Products.Flatten)
	assert.Equal(t, "from-env", c.AWS.S3Bucket)
	assert.Equal(t, DefaultS3Key, c.AWS.S3Key)
	assert.Equal(t, 15*time.Second, time.Duration(c.HTTP.Timeout))

	require.Len(t, c.Sinks, 1)
	assert.Equal(t, "sqlite", c.Sinks[0].Kind)
	assert.Equal(t, "merged", c.Sinks[0].Table)

	// Defaults for the reference carts merge.
	assert.Equal(t, []string{"products"}, c.API.Carts.RecordPath)
	assert.Equal(t, []string{"id", "userId", "date"}, c.API.Carts.Meta)
	assert.Equal(t, "productId", c.Merge.LeftKey)
	assert.Equal(t, "id", c.Merge.RightKey)
	assert.Equal(t, "_cart", c.Merge.LeftSuffix)
	assert.Equal(t, "_product", c.Merge.RightSuffix)
}

// TestDecode_MappingTransformations covers the mapping shape, where
// document order defines application order.
func TestDecode_MappingTransformations(t *testing.T) {
	t.Parallel()

	const doc = `
transformations:
  rename_columns:
    a: b
  drop_columns: [c]
`
	c, err := Decode(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, c.Transformations, 2)
	assert.Equal(t, "rename_columns", c.Transformations[0].Kind)
	assert.Equal(t, "drop_columns", c.Transformations[1].Kind)

	m, err := c.Transformations[0].Options.StringMap()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "b"}, m)
}

func TestDecode_InvalidTransformations(t *testing.T) {
	t.Parallel()

	for name, doc := range map[string]string{
		"scalar":       "transformations: nope\n",
		"scalar item":  "transformations:\n  - nope\n",
		"two keys":     "transformations:\n  - rename_columns: {a: b}\n    drop_columns: [c]\n",
		"bad duration": "http:\n  timeout: soon\n",
	} {
		_, err := Decode(strings.NewReader(doc))
		assert.Error(t, err, name)
	}

	c, err := Decode(strings.NewReader("transformations:\n"))
	require.NoError(t, err)
	assert.Empty(t, c.Transformations)
}

func TestOptions_StringMapRejectsNested(t *testing.T) {
	t.Parallel()

	_, err := Options{"a": map[string]any{"b": "c"}}.StringMap()
	require.Error(t, err)

	m, err := Options{"a": "b", "n": 1}.StringMap()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "b", "n": "1"}, m)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	var ce *etlerr.ConfigError
	require.ErrorAs(t, err, &ce)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_MalformedYAML(t *testing.T) {
	t.Parallel()

	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte("paths: [unclosed\n"), 0o644))

	_, err := Load(p)
	var ce *etlerr.ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, p, ce.Path)
}

func TestLoadEnvFiles(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(p, []byte("TABETL_TEST_VAR=hello\n"), 0o644))
	t.Setenv("TABETL_TEST_VAR", "")
	require.NoError(t, os.Unsetenv("TABETL_TEST_VAR"))

	require.NoError(t, LoadEnvFiles(filepath.Join(dir, "absent.env"), p))
	assert.Equal(t, "hello", os.Getenv("TABETL_TEST_VAR"))
}
