// Package config defines the configuration model for the ETL entry points.
//
// A Config is decoded once from a YAML document at process start and then
// passed explicitly into every stage; nothing in this module reads
// configuration from package-level state.
//
// Example (trimmed):
//
//	paths:
//	  raw_data: data/transport.xlsx
//	  output_data: data/transport_clean.csv
//	logging:
//	  level: info
//	  format: "%(asctime)s - %(levelname)s - %(message)s"
//	  datefmt: "%Y-%m-%d %H:%M:%S"
//	transformations:
//	  - rename_columns: { old_name: new_name }
//	api:
//	  carts_url: https://fakestoreapi.com/carts
//	  products_url: https://fakestoreapi.com/products
//	aws:
//	  s3_bucket: my-bucket
package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultS3Key is the object key used when aws.s3_key is not configured.
const DefaultS3Key = "raw_data/merged_data.csv"

// Config is the top-level document.
type Config struct {
	Paths           Paths           `yaml:"paths"`
	Logging         Logging         `yaml:"logging"`
	Transformations Transformations `yaml:"transformations"`
	API             API             `yaml:"api"`
	Merge           Merge           `yaml:"merge"`
	AWS             AWS             `yaml:"aws"`
	Sinks           []Sink          `yaml:"sinks"`
	HTTP            HTTP            `yaml:"http"`
	Metrics         Metrics         `yaml:"metrics"`
}

// Paths holds local input and output locations.
type Paths struct {
	RawData    string `yaml:"raw_data"`
	OutputData string `yaml:"output_data"`
}

// Logging holds the level, format and datefmt keys of older config files.
type Logging struct {
	Level   string `yaml:"level"`
	Format  string `yaml:"format"`
	DateFmt string `yaml:"datefmt"`
}

// API configures the two HTTP sources of the carts pipeline.
type API struct {
	CartsURL    string      `yaml:"carts_url"`
	ProductsURL string      `yaml:"products_url"`
	Carts       RecordPath  `yaml:"carts"`
	Products    FlatRecords `yaml:"products"`
}

// RecordPath configures nested-record expansion of a JSON response.
type RecordPath struct {
	// RecordPath is the key path of the array to expand into rows.
	RecordPath []string `yaml:"record_path"`
	// Meta lists sibling fields (dotted paths allowed) repeated onto each row.
	Meta         []string `yaml:"meta"`
	MetaPrefix   string   `yaml:"meta_prefix"`
	RecordPrefix string   `yaml:"record_prefix"`
	// MetaErrors is "raise" (default) or "ignore".
	MetaErrors string `yaml:"meta_errors"`
}

// FlatRecords configures extraction of a JSON array of objects.
type FlatRecords struct {
	// Flatten expands nested objects into dotted column names.
	Flatten bool `yaml:"flatten"`
}

// Merge configures the join of carts and products.
type Merge struct {
	LeftKey      string `yaml:"left_key"`
	RightKey     string `yaml:"right_key"`
	LeftSuffix   string `yaml:"left_suffix"`
	RightSuffix  string `yaml:"right_suffix"`
	KeepRightKey bool   `yaml:"keep_right_key"`
}

// AWS holds the S3 sink settings. Credentials are optional; when empty the
// SDK default chain (environment, shared config, instance role) is used.
type AWS struct {
	S3Bucket        string `yaml:"s3_bucket"`
	S3Key           string `yaml:"s3_key"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	UsePathStyle    bool   `yaml:"use_path_style"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

// Sink is an additional sink descriptor. Kind selects the backend; the other
// fields are interpreted by that backend.
type Sink struct {
	Kind             string `yaml:"kind"`
	Path             string `yaml:"path"`
	Bucket           string `yaml:"bucket"`
	Key              string `yaml:"key"`
	Container        string `yaml:"container"`
	DSN              string `yaml:"dsn"`
	Table            string `yaml:"table"`
	Region           string `yaml:"region"`
	Endpoint         string `yaml:"endpoint"`
	UsePathStyle     bool   `yaml:"use_path_style"`
	CredentialsFile  string `yaml:"credentials_file"`
	ConnectionString string `yaml:"connection_string"`
}

// HTTP configures the API client.
type HTTP struct {
	Timeout    Duration          `yaml:"timeout"`
	MaxRetries int               `yaml:"max_retries"`
	Headers    map[string]string `yaml:"headers"`
}

// Metrics selects an optional metrics backend.
type Metrics struct {
	Backend        string `yaml:"backend"`
	PushgatewayURL string `yaml:"pushgateway_url"`
	DatadogAddr    string `yaml:"datadog_addr"`
	Job            string `yaml:"job"`
}

// Duration decodes YAML strings such as "30s" into a time.Duration.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(n *yaml.Node) error {
	var s string
	if err := n.Decode(&s); err != nil {
		return err
	}
	if s == "" {
		*d = 0
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("line %d: invalid duration %q: %w", n.Line, s, err)
	}
	*d = Duration(v)
	return nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// applyDefaults fills zero values that have a documented default.
func (c *Config) applyDefaults() {
	if c.AWS.S3Key == "" {
		c.AWS.S3Key = DefaultS3Key
	}
	if len(c.API.Carts.RecordPath) == 0 {
		c.API.Carts.RecordPath = []string{"products"}
	}
	if c.API.Carts.Meta == nil {
		c.API.Carts.Meta = []string{"id", "userId", "date"}
	}
	if c.Merge.LeftKey == "" {
		c.Merge.LeftKey = "productId"
	}
	if c.Merge.RightKey == "" {
		c.Merge.RightKey = "id"
	}
	if c.Merge.LeftSuffix == "" {
		c.Merge.LeftSuffix = "_cart"
	}
	if c.Merge.RightSuffix == "" {
		c.Merge.RightSuffix = "_product"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}
