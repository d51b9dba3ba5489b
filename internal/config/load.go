package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"tabetl/internal/etlerr"
)

// Load reads and decodes the YAML config at path. ${VAR} references are
// expanded from the process environment before decoding. Any failure is
// returned as *etlerr.ConfigError.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, &etlerr.ConfigError{Path: path, Err: err}
	}
	c, err := Decode(bytes.NewReader(b))
	if err != nil {
		return nil, &etlerr.ConfigError{Path: path, Err: err}
	}
	return c, nil
}

// Decode decodes a YAML config document from r and applies defaults.
func Decode(r io.Reader) (*Config, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	expanded := os.ExpandEnv(string(raw))

	var c Config
	if err := yaml.Unmarshal([]byte(expanded), &c); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	c.applyDefaults()
	return &c, nil
}

// LoadEnvFiles loads KEY=VALUE pairs from the given dotenv files into the
// process environment without overriding variables that are already set.
// Missing files are skipped.
func LoadEnvFiles(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return &etlerr.ConfigError{Path: p, Err: err}
		}
	}
	return nil
}
