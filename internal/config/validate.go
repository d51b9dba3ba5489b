// This file adds a lightweight linter/validator for Config values. It performs
// static checks over a decoded Config and returns a list of issues (errors and
// warnings) that callers can surface before any stage runs.

package config

import (
	"errors"
	"fmt"
	"strings"

	"tabetl/internal/etlerr"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a configuration warning that should be surfaced
	// to users but does not block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation/lint finding.
//
// Path is a dotted path into the config (e.g. "api.carts_url",
// "transformations[1].kind"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// knownTransforms lists kinds with a built-in implementation. Unknown kinds
// are only warnings here; the transform stage rejects them at run time.
var knownTransforms = map[string]struct{}{
	"rename_columns": {},
	"drop_columns":   {},
	"select_columns": {},
	"normalize_text": {},
	"coerce":         {},
}

var knownSinks = map[string]struct{}{
	"file":     {},
	"s3":       {},
	"gcs":      {},
	"azblob":   {},
	"sqlite":   {},
	"postgres": {},
	"mssql":    {},
}

// ValidateTransport lints a config for the spreadsheet → file pipeline.
func ValidateTransport(c *Config) []Issue {
	var issues []Issue
	issues = append(issues, required("paths.raw_data", c.Paths.RawData)...)
	issues = append(issues, required("paths.output_data", c.Paths.OutputData)...)
	issues = append(issues, validateCommon(c)...)
	return issues
}

// ValidateCarts lints a config for the carts + products → object store pipeline.
func ValidateCarts(c *Config) []Issue {
	var issues []Issue
	issues = append(issues, required("api.carts_url", c.API.CartsURL)...)
	issues = append(issues, required("api.products_url", c.API.ProductsURL)...)
	issues = append(issues, required("aws.s3_bucket", c.AWS.S3Bucket)...)

	if c.Merge.LeftSuffix == c.Merge.RightSuffix {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "merge.right_suffix",
			Message:  "left and right suffixes must differ so colliding columns stay distinguishable",
		})
	}
	if len(c.API.Carts.RecordPath) == 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "api.carts.record_path",
			Message:  "record_path must not be empty",
		})
	}
	switch strings.ToLower(c.API.Carts.MetaErrors) {
	case "", "raise", "ignore":
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "api.carts.meta_errors",
			Message:  fmt.Sprintf("meta_errors=%q; want raise or ignore", c.API.Carts.MetaErrors),
		})
	}
	if c.HTTP.MaxRetries < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "http.max_retries",
			Message:  "max_retries must not be negative",
		})
	}
	issues = append(issues, validateCommon(c)...)
	return issues
}

// Check folds the error-severity issues into a single *etlerr.ConfigError.
// It returns nil when there are only warnings.
func Check(path string, issues []Issue) error {
	var errs []error
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			errs = append(errs, iss)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return &etlerr.ConfigError{Path: path, Err: errors.Join(errs...)}
}

func required(path, v string) []Issue {
	if strings.TrimSpace(v) != "" {
		return nil
	}
	return []Issue{{
		Severity: SeverityError,
		Path:     path,
		Message:  "required key is missing or empty",
	}}
}

func validateCommon(c *Config) []Issue {
	var issues []Issue
	issues = append(issues, validateLogging(c.Logging)...)
	issues = append(issues, validateTransforms(c.Transformations)...)
	issues = append(issues, validateSinks(c.Sinks)...)
	issues = append(issues, validateMetrics(c.Metrics)...)
	return issues
}

func validateLogging(l Logging) []Issue {
	switch strings.ToLower(l.Level) {
	case "", "debug", "info", "warn", "warning", "error", "critical", "fatal":
		return nil
	}
	return []Issue{{
		Severity: SeverityError,
		Path:     "logging.level",
		Message:  fmt.Sprintf("unknown log level %q", l.Level),
	}}
}

func validateTransforms(ts Transformations) []Issue {
	var issues []Issue
	if len(ts) == 0 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "transformations",
			Message:  "no transformations configured; extracted data will be loaded as-is",
		})
		return issues
	}
	for i, t := range ts {
		path := fmt.Sprintf("transformations[%d].kind", i)
		if strings.TrimSpace(t.Kind) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path,
				Message:  "transformation kind must not be empty",
			})
			continue
		}
		if _, ok := knownTransforms[t.Kind]; !ok {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     path,
				Message:  fmt.Sprintf("unknown transformation kind %q; the transform stage will reject it", t.Kind),
			})
		}
	}
	return issues
}

func validateSinks(ss []Sink) []Issue {
	var issues []Issue
	for i, s := range ss {
		base := fmt.Sprintf("sinks[%d]", i)
		if _, ok := knownSinks[s.Kind]; !ok {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     base + ".kind",
				Message:  fmt.Sprintf("unknown sink kind %q", s.Kind),
			})
			continue
		}
		switch s.Kind {
		case "file":
			issues = append(issues, required(base+".path", s.Path)...)
		case "s3", "gcs":
			issues = append(issues, required(base+".bucket", s.Bucket)...)
			issues = append(issues, required(base+".key", s.Key)...)
		case "azblob":
			issues = append(issues, required(base+".container", s.Container)...)
			issues = append(issues, required(base+".key", s.Key)...)
			issues = append(issues, required(base+".connection_string", s.ConnectionString)...)
		case "sqlite", "postgres", "mssql":
			issues = append(issues, required(base+".dsn", s.DSN)...)
			issues = append(issues, required(base+".table", s.Table)...)
		}
	}
	return issues
}

func validateMetrics(m Metrics) []Issue {
	switch m.Backend {
	case "", "none":
	case "pushgateway":
		return required("metrics.pushgateway_url", m.PushgatewayURL)
	case "datadog":
		return required("metrics.datadog_addr", m.DatadogAddr)
	default:
		return []Issue{{
			Severity: SeverityWarning,
			Path:     "metrics.backend",
			Message:  fmt.Sprintf("unknown metrics backend %q; metrics disabled", m.Backend),
		}}
	}
	return nil
}
