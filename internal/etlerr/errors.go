// Package etlerr defines the error taxonomy shared by all pipeline stages.
//
// Every stage error carries the Stage it came from, the identifier of the
// source or sink involved, and the underlying cause. All types implement
// Unwrap so callers can still use errors.Is / errors.As on the cause.
package etlerr

import (
	"errors"
	"fmt"
)

// Stage identifies where in the pipeline an error or event occurred.
type Stage string

const (
	StageConfig    Stage = "config"
	StageExtract   Stage = "extract"
	StageMerge     Stage = "merge"
	StageTransform Stage = "transform"
	StageLoad      Stage = "load"
)

// ConfigError reports missing or invalid configuration. It is fatal and
// pre-empts every other stage.
type ConfigError struct {
	Path string // config file path, may be empty
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("config: %v", e.Err)
	}
	return fmt.Sprintf("config %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Stage implements Staged.
func (e *ConfigError) Stage() Stage { return StageConfig }

// ExtractionError reports a source that could not be read or parsed.
type ExtractionError struct {
	Source string
	Err    error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Source, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Stage implements Staged.
func (e *ExtractionError) Stage() Stage { return StageExtract }

// TransformationError reports a transformation that could not be built or
// applied. Kind names the offending transformation kind.
type TransformationError struct {
	Kind string
	Err  error
}

func (e *TransformationError) Error() string {
	return fmt.Sprintf("transform %s: %v", e.Kind, e.Err)
}

func (e *TransformationError) Unwrap() error { return e.Err }

// Stage implements Staged.
func (e *TransformationError) Stage() Stage { return StageTransform }

// MergeError reports a join that could not be performed (missing key column,
// ambiguous suffixes, column name clashes).
type MergeError struct {
	Keys string
	Err  error
}

func (e *MergeError) Error() string {
	return fmt.Sprintf("merge on %s: %v", e.Keys, e.Err)
}

func (e *MergeError) Unwrap() error { return e.Err }

// Stage implements Staged.
func (e *MergeError) Stage() Stage { return StageMerge }

// LoadError reports a sink that could not be written.
type LoadError struct {
	Sink string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Sink, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Stage implements Staged.
func (e *LoadError) Stage() Stage { return StageLoad }

// Staged is implemented by every error type in this package.
type Staged interface {
	error
	Stage() Stage
}

// StageOf returns the stage recorded in err's chain, or "" when err carries
// no stage information.
func StageOf(err error) Stage {
	var s Staged
	if errors.As(err, &s) {
		return s.Stage()
	}
	return ""
}

// ErrUnknownKind is wrapped by TransformationError when a transformation kind
// has no registered implementation.
var ErrUnknownKind = errors.New("unrecognized transformation kind")
