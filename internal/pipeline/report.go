package pipeline

import (
	"time"

	"tabetl/internal/etlerr"
)

// Outcome is the tagged result of one stage execution.
type Outcome struct {
	Stage    etlerr.Stage
	Target   string // source, sink, merge keys or transformation list
	Rows     int
	Duration time.Duration
	Err      error
}

// OK reports whether the stage succeeded.
func (o Outcome) OK() bool { return o.Err == nil }

// Report collects the outcomes of one run in execution order. Stages after
// the first failure never run, so a failed report always ends with the
// failing outcome.
type Report struct {
	RunID    string
	Job      string
	Outcomes []Outcome
}

// Err returns the error of the failing stage, or nil when every stage
// succeeded.
func (r *Report) Err() error {
	for _, o := range r.Outcomes {
		if o.Err != nil {
			return o.Err
		}
	}
	return nil
}

// Failed reports whether any stage failed.
func (r *Report) Failed() bool { return r.Err() != nil }

// Last returns the most recent outcome for stage.
func (r *Report) Last(stage etlerr.Stage) (Outcome, bool) {
	for i := len(r.Outcomes) - 1; i >= 0; i-- {
		if r.Outcomes[i].Stage == stage {
			return r.Outcomes[i], true
		}
	}
	return Outcome{}, false
}
