package runner

import (
	"time"

	"github.com/srs-assistant/migrate/internal/catalog"
)

// Result is the outcome of a single migration within a run.
type Result struct {
	Migration catalog.Migration
	Outcome   Outcome
	Duration  time.Duration
	Err       error
}

// Report aggregates a full run. Failed is 0 or 1 because the loop halts on
// the first failure; FailedID and Err identify the failing migration if any.
type Report struct {
	Discovered     int
	AlreadyApplied int
	Applied        int
	WouldApply     int
	Failed         int
	FailedID       string
	Err            error
}

// Ok reports whether the run completed without a migration failure.
func (r Report) Ok() bool {
	return r.Failed == 0
}

func (r *Report) record(res Result) {
	switch res.Outcome {
	case OutcomeSkipped:
		r.AlreadyApplied++
	case OutcomeApplied:
		r.Applied++
	case OutcomeWouldApply:
		r.WouldApply++
	case OutcomeFailed:
		r.Failed++
		r.FailedID = res.Migration.ID
		r.Err = res.Err
	}
}
