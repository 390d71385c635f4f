package runner

// Outcome is the per-migration result of one pass through the apply loop.
type Outcome int

const (
	// OutcomeSkipped means the identity was already in the applied set;
	// the script was not read or executed.
	OutcomeSkipped Outcome = iota
	// OutcomeApplied means the script executed and its applied record committed.
	OutcomeApplied
	// OutcomeWouldApply means a dry run reported the migration as pending.
	OutcomeWouldApply
	// OutcomeFailed means the script's execution failed and was rolled back.
	// The loop halts on the first failure.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSkipped:
		return "skipped"
	case OutcomeApplied:
		return "applied"
	case OutcomeWouldApply:
		return "would-apply"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}
