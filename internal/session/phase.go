package session

// Phase is the lifecycle stage of a session.
type Phase int

const (
	PhaseCheckingPrior   Phase = iota // Looking up an earlier submission
	PhaseLockedFromPrior              // An earlier submission exists; read-only
	PhaseInProgress                   // Accepting answers
	PhaseCompleted                    // All activities answered, not yet submitted
	PhaseSubmitting                   // Submit call in flight
	PhaseSubmitted                    // Backend confirmed the result
	PhaseSubmitFailed                 // Submit failed; still locked
)

func (p Phase) String() string {
	switch p {
	case PhaseCheckingPrior:
		return "checking_prior_submission"
	case PhaseLockedFromPrior:
		return "locked_from_prior"
	case PhaseInProgress:
		return "in_progress"
	case PhaseCompleted:
		return "completed"
	case PhaseSubmitting:
		return "submitting"
	case PhaseSubmitted:
		return "submitted"
	case PhaseSubmitFailed:
		return "submit_failed_but_locked"
	default:
		return "unknown"
	}
}

// Label is the text shown to the learner for the phase.
func (p Phase) Label() string {
	switch p {
	case PhaseCheckingPrior:
		return "Checking for earlier attempts..."
	case PhaseLockedFromPrior:
		return "Already completed"
	case PhaseInProgress:
		return "In progress"
	case PhaseCompleted:
		return "Completed"
	case PhaseSubmitting:
		return "Saving results..."
	case PhaseSubmitted:
		return "Completed and saved"
	case PhaseSubmitFailed:
		return "Completed but not confirmed - contact support"
	default:
		return "Unknown"
	}
}

// Locked reports whether the phase refuses new answers for good.
func (p Phase) Locked() bool {
	return p != PhaseCheckingPrior && p != PhaseInProgress
}

// Terminal reports whether the phase will not change again.
func (p Phase) Terminal() bool {
	return p == PhaseLockedFromPrior || p == PhaseSubmitted || p == PhaseSubmitFailed
}
