package models

// OutcomeKind classifies the terminal result of a monitoring session.
type OutcomeKind string

const (
	OutcomeSucceeded OutcomeKind = "succeeded"
	OutcomeFailed    OutcomeKind = "failed"
	OutcomeTimedOut  OutcomeKind = "timed_out"
)

// String returns the string representation of the OutcomeKind
func (k OutcomeKind) String() string {
	return string(k)
}

// PollOutcome is the terminal result of one monitoring session, produced
// exactly once. Result is set only for succeeded outcomes; Reason only for
// failed ones. A timed-out session is distinct from a remote failure so
// callers can present different messaging.
type PollOutcome struct {
	Kind   OutcomeKind      `json:"kind"`
	Result *AnimationResult `json:"result,omitempty"`
	Reason string           `json:"reason,omitempty"`
}

// Succeeded builds a successful outcome carrying the job result.
func Succeeded(result *AnimationResult) PollOutcome {
	return PollOutcome{Kind: OutcomeSucceeded, Result: result}
}

// Failed builds a failed outcome with a human-readable reason.
func Failed(reason string) PollOutcome {
	return PollOutcome{Kind: OutcomeFailed, Reason: reason}
}

// TimedOut builds a timed-out outcome.
func TimedOut() PollOutcome {
	return PollOutcome{Kind: OutcomeTimedOut}
}
