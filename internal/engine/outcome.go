package engine

import "github.com/looperdev/looper/internal/state"

// Kind tags the outcome of one stop decision.
type Kind int

const (
	// Continue forces another working turn with the work prompt.
	Continue Kind = iota
	// EnterVerification forces a self-review turn after the agent first
	// claimed completion.
	EnterVerification
	// Exhausted ends the loop because the iteration budget ran out.
	Exhausted
	// Verified ends the loop because the review confirmed completion.
	Verified
)

// String returns the lowercase tag name, used in history records.
func (k Kind) String() string {
	switch k {
	case Continue:
		return "continue"
	case EnterVerification:
		return "verification"
	case Exhausted:
		return "exhausted"
	case Verified:
		return "verified"
	}
	return "unknown"
}

// Outcome is the result of deciding one stop event. The decision itself
// is pure; the caller performs the persistence side effect it implies:
// save Next for non-terminal outcomes, delete the record for terminal
// ones.
type Outcome struct {
	Kind   Kind
	Reason string      // prompt or end-of-loop message re-shown to the agent
	Next   state.State // next persisted state; meaningful only when !Terminal()
}

// Terminal reports whether the loop is over after this outcome.
func (o Outcome) Terminal() bool {
	return o.Kind == Exhausted || o.Kind == Verified
}
