package operations

// State is the pipeline's position in its linear lifecycle:
// COUNTING → PARSING → COMPLETE, or FAILED from either of the first two.
type State int

const (
	StateIdle State = iota
	StateCounting
	StateParsing
	StateComplete
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateCounting:
		return "COUNTING"
	case StateParsing:
		return "PARSING"
	case StateComplete:
		return "COMPLETE"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// canTransition reports whether from → to is a legal move
func canTransition(from, to State) bool {
	switch to {
	case StateCounting:
		return from == StateIdle
	case StateParsing:
		return from == StateCounting
	case StateComplete:
		return from == StateParsing
	case StateFailed:
		return from == StateCounting || from == StateParsing
	default:
		return false
	}
}
