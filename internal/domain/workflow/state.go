package workflow

// State is the approval state of a registry record
type State string

const (
	StateSubmitted State = "SUBMITTED"
	StateExamined  State = "EXAMINED"
	StateApproved  State = "APPROVED"
	StateRejected  State = "REJECTED"
)

var validStates = map[State]bool{
	StateSubmitted: true,
	StateExamined:  true,
	StateApproved:  true,
	StateRejected:  true,
}

// IsTerminal returns true if no transition leaves the state
func (s State) IsTerminal() bool {
	return len(LegalTransitions(s)) == 0
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}

// IsValid returns true if the state is one of the four workflow states
func (s State) IsValid() bool {
	return validStates[s]
}

// ParseState converts user input into a State
func ParseState(s string) (State, error) {
	st := State(s)
	if !st.IsValid() {
		return "", ErrInvalidState
	}
	return st, nil
}
