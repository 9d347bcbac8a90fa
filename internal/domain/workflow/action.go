package workflow

// Action is the audit label recorded for a transition
type Action string

const (
	ActionSubmitted Action = "submitted"
	ActionExamined  Action = "examined"
	ActionApproved  Action = "approved"
	ActionRejected  Action = "rejected"
)

// String returns the string representation of the action
func (a Action) String() string {
	return string(a)
}

// ActionFor returns the action recorded when a record enters the target state
func ActionFor(target State) Action {
	switch target {
	case StateSubmitted:
		return ActionSubmitted
	case StateExamined:
		return ActionExamined
	case StateApproved:
		return ActionApproved
	case StateRejected:
		return ActionRejected
	default:
		return Action(string(target))
	}
}
