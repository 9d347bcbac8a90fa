package workflow

// Edge is one permitted move between two states
type Edge struct {
	From   State
	To     State
	Action Action
}

// edges is the complete transition table, shared by every kind.
// APPROVED has no outgoing edge.
var edges = [...]Edge{
	{From: StateSubmitted, To: StateExamined, Action: ActionExamined},
	{From: StateExamined, To: StateApproved, Action: ActionApproved},
	{From: StateExamined, To: StateRejected, Action: ActionRejected},
	{From: StateRejected, To: StateSubmitted, Action: ActionSubmitted},
}

// LegalTransitions returns the states reachable from current in one step
func LegalTransitions(current State) []State {
	var out []State
	for _, e := range edges {
		if e.From == current {
			out = append(out, e.To)
		}
	}
	return out
}

// IsLegal reports whether from -> to is in the table
func IsLegal(from, to State) bool {
	_, ok := Lookup(from, to)
	return ok
}

// Lookup returns the edge from -> to if it exists
func Lookup(from, to State) (Edge, bool) {
	for _, e := range edges {
		if e.From == from && e.To == to {
			return e, true
		}
	}
	return Edge{}, false
}

// Machine answers transition queries for a record kind. Every kind uses
// the same table.
type Machine struct{}

// LegalTransitions returns the targets reachable from current for the kind
func (Machine) LegalTransitions(kind Kind, current State) []State {
	if !kind.IsValid() {
		return nil
	}
	return LegalTransitions(current)
}

// IsLegal reports whether the kind may move from -> to
func (Machine) IsLegal(kind Kind, from, to State) bool {
	return kind.IsValid() && IsLegal(from, to)
}
