package workflow

import (
	"reflect"
	"testing"
)

func TestState_IsTerminal(t *testing.T) {
	tests := []struct {
		state    State
		expected bool
	}{
		{StateSubmitted, false},
		{StateExamined, false},
		{StateRejected, false},
		{StateApproved, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			if got := tt.state.IsTerminal(); got != tt.expected {
				t.Errorf("State.IsTerminal() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestState_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		expected bool
	}{
		{"submitted", StateSubmitted, true},
		{"approved", StateApproved, true},
		{"lower case", State("approved"), false},
		{"invalid state", State("DRAFT"), false},
		{"empty state", State(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.expected {
				t.Errorf("State.IsValid() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestParseKind(t *testing.T) {
	if _, err := ParseKind("social_act"); err != nil {
		t.Errorf("ParseKind(social_act) error = %v", err)
	}
	if _, err := ParseKind("announcement"); err != ErrUnknownKind {
		t.Errorf("ParseKind(announcement) error = %v, want %v", err, ErrUnknownKind)
	}
}

func TestLegalTransitions_TableIsExact(t *testing.T) {
	want := map[State][]State{
		StateSubmitted: {StateExamined},
		StateExamined:  {StateApproved, StateRejected},
		StateApproved:  nil,
		StateRejected:  {StateSubmitted},
	}

	for _, kind := range Kinds() {
		for from, targets := range want {
			got := Machine{}.LegalTransitions(kind, from)
			if !reflect.DeepEqual(got, targets) {
				t.Errorf("%s: LegalTransitions(%s) = %v, want %v", kind, from, got, targets)
			}
		}
	}
}

func TestIsLegal_AllPairs(t *testing.T) {
	states := []State{StateSubmitted, StateExamined, StateApproved, StateRejected}
	legal := map[[2]State]bool{
		{StateSubmitted, StateExamined}: true,
		{StateExamined, StateApproved}:  true,
		{StateExamined, StateRejected}:  true,
		{StateRejected, StateSubmitted}: true,
	}

	for _, from := range states {
		for _, to := range states {
			want := legal[[2]State{from, to}]
			if got := IsLegal(from, to); got != want {
				t.Errorf("IsLegal(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestIsLegal_UnknownKind(t *testing.T) {
	if (Machine{}).IsLegal(Kind("dividend"), StateSubmitted, StateExamined) {
		t.Error("expected unknown kind to have no legal transitions")
	}
}

func TestActionFor(t *testing.T) {
	tests := []struct {
		target State
		want   Action
	}{
		{StateSubmitted, ActionSubmitted},
		{StateExamined, ActionExamined},
		{StateApproved, ActionApproved},
		{StateRejected, ActionRejected},
	}

	for _, tt := range tests {
		if got := ActionFor(tt.target); got != tt.want {
			t.Errorf("ActionFor(%s) = %s, want %s", tt.target, got, tt.want)
		}
	}
}
