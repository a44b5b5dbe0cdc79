package intent

// State is a position in the per-action state machine:
//
//	Idle → Building → AwaitingSponsorship → Submitted → Settled
//	Idle → Building → … → Failed(stage)
type State int

const (
	Idle State = iota
	Building
	AwaitingSponsorship
	Submitted
	Settled
	Failed
)

var stateNames = [...]string{
	Idle:                "idle",
	Building:            "building",
	AwaitingSponsorship: "awaiting-sponsorship",
	Submitted:           "submitted",
	Settled:             "settled",
	Failed:              "failed",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// Terminal reports whether no further transitions can follow s.
func (s State) Terminal() bool { return s == Settled || s == Failed }

// Transition is reported to a state hook on every state change.
// Stage is set only when To is Failed.
type Transition struct {
	ActionID string
	Kind     ActionKind
	From     State
	To       State
	Stage    Stage
}
