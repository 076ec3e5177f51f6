package deployer

import "fmt"

// State is the lifecycle position of a single deployment attempt.
type State int

const (
	StateIdle State = iota
	StateResolving
	StateSubmitting
	StateAwaitingConfirmation
	StateConfirmed
	StateFailed
)

var stateNames = map[State]string{
	StateIdle:                 "idle",
	StateResolving:            "resolving",
	StateSubmitting:           "submitting",
	StateAwaitingConfirmation: "awaiting_confirmation",
	StateConfirmed:            "confirmed",
	StateFailed:               "failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == StateConfirmed || s == StateFailed
}

// attempt walks Idle → Resolving → Submitting → AwaitingConfirmation → Confirmed,
// or into Failed from any non-terminal state. Transitions only move forward.
type attempt struct {
	state   State
	history []State
}

func newAttempt() *attempt {
	return &attempt{state: StateIdle, history: []State{StateIdle}}
}

func (a *attempt) advance(next State) error {
	if a.state.Terminal() {
		return fmt.Errorf("deployment attempt already %s", a.state)
	}
	if next != StateFailed && next != a.state+1 {
		return fmt.Errorf("invalid transition %s -> %s", a.state, next)
	}

	a.state = next
	a.history = append(a.history, next)

	return nil
}

// fail moves the attempt to Failed and tags err with the stage it failed in.
func (a *attempt) fail(err error) error {
	stage := a.state
	if advanceErr := a.advance(StateFailed); advanceErr != nil {
		return advanceErr
	}
	return &StageError{Stage: stage, Err: err}
}
