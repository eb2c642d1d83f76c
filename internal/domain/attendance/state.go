package attendance

import (
	"strings"
	"time"
)

// State is derived from which instants are present; it is never stored.
type State int

const (
	StateNotStarted State = iota
	StateWorking
	StateOnBreak
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateWorking:
		return "working"
	case StateOnBreak:
		return "on_break"
	case StateFinished:
		return "finished"
	default:
		return "not_started"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// DeriveState is the one place that maps field presence to a state.
func DeriveState(t Times) State {
	switch {
	case t.ClockIn == nil:
		return StateNotStarted
	case t.ClockOut != nil:
		return StateFinished
	case t.BreakStart != nil && t.BreakEnd == nil:
		return StateOnBreak
	default:
		return StateWorking
	}
}

type Action string

const (
	ActionClockIn    Action = "clock_in"
	ActionClockOut   Action = "clock_out"
	ActionBreakStart Action = "break_start"
	ActionBreakEnd   Action = "break_end"
)

var actions = []Action{ActionClockIn, ActionClockOut, ActionBreakStart, ActionBreakEnd}

func ParseAction(s string) (Action, bool) {
	a := Action(strings.TrimSpace(strings.ToLower(s)))
	for _, known := range actions {
		if a == known {
			return a, true
		}
	}
	return "", false
}

// Rejection reasons shown to the user as-is.
const (
	ReasonAlreadyClockedIn  = "already clocked in"
	ReasonNotClockedIn      = "not clocked in"
	ReasonAlreadyClockedOut = "already clocked out"
	ReasonAlreadyOnBreak    = "already on break"
	ReasonNoBreakInProgress = "no break in progress"
	ReasonBreakAlreadyEnded = "break already ended"
	ReasonBreakInProgress   = "break in progress"
)

// TransitionError is returned when an action is illegal in the current state.
type TransitionError struct {
	Action Action
	Reason string
}

func (e *TransitionError) Error() string {
	return e.Reason
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

func reject(action Action, reason string) error {
	return &TransitionError{Action: action, Reason: reason}
}

// Transition applies action at now and returns the new instants. The input
// is never modified; on rejection the returned Times equal the input.
func Transition(t Times, action Action, now time.Time) (Times, error) {
	state := DeriveState(t)

	switch action {
	case ActionClockIn:
		if t.ClockIn != nil {
			return t, reject(action, ReasonAlreadyClockedIn)
		}
		t.ClockIn = &now

	case ActionClockOut:
		switch state {
		case StateNotStarted:
			return t, reject(action, ReasonNotClockedIn)
		case StateFinished:
			return t, reject(action, ReasonAlreadyClockedOut)
		case StateOnBreak:
			return t, reject(action, ReasonBreakInProgress)
		}
		t.ClockOut = &now

	case ActionBreakStart:
		switch state {
		case StateNotStarted:
			return t, reject(action, ReasonNotClockedIn)
		case StateFinished:
			return t, reject(action, ReasonAlreadyClockedOut)
		case StateOnBreak:
			return t, reject(action, ReasonAlreadyOnBreak)
		}
		t.BreakStart = &now
		t.BreakEnd = nil

	case ActionBreakEnd:
		switch {
		case state == StateFinished:
			return t, reject(action, ReasonAlreadyClockedOut)
		case t.BreakStart == nil:
			return t, reject(action, ReasonNoBreakInProgress)
		case t.BreakEnd != nil:
			return t, reject(action, ReasonBreakAlreadyEnded)
		}
		t.BreakEnd = &now

	default:
		return t, ErrUnknownAction
	}

	return t, nil
}

// AllowedActions lists the actions Transition would accept for t.
func AllowedActions(t Times) []Action {
	allowed := make([]Action, 0, 2)
	for _, a := range actions {
		if _, err := Transition(t, a, time.Time{}); err == nil {
			allowed = append(allowed, a)
		}
	}
	return allowed
}
