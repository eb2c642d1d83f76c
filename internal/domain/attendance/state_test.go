package attendance

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

func at(hour, minute int) *time.Time {
	t := day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
	return &t
}

func TestDeriveState(t *testing.T) {
	tests := []struct {
		name  string
		times Times
		want  State
	}{
		{"empty", Times{}, StateNotStarted},
		{"clocked in", Times{ClockIn: at(9, 0)}, StateWorking},
		{"on break", Times{ClockIn: at(9, 0), BreakStart: at(12, 0)}, StateOnBreak},
		{"break closed", Times{ClockIn: at(9, 0), BreakStart: at(12, 0), BreakEnd: at(12, 30)}, StateWorking},
		{"finished", Times{ClockIn: at(9, 0), ClockOut: at(18, 0)}, StateFinished},
		{"finished with open break", Times{ClockIn: at(9, 0), BreakStart: at(12, 0), ClockOut: at(18, 0)}, StateFinished},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveState(tt.times))
		})
	}
}

func TestTransition_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		times  Times
		action Action
		reason string
	}{
		{"double clock in", Times{ClockIn: at(9, 0)}, ActionClockIn, ReasonAlreadyClockedIn},
		{"clock in after clock out", Times{ClockIn: at(9, 0), ClockOut: at(18, 0)}, ActionClockIn, ReasonAlreadyClockedIn},
		{"clock out before clock in", Times{}, ActionClockOut, ReasonNotClockedIn},
		{"double clock out", Times{ClockIn: at(9, 0), ClockOut: at(18, 0)}, ActionClockOut, ReasonAlreadyClockedOut},
		{"clock out on break", Times{ClockIn: at(9, 0), BreakStart: at(12, 0)}, ActionClockOut, ReasonBreakInProgress},
		{"break before clock in", Times{}, ActionBreakStart, ReasonNotClockedIn},
		{"double break start", Times{ClockIn: at(9, 0), BreakStart: at(12, 0)}, ActionBreakStart, ReasonAlreadyOnBreak},
		{"break after clock out", Times{ClockIn: at(9, 0), ClockOut: at(18, 0)}, ActionBreakStart, ReasonAlreadyClockedOut},
		{"break end before start", Times{ClockIn: at(9, 0)}, ActionBreakEnd, ReasonNoBreakInProgress},
		{"break end on empty record", Times{}, ActionBreakEnd, ReasonNoBreakInProgress},
		{"double break end", Times{ClockIn: at(9, 0), BreakStart: at(12, 0), BreakEnd: at(12, 30)}, ActionBreakEnd, ReasonBreakAlreadyEnded},
		{"break end after clock out", Times{ClockIn: at(9, 0), BreakStart: at(12, 0), ClockOut: at(18, 0)}, ActionBreakEnd, ReasonAlreadyClockedOut},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Transition(tt.times, tt.action, *at(19, 0))

			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidTransition))
			var te *TransitionError
			require.True(t, errors.As(err, &te))
			assert.Equal(t, tt.reason, te.Reason)
			assert.Equal(t, tt.action, te.Action)
			assert.True(t, got.Equal(tt.times), "rejected transition must not change the record")
		})
	}
}

func TestTransition_FullDay(t *testing.T) {
	var times Times
	steps := []struct {
		action Action
		at     *time.Time
		state  State
	}{
		{ActionClockIn, at(9, 0), StateWorking},
		{ActionBreakStart, at(12, 0), StateOnBreak},
		{ActionBreakEnd, at(12, 30), StateWorking},
		{ActionClockOut, at(18, 0), StateFinished},
	}

	for _, step := range steps {
		next, err := Transition(times, step.action, *step.at)
		require.NoError(t, err, "action %s", step.action)
		assert.Equal(t, step.state, DeriveState(next))
		times = next
	}

	minutes, ok := WorkedMinutes(times)
	require.True(t, ok)
	assert.Equal(t, 510, minutes)
	assert.Equal(t, "8:30", FormatWorked(times))
}

func TestTransition_RepeatedBreaksKeepLatest(t *testing.T) {
	times := Times{ClockIn: at(9, 0), BreakStart: at(10, 0), BreakEnd: at(10, 15)}

	next, err := Transition(times, ActionBreakStart, *at(12, 0))
	require.NoError(t, err)
	assert.Nil(t, next.BreakEnd)
	assert.True(t, next.BreakStart.Equal(*at(12, 0)))

	// The input is untouched.
	assert.NotNil(t, times.BreakEnd)
}

func TestTransition_UnknownAction(t *testing.T) {
	_, err := Transition(Times{}, Action("teleport"), *at(9, 0))
	assert.ErrorIs(t, err, ErrUnknownAction)
}

// Replays every action sequence up to length 6 and checks that the accepted
// prefix always has the shape clock_in (break_start break_end)* clock_out?.
func TestTransition_OnlyCanonicalSequencesAccepted(t *testing.T) {
	var walk func(times Times, history []Action, depth int)
	walk = func(times Times, history []Action, depth int) {
		if depth == 0 {
			return
		}
		for _, a := range actions {
			next, err := Transition(times, a, *at(9, len(history)))
			seq := append(append([]Action{}, history...), a)
			if err != nil {
				assert.True(t, next.Equal(times))
				continue
			}
			assert.True(t, isCanonical(seq), "accepted non canonical sequence %v", seq)
			walk(next, seq, depth-1)
		}
	}
	walk(Times{}, nil, 6)
}

func isCanonical(seq []Action) bool {
	if len(seq) == 0 || seq[0] != ActionClockIn {
		return false
	}
	rest := seq[1:]
	for len(rest) > 0 {
		switch {
		case rest[0] == ActionClockOut:
			return len(rest) == 1
		case rest[0] == ActionBreakStart && (len(rest) == 1 || rest[1] == ActionBreakEnd):
			if len(rest) == 1 {
				return true
			}
			rest = rest[2:]
		default:
			return false
		}
	}
	return true
}

func TestAllowedActions(t *testing.T) {
	assert.Equal(t, []Action{ActionClockIn}, AllowedActions(Times{}))
	assert.Equal(t, []Action{ActionClockOut, ActionBreakStart}, AllowedActions(Times{ClockIn: at(9, 0)}))
	assert.Equal(t, []Action{ActionBreakEnd}, AllowedActions(Times{ClockIn: at(9, 0), BreakStart: at(12, 0)}))
	assert.Empty(t, AllowedActions(Times{ClockIn: at(9, 0), ClockOut: at(18, 0)}))
}

func TestParseAction(t *testing.T) {
	a, ok := ParseAction(" Clock_In ")
	assert.True(t, ok)
	assert.Equal(t, ActionClockIn, a)

	_, ok = ParseAction("clock in")
	assert.False(t, ok)
}
