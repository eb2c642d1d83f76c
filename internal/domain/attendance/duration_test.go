package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWorkedMinutes(t *testing.T) {
	tests := []struct {
		name   string
		times  Times
		want   int
		wantOK bool
	}{
		{"no clock in", Times{ClockOut: at(18, 0)}, 0, false},
		{"no clock out", Times{ClockIn: at(9, 0)}, 0, false},
		{"zero length day", Times{ClockIn: at(9, 0), ClockOut: at(9, 0)}, 0, true},
		{"no break", Times{ClockIn: at(9, 0), ClockOut: at(17, 45)}, 525, true},
		{"closed break", Times{ClockIn: at(9, 0), BreakStart: at(12, 0), BreakEnd: at(12, 30), ClockOut: at(18, 0)}, 510, true},
		{"unclosed break ignored", Times{ClockIn: at(9, 0), BreakStart: at(12, 0), ClockOut: at(18, 0)}, 540, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := WorkedMinutes(tt.times)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWorkedMinutes_FloorsCombinedDuration(t *testing.T) {
	in := day.Add(9 * time.Hour)
	out := in.Add(60*time.Minute + 50*time.Second)
	bs := in.Add(10 * time.Minute)
	be := bs.Add(20*time.Minute + 40*time.Second)

	// 60m50s - 20m40s = 40m10s
	got, ok := WorkedMinutes(Times{ClockIn: &in, ClockOut: &out, BreakStart: &bs, BreakEnd: &be})
	assert.True(t, ok)
	assert.Equal(t, 40, got)
}

func TestFormatWorked_EmptyWhenUndefined(t *testing.T) {
	assert.Equal(t, "", FormatWorked(Times{ClockIn: at(9, 0)}))
	assert.Equal(t, "", FormatBreak(Times{BreakStart: at(12, 0)}))
	assert.Equal(t, "0:30", FormatBreak(Times{BreakStart: at(12, 0), BreakEnd: at(12, 30)}))
}

func TestSummarize(t *testing.T) {
	records := []Attendance{
		{Times: Times{ClockIn: at(9, 0), BreakStart: at(12, 0), BreakEnd: at(12, 30), ClockOut: at(18, 0)}}, // 510
		{Times: Times{ClockIn: at(9, 0), ClockOut: at(17, 1)}},                                              // 481
		{Times: Times{ClockIn: at(9, 0)}},                                                                   // not worked
		{Times: Times{}},
	}

	stats := Summarize(records)
	assert.Equal(t, 991, stats.TotalWorkedMinutes)
	assert.Equal(t, 30, stats.TotalBreakMinutes)
	assert.Equal(t, 2, stats.DaysWorked)
	assert.Equal(t, 496, stats.AverageWorkedMinutes) // 495.5 rounds up
}

func TestSummarize_Empty(t *testing.T) {
	assert.Equal(t, Stats{}, Summarize(nil))
}
