package attendance

import (
	"math"

	"github.com/cmlabs-hris/kintai-line-go/internal/pkg/timeutil"
)

// WorkedMinutes is (clock_out - clock_in) - (break_end - break_start),
// floored to whole minutes. ok is false when either clock instant is missing.
// An unclosed break is ignored.
func WorkedMinutes(t Times) (minutes int, ok bool) {
	if t.ClockIn == nil || t.ClockOut == nil {
		return 0, false
	}
	worked := t.ClockOut.Sub(*t.ClockIn)
	if t.BreakStart != nil && t.BreakEnd != nil {
		worked -= t.BreakEnd.Sub(*t.BreakStart)
	}
	return timeutil.FloorMinutes(worked), true
}

// BreakMinutes is the closed break interval in whole minutes.
func BreakMinutes(t Times) (minutes int, ok bool) {
	if t.BreakStart == nil || t.BreakEnd == nil {
		return 0, false
	}
	return timeutil.FloorMinutes(t.BreakEnd.Sub(*t.BreakStart)), true
}

// FormatWorked renders WorkedMinutes as H:MM, or "" when undefined.
func FormatWorked(t Times) string {
	minutes, ok := WorkedMinutes(t)
	if !ok {
		return ""
	}
	return timeutil.FormatMinutes(minutes)
}

// FormatBreak renders BreakMinutes as H:MM, or "" when undefined.
func FormatBreak(t Times) string {
	minutes, ok := BreakMinutes(t)
	if !ok {
		return ""
	}
	return timeutil.FormatMinutes(minutes)
}

type Stats struct {
	TotalWorkedMinutes   int `json:"total_worked_minutes"`
	TotalBreakMinutes    int `json:"total_break_minutes"`
	DaysWorked           int `json:"days_worked"`
	AverageWorkedMinutes int `json:"average_worked_minutes"`
}

// Summarize aggregates a set of records. A day counts as worked when its
// worked duration is defined.
func Summarize(records []Attendance) Stats {
	var stats Stats
	for _, r := range records {
		if worked, ok := WorkedMinutes(r.Times); ok {
			stats.TotalWorkedMinutes += worked
			stats.DaysWorked++
		}
		if breakMinutes, ok := BreakMinutes(r.Times); ok {
			stats.TotalBreakMinutes += breakMinutes
		}
	}
	if stats.DaysWorked > 0 {
		stats.AverageWorkedMinutes = int(math.Round(float64(stats.TotalWorkedMinutes) / float64(stats.DaysWorked)))
	}
	return stats
}
