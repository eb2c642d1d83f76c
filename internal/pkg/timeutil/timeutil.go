// Package timeutil holds the calendar and duration helpers shared by the
// daily view, the monthly export and the shared summary. All calendar days
// are computed in one fixed business timezone.
package timeutil

import (
	"fmt"
	"math"
	"regexp"
	"time"
)

const (
	DateLayout      = "2006-01-02"
	YearMonthLayout = "2006-01"
	ClockLayout     = "15:04"
)

var yearMonthRegex = regexp.MustCompile(`^\d{4}-\d{2}$`)

// DayOf returns the calendar day of t in loc, normalized to midnight UTC so
// that it compares equal to a DATE column scanned by pgx.
func DayOf(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD calendar day.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// IsYearMonth reports whether s has the strict YYYY-MM shape.
func IsYearMonth(s string) bool {
	if !yearMonthRegex.MatchString(s) {
		return false
	}
	_, err := time.Parse(YearMonthLayout, s)
	return err == nil
}

// MonthRange returns the first and last calendar day of a YYYY-MM month.
func MonthRange(yearMonth string) (first, last time.Time, err error) {
	if !IsYearMonth(yearMonth) {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid year month %q", yearMonth)
	}
	first, err = time.ParseInLocation(YearMonthLayout, yearMonth, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	last = first.AddDate(0, 1, -1)
	return first, last, nil
}

// FloorMinutes converts d to whole minutes, rounding toward negative infinity.
func FloorMinutes(d time.Duration) int {
	return int(math.Floor(d.Minutes()))
}

// FormatMinutes renders a minute count as H:MM, e.g. 510 -> "8:30".
func FormatMinutes(minutes int) string {
	sign := ""
	if minutes < 0 {
		sign = "-"
		minutes = -minutes
	}
	return fmt.Sprintf("%s%d:%02d", sign, minutes/60, minutes%60)
}

// FormatClock renders an optional instant as HH:MM in loc, or "" when nil.
func FormatClock(t *time.Time, loc *time.Location) string {
	if t == nil {
		return ""
	}
	return t.In(loc).Format(ClockLayout)
}

// FormatInstant renders an optional instant as RFC3339 in loc.
func FormatInstant(t *time.Time, loc *time.Location) *string {
	if t == nil {
		return nil
	}
	s := t.In(loc).Format(time.RFC3339)
	return &s
}
