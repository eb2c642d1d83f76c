package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayOf(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	// 2024-05-31 16:30 UTC is already June 1st in Tokyo.
	instant := time.Date(2024, 5, 31, 16, 30, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), DayOf(instant, tokyo))
	assert.Equal(t, time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC), DayOf(instant, time.UTC))
}

func TestIsYearMonth(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"2024-05", true},
		{"2024-12", true},
		{"2024-13", false},
		{"2024-5", false},
		{"24-05", false},
		{"2024-05-01", false},
		{" 2024-05", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, IsYearMonth(tt.input))
		})
	}
}

func TestMonthRange(t *testing.T) {
	first, last, err := MonthRange("2024-02")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), first)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), last)

	_, _, err = MonthRange("2024/02")
	assert.Error(t, err)
}

func TestFloorMinutes(t *testing.T) {
	assert.Equal(t, 0, FloorMinutes(0))
	assert.Equal(t, 1, FloorMinutes(119*time.Second))
	assert.Equal(t, 510, FloorMinutes(8*time.Hour+30*time.Minute+59*time.Second))
	assert.Equal(t, -1, FloorMinutes(-30*time.Second))
}

func TestFormatMinutes(t *testing.T) {
	tests := []struct {
		minutes int
		want    string
	}{
		{510, "8:30"},
		{0, "0:00"},
		{5, "0:05"},
		{600, "10:00"},
		{-30, "-0:30"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatMinutes(tt.minutes))
	}
}

func TestFormatClock(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	instant := time.Date(2024, 6, 1, 0, 5, 0, 0, time.UTC)
	assert.Equal(t, "09:05", FormatClock(&instant, tokyo))
	assert.Equal(t, "", FormatClock(nil, tokyo))
}
