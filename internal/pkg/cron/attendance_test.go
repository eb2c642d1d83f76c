package cron

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/kintai-line-go/internal/domain/attendance"
	"github.com/cmlabs-hris/kintai-line-go/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkUnfinishedAttendances(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*3600)
	repo := testutil.NewAttendanceRepo()
	day := func(d int) time.Time { return time.Date(2024, 6, d, 0, 0, 0, 0, time.UTC) }
	at := func(d, h int) *time.Time {
		v := time.Date(2024, 6, d, h, 0, 0, 0, tokyo)
		return &v
	}

	open := repo.Seed(attendance.Attendance{UserID: "u1", CompanyID: "c1", Date: day(3), Times: attendance.Times{ClockIn: at(3, 9)}})
	closed := repo.Seed(attendance.Attendance{UserID: "u2", CompanyID: "c1", Date: day(3), Times: attendance.Times{ClockIn: at(3, 9), ClockOut: at(3, 18)}})
	absent := repo.Seed(attendance.Attendance{UserID: "u3", CompanyID: "c1", Date: day(3), Status: attendance.StatusAbsent})
	today := repo.Seed(attendance.Attendance{UserID: "u1", CompanyID: "c1", Date: day(4), Times: attendance.Times{ClockIn: at(4, 9)}})

	// 00:30 on the 4th in Tokyo is still the 3rd in UTC.
	now := time.Date(2024, 6, 4, 0, 30, 0, 0, tokyo)
	jobs := NewAttendanceJobs(repo, tokyo, func() time.Time { return now })
	require.NoError(t, jobs.MarkUnfinishedAttendances(context.Background()))

	status := func(rec attendance.Attendance) attendance.Status {
		got, err := repo.GetByID(context.Background(), rec.ID, rec.CompanyID)
		require.NoError(t, err)
		return got.Status
	}
	assert.Equal(t, attendance.StatusPartial, status(open))
	assert.Equal(t, attendance.StatusPresent, status(closed))
	assert.Equal(t, attendance.StatusAbsent, status(absent))
	assert.Equal(t, attendance.StatusPresent, status(today))

	got, err := repo.GetByID(context.Background(), open.ID, open.CompanyID)
	require.NoError(t, err)
	assert.Nil(t, got.ClockOut)
}
