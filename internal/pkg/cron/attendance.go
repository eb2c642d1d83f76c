package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/kintai-line-go/internal/domain/attendance"
	"github.com/cmlabs-hris/kintai-line-go/internal/pkg/timeutil"
)

// AttendanceJobs holds housekeeping jobs over attendance records.
type AttendanceJobs struct {
	attendanceRepo attendance.AttendanceRepository
	loc            *time.Location
	now            func() time.Time
}

func NewAttendanceJobs(attendanceRepo attendance.AttendanceRepository, loc *time.Location, now func() time.Time) *AttendanceJobs {
	if now == nil {
		now = time.Now
	}
	return &AttendanceJobs{
		attendanceRepo: attendanceRepo,
		loc:            loc,
		now:            now,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("mark_unfinished_attendances", 1*time.Hour, j.MarkUnfinishedAttendances)
}

// MarkUnfinishedAttendances flags records from previous days that have a
// clock in but no clock out as partial. Recorded times are left untouched.
func (j *AttendanceJobs) MarkUnfinishedAttendances(ctx context.Context) error {
	today := timeutil.DayOf(j.now(), j.loc)

	n, err := j.attendanceRepo.MarkUnfinishedPartial(ctx, today)
	if err != nil {
		return fmt.Errorf("failed to mark unfinished attendances: %w", err)
	}
	if n > 0 {
		slog.Info("Cron: marked unfinished attendances as partial", "count", n, "before", today.Format(timeutil.DateLayout))
	}
	return nil
}
