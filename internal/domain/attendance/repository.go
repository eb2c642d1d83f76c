package attendance

import (
	"context"
	"time"
)

type ListFilter struct {
	CompanyID string
	// UserID limits the result to one user when set.
	UserID    *string
	StartDate time.Time
	EndDate   time.Time
}

// AttendanceRepository defines data access methods for attendance records.
// All methods include companyID to prevent cross-company access.
type AttendanceRepository interface {
	// Create inserts a record; ErrAttendanceExists if (user, company, date) is taken
	Create(ctx context.Context, attendance Attendance) (Attendance, error)

	// GetByID retrieves a record with company isolation
	GetByID(ctx context.Context, id string, companyID string) (Attendance, error)

	// GetByUserAndDate returns nil, nil when no record exists
	GetByUserAndDate(ctx context.Context, userID string, companyID string, date time.Time) (*Attendance, error)

	// UpdateTimes overwrites the four instants of a record
	UpdateTimes(ctx context.Context, id string, companyID string, times Times) (Attendance, error)

	// UpdateTimesByUserAndDate overwrites the four instants addressed by natural key
	UpdateTimesByUserAndDate(ctx context.Context, userID string, companyID string, date time.Time, times Times) (Attendance, error)

	// UpdateStatus sets the record status
	UpdateStatus(ctx context.Context, id string, companyID string, status Status) (Attendance, error)

	// List retrieves records in a date range ordered by date then user name
	List(ctx context.Context, filter ListFilter) ([]Attendance, error)

	// MarkUnfinishedPartial flags present records dated before the given day
	// that were clocked in but never clocked out. Returns the affected count.
	MarkUnfinishedPartial(ctx context.Context, before time.Time) (int64, error)
}
