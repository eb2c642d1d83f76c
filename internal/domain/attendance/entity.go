package attendance

import "time"

type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusPartial Status = "partial"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusPartial:
		return true
	}
	return false
}

// Times holds the four optional instants of a working day.
type Times struct {
	ClockIn    *time.Time
	ClockOut   *time.Time
	BreakStart *time.Time
	BreakEnd   *time.Time
}

// Equal reports whether both sets of instants are identical.
func (t Times) Equal(o Times) bool {
	return equalInstant(t.ClockIn, o.ClockIn) &&
		equalInstant(t.ClockOut, o.ClockOut) &&
		equalInstant(t.BreakStart, o.BreakStart) &&
		equalInstant(t.BreakEnd, o.BreakEnd)
}

func equalInstant(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

// Attendance is the single record per (user, company, calendar day).
type Attendance struct {
	ID        string
	UserID    string
	CompanyID string
	// Date is the company-local calendar day at midnight UTC.
	Date time.Time
	Times
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time

	// Joined from users
	UserName  *string
	UserEmail *string
}
