package attendance

import (
	"context"
)

// AttendanceService defines business logic for attendance operations
type AttendanceService interface {
	// RecordAction applies a clock or break action to today's record
	RecordAction(ctx context.Context, req RecordActionRequest) (AttendanceResponse, error)

	// GetToday returns today's record with its derived state
	GetToday(ctx context.Context, userID string, companyID string) (TodayResponse, error)

	// List returns records for a user or, for admins, the whole company
	List(ctx context.Context, req ListRequest) (ListResponse, error)

	// AdminUpdate overwrites a record's instants (admin only)
	AdminUpdate(ctx context.Context, req AdminUpdateRequest) (AttendanceResponse, error)

	// AdminUpsert creates or overwrites a user's record for a date (admin only)
	AdminUpsert(ctx context.Context, req AdminUpsertRequest) (AttendanceResponse, error)
}
