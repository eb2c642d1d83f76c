package changerequest

import (
	"time"

	"github.com/cmlabs-hris/kintai-line-go/internal/domain/attendance"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

type ReviewAction string

const (
	ReviewApprove ReviewAction = "approve"
	ReviewReject  ReviewAction = "reject"
)

// ChangeRequest proposes new instants for one user's calendar day.
type ChangeRequest struct {
	ID                 string
	UserID             string
	CompanyID          string
	AttendanceRecordID *string
	RequestDate        time.Time
	// Current is the record as it looked at submission; informational only.
	Current   attendance.Times
	Requested attendance.Times
	Reason    string
	Status    Status

	ReviewerID    *string
	ReviewedAt    *time.Time
	ReviewComment *string

	CreatedAt time.Time
	UpdatedAt time.Time

	// Joined from users
	UserName     *string
	ReviewerName *string
}
