package changerequest

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/kintai-line-go/internal/domain/attendance"
	"github.com/cmlabs-hris/kintai-line-go/internal/pkg/timeutil"
	"github.com/cmlabs-hris/kintai-line-go/internal/pkg/validator"
)

const (
	maxReasonLength  = 500
	maxCommentLength = 500
	DefaultListLimit = 100
)

type CreateRequest struct {
	RequesterID string `json:"-"`
	CompanyID   string `json:"-"`

	// UserID submits on behalf of another member (admin only).
	UserID             string                 `json:"user_id"`
	RequestDate        string                 `json:"request_date"`
	AttendanceRecordID *string                `json:"attendance_record_id"`
	Current            *attendance.TimesInput `json:"current"`
	Requested          attendance.TimesInput  `json:"requested"`
	Reason             string                 `json:"reason"`

	date      time.Time
	current   *attendance.Times
	requested attendance.Times
}

func (r *CreateRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.UserID != "" && !validator.IsValidUUID(r.UserID) {
		errs.Add("user_id", "user_id must be a valid id")
	}
	d, ok := validator.IsValidDate(r.RequestDate)
	if !ok {
		errs.Add("request_date", "request_date must be YYYY-MM-DD")
	}
	r.date = d

	if r.AttendanceRecordID != nil && !validator.IsValidUUID(*r.AttendanceRecordID) {
		errs.Add("attendance_record_id", "attendance_record_id must be a valid id")
	}

	if r.Current != nil {
		current := r.Current.Parse("current.", &errs)
		r.current = &current
	}

	if r.Requested.IsEmpty() {
		errs.Add("requested", "at least one requested time is required")
	}
	r.requested = r.Requested.Parse("requested.", &errs)
	attendance.ValidateOrder("requested.", r.requested, &errs)

	r.Reason = strings.TrimSpace(r.Reason)
	if r.Reason == "" {
		errs.Add("reason", "reason is required")
	} else if len([]rune(r.Reason)) > maxReasonLength {
		errs.Add("reason", "reason must be at most 500 characters")
	}

	return errs.Err()
}

// Date returns the parsed request date; valid only after Validate.
func (r *CreateRequest) Date() time.Time {
	return r.date
}

// CurrentTimes is nil when the client sent no snapshot.
func (r *CreateRequest) CurrentTimes() *attendance.Times {
	return r.current
}

func (r *CreateRequest) RequestedTimes() attendance.Times {
	return r.requested
}

// TargetUserID is the user the request is for.
func (r *CreateRequest) TargetUserID() string {
	if r.UserID == "" {
		return r.RequesterID
	}
	return r.UserID
}

type ReviewRequest struct {
	ID         string  `json:"-"`
	CompanyID  string  `json:"-"`
	ReviewerID string  `json:"-"`
	Action     string  `json:"action"`
	Comment    *string `json:"comment"`
}

func (r *ReviewRequest) Validate() error {
	var errs validator.ValidationErrors

	switch ReviewAction(r.Action) {
	case ReviewApprove, ReviewReject:
	default:
		errs.Add("action", "action must be approve or reject")
	}
	if r.Comment != nil {
		c := strings.TrimSpace(*r.Comment)
		if len([]rune(c)) > maxCommentLength {
			errs.Add("comment", "comment must be at most 500 characters")
		}
		if c == "" {
			r.Comment = nil
		} else {
			r.Comment = &c
		}
	}

	return errs.Err()
}

type WithdrawRequest struct {
	ID          string
	CompanyID   string
	RequesterID string
}

type ListRequest struct {
	RequesterID string
	CompanyID   string
	UserID      string
	Status      string
}

func (r *ListRequest) Validate() error {
	var errs validator.ValidationErrors
	if r.Status != "" && !Status(r.Status).Valid() {
		errs.Add("status", "status must be one of pending, approved, rejected")
	}
	if r.UserID != "" && !validator.IsValidUUID(r.UserID) {
		errs.Add("user_id", "user_id must be a valid id")
	}
	return errs.Err()
}

type TimesResponse struct {
	ClockIn    *string `json:"clock_in"`
	ClockOut   *string `json:"clock_out"`
	BreakStart *string `json:"break_start"`
	BreakEnd   *string `json:"break_end"`
	Worked     string  `json:"worked"`
}

func newTimesResponse(t attendance.Times, loc *time.Location) TimesResponse {
	return TimesResponse{
		ClockIn:    timeutil.FormatInstant(t.ClockIn, loc),
		ClockOut:   timeutil.FormatInstant(t.ClockOut, loc),
		BreakStart: timeutil.FormatInstant(t.BreakStart, loc),
		BreakEnd:   timeutil.FormatInstant(t.BreakEnd, loc),
		Worked:     attendance.FormatWorked(t),
	}
}

type ChangeRequestResponse struct {
	ID                 string        `json:"id"`
	UserID             string        `json:"user_id"`
	UserName           *string       `json:"user_name,omitempty"`
	CompanyID          string        `json:"company_id"`
	AttendanceRecordID *string       `json:"attendance_record_id"`
	RequestDate        string        `json:"request_date"`
	Current            TimesResponse `json:"current"`
	Requested          TimesResponse `json:"requested"`
	Reason             string        `json:"reason"`
	Status             Status        `json:"status"`
	ReviewerID         *string       `json:"reviewer_id,omitempty"`
	ReviewerName       *string       `json:"reviewer_name,omitempty"`
	ReviewedAt         *string       `json:"reviewed_at,omitempty"`
	ReviewComment      *string       `json:"review_comment,omitempty"`
	CreatedAt          string        `json:"created_at"`
	UpdatedAt          string        `json:"updated_at"`
}

func NewChangeRequestResponse(cr ChangeRequest, loc *time.Location) ChangeRequestResponse {
	return ChangeRequestResponse{
		ID:                 cr.ID,
		UserID:             cr.UserID,
		UserName:           cr.UserName,
		CompanyID:          cr.CompanyID,
		AttendanceRecordID: cr.AttendanceRecordID,
		RequestDate:        cr.RequestDate.Format(timeutil.DateLayout),
		Current:            newTimesResponse(cr.Current, loc),
		Requested:          newTimesResponse(cr.Requested, loc),
		Reason:             cr.Reason,
		Status:             cr.Status,
		ReviewerID:         cr.ReviewerID,
		ReviewerName:       cr.ReviewerName,
		ReviewedAt:         timeutil.FormatInstant(cr.ReviewedAt, loc),
		ReviewComment:      cr.ReviewComment,
		CreatedAt:          cr.CreatedAt.In(loc).Format(time.RFC3339),
		UpdatedAt:          cr.UpdatedAt.In(loc).Format(time.RFC3339),
	}
}
