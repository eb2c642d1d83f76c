package share

import (
	"time"

	"github.com/cmlabs-hris/kintai-line-go/internal/domain/attendance"
	"github.com/cmlabs-hris/kintai-line-go/internal/pkg/timeutil"
	"github.com/cmlabs-hris/kintai-line-go/internal/pkg/validator"
)

type CreateRequest struct {
	RequesterID string `json:"-"`
	CompanyID   string `json:"-"`

	// TargetUserID shares another member's month (admin only).
	TargetUserID string `json:"target_user_id"`
	YearMonth    string `json:"year_month"`
	TTLDays      int    `json:"ttl_days"`
}

// Validate applies defaultTTL when TTLDays is zero.
func (r *CreateRequest) Validate(defaultTTL, maxTTL int) error {
	var errs validator.ValidationErrors

	if !timeutil.IsYearMonth(r.YearMonth) {
		errs.Add("year_month", "year_month must be YYYY-MM")
	}
	if r.TargetUserID != "" && !validator.IsValidUUID(r.TargetUserID) {
		errs.Add("target_user_id", "target_user_id must be a valid id")
	}
	if r.TTLDays == 0 {
		r.TTLDays = defaultTTL
	}
	if r.TTLDays < 1 || r.TTLDays > maxTTL {
		errs.Add("ttl_days", "ttl_days is out of range")
	}

	return errs.Err()
}

func (r *CreateRequest) Target() string {
	if r.TargetUserID == "" {
		return r.RequesterID
	}
	return r.TargetUserID
}

type ListRequest struct {
	RequesterID string
	CompanyID   string
	UserID      string
}

type DeleteRequest struct {
	ID          string
	CompanyID   string
	RequesterID string
}

type ShareResponse struct {
	ID        string  `json:"id"`
	Token     string  `json:"token"`
	URL       string  `json:"url,omitempty"`
	UserID    string  `json:"user_id"`
	UserName  *string `json:"user_name,omitempty"`
	YearMonth string  `json:"year_month"`
	ExpiresAt string  `json:"expires_at"`
	Expired   bool    `json:"expired"`
	CreatedBy string  `json:"created_by"`
	CreatedAt string  `json:"created_at"`
}

func NewShareResponse(s Share, url string, now time.Time, loc *time.Location) ShareResponse {
	return ShareResponse{
		ID:        s.ID,
		Token:     s.Token,
		URL:       url,
		UserID:    s.UserID,
		UserName:  s.UserName,
		YearMonth: s.YearMonth,
		ExpiresAt: s.ExpiresAt.In(loc).Format(time.RFC3339),
		Expired:   s.Expired(now),
		CreatedBy: s.CreatedBy,
		CreatedAt: s.CreatedAt.In(loc).Format(time.RFC3339),
	}
}

// SharedRecord is the anonymous view of one day; it carries no identity fields.
type SharedRecord struct {
	Date          string            `json:"date"`
	ClockIn       string            `json:"clock_in"`
	ClockOut      string            `json:"clock_out"`
	BreakStart    string            `json:"break_start"`
	BreakEnd      string            `json:"break_end"`
	Worked        string            `json:"worked"`
	WorkedMinutes *int              `json:"worked_minutes"`
	Break         string            `json:"break"`
	Status        attendance.Status `json:"status"`
}

func NewSharedRecord(a attendance.Attendance, loc *time.Location) SharedRecord {
	rec := SharedRecord{
		Date:       a.Date.Format(timeutil.DateLayout),
		ClockIn:    timeutil.FormatClock(a.ClockIn, loc),
		ClockOut:   timeutil.FormatClock(a.ClockOut, loc),
		BreakStart: timeutil.FormatClock(a.BreakStart, loc),
		BreakEnd:   timeutil.FormatClock(a.BreakEnd, loc),
		Worked:     attendance.FormatWorked(a.Times),
		Break:      attendance.FormatBreak(a.Times),
		Status:     a.Status,
	}
	if worked, ok := attendance.WorkedMinutes(a.Times); ok {
		rec.WorkedMinutes = &worked
	}
	return rec
}

type SummaryResponse struct {
	UserName    string           `json:"user_name"`
	CompanyName string           `json:"company_name"`
	YearMonth   string           `json:"year_month"`
	ExpiresAt   string           `json:"expires_at"`
	Records     []SharedRecord   `json:"records"`
	Stats       attendance.Stats `json:"stats"`
}
