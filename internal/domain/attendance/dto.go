package attendance

import (
	"time"

	"github.com/cmlabs-hris/kintai-line-go/internal/pkg/timeutil"
	"github.com/cmlabs-hris/kintai-line-go/internal/pkg/validator"
)

const (
	DefaultLookbackDays = 30
	MaxRangeDays        = 366
)

// ========================================
// REQUEST DTOs
// ========================================

type RecordActionRequest struct {
	UserID    string `json:"-"`
	CompanyID string `json:"-"`
	Action    string `json:"action"`
}

func (r *RecordActionRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.UserID) {
		errs.Add("user_id", "user_id is required")
	}
	if validator.IsEmpty(r.CompanyID) {
		errs.Add("company_id", "company_id is required")
	}
	if validator.IsEmpty(r.Action) {
		errs.Add("action", "action is required")
	} else if _, ok := ParseAction(r.Action); !ok {
		errs.Add("action", "action must be one of clock_in, clock_out, break_start, break_end")
	}

	return errs.Err()
}

// TimesInput carries four nullable RFC3339 instants. A null or absent field
// clears the instant.
type TimesInput struct {
	ClockIn    *string `json:"clock_in"`
	ClockOut   *string `json:"clock_out"`
	BreakStart *string `json:"break_start"`
	BreakEnd   *string `json:"break_end"`
}

// IsEmpty reports whether no instant was supplied.
func (in TimesInput) IsEmpty() bool {
	return in.ClockIn == nil && in.ClockOut == nil && in.BreakStart == nil && in.BreakEnd == nil
}

// Parse converts the input, appending field errors under prefix.
func (in TimesInput) Parse(prefix string, errs *validator.ValidationErrors) Times {
	var t Times
	t.ClockIn = parseInstant(prefix+"clock_in", in.ClockIn, errs)
	t.ClockOut = parseInstant(prefix+"clock_out", in.ClockOut, errs)
	t.BreakStart = parseInstant(prefix+"break_start", in.BreakStart, errs)
	t.BreakEnd = parseInstant(prefix+"break_end", in.BreakEnd, errs)
	return t
}

func parseInstant(field string, value *string, errs *validator.ValidationErrors) *time.Time {
	if value == nil || *value == "" {
		return nil
	}
	t, ok := validator.IsValidDateTime(*value)
	if !ok {
		errs.Add(field, field+" must be an RFC3339 timestamp")
		return nil
	}
	t = t.UTC()
	return &t
}

// ValidateOrder checks the ordering constraints between instants that are set.
func ValidateOrder(prefix string, t Times, errs *validator.ValidationErrors) {
	if t.ClockOut != nil && t.ClockIn == nil {
		errs.Add(prefix+"clock_out", "clock_out requires clock_in")
	}
	if t.ClockIn != nil && t.ClockOut != nil && t.ClockOut.Before(*t.ClockIn) {
		errs.Add(prefix+"clock_out", "clock_out must not be before clock_in")
	}
	if t.BreakEnd != nil && t.BreakStart == nil {
		errs.Add(prefix+"break_end", "break_end requires break_start")
	}
	if t.BreakStart != nil && t.BreakEnd != nil && t.BreakEnd.Before(*t.BreakStart) {
		errs.Add(prefix+"break_end", "break_end must not be before break_start")
	}
}

type ListRequest struct {
	RequesterID string
	CompanyID   string

	// UserID scopes the list to one user; defaults to the requester.
	UserID string `json:"user_id"`
	// AllUsers lists the whole company (admin only).
	AllUsers  bool   `json:"all_users"`
	Date      string `json:"date"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// Range resolves the requested window: a single date, an explicit range, or
// the trailing DefaultLookbackDays ending today.
func (r *ListRequest) Range(today time.Time) (start, end time.Time, err error) {
	var errs validator.ValidationErrors

	switch {
	case r.Date != "":
		d, ok := validator.IsValidDate(r.Date)
		if !ok {
			errs.Add("date", "date must be YYYY-MM-DD")
			return time.Time{}, time.Time{}, errs
		}
		return d, d, nil

	case r.StartDate != "" || r.EndDate != "":
		s, ok := validator.IsValidDate(r.StartDate)
		if !ok {
			errs.Add("start_date", "start_date must be YYYY-MM-DD")
		}
		e, ok := validator.IsValidDate(r.EndDate)
		if !ok {
			errs.Add("end_date", "end_date must be YYYY-MM-DD")
		}
		if len(errs) > 0 {
			return time.Time{}, time.Time{}, errs
		}
		if e.Before(s) {
			errs.Add("end_date", "end_date must not be before start_date")
			return time.Time{}, time.Time{}, errs
		}
		if e.Sub(s) > MaxRangeDays*24*time.Hour {
			errs.Add("end_date", "range must not exceed 366 days")
			return time.Time{}, time.Time{}, errs
		}
		return s, e, nil

	default:
		return today.AddDate(0, 0, -(DefaultLookbackDays - 1)), today, nil
	}
}

type AdminUpdateRequest struct {
	ID        string `json:"-"`
	CompanyID string `json:"-"`
	AdminID   string `json:"-"`
	TimesInput
	Status *string `json:"status"`

	times Times
}

func (r *AdminUpdateRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs.Add("id", "id is required")
	}
	r.times = r.TimesInput.Parse("", &errs)
	ValidateOrder("", r.times, &errs)
	if r.Status != nil && !Status(*r.Status).Valid() {
		errs.Add("status", "status must be one of present, absent, partial")
	}

	return errs.Err()
}

// Times returns the parsed instants; valid only after Validate.
func (r *AdminUpdateRequest) Times() Times {
	return r.times
}

type AdminUpsertRequest struct {
	CompanyID string `json:"-"`
	AdminID   string `json:"-"`
	UserID    string `json:"user_id"`
	Date      string `json:"date"`
	TimesInput
	Status *string `json:"status"`

	date  time.Time
	times Times
}

func (r *AdminUpsertRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.UserID) {
		errs.Add("user_id", "user_id must be a valid id")
	}
	d, ok := validator.IsValidDate(r.Date)
	if !ok {
		errs.Add("date", "date must be YYYY-MM-DD")
	}
	r.date = d
	r.times = r.TimesInput.Parse("", &errs)
	ValidateOrder("", r.times, &errs)
	if r.Status != nil && !Status(*r.Status).Valid() {
		errs.Add("status", "status must be one of present, absent, partial")
	}

	return errs.Err()
}

func (r *AdminUpsertRequest) Day() time.Time {
	return r.date
}

func (r *AdminUpsertRequest) Times() Times {
	return r.times
}

// ========================================
// RESPONSE DTOs
// ========================================

type AttendanceResponse struct {
	ID            string  `json:"id"`
	UserID        string  `json:"user_id"`
	UserName      *string `json:"user_name,omitempty"`
	UserEmail     *string `json:"user_email,omitempty"`
	Date          string  `json:"date"`
	ClockIn       *string `json:"clock_in"`
	ClockOut      *string `json:"clock_out"`
	BreakStart    *string `json:"break_start"`
	BreakEnd      *string `json:"break_end"`
	WorkedMinutes *int    `json:"worked_minutes"`
	Worked        string  `json:"worked"`
	BreakMinutes  *int    `json:"break_minutes"`
	Status        Status  `json:"status"`
	State         State   `json:"state"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

// NewAttendanceResponse renders a record with instants in loc.
func NewAttendanceResponse(a Attendance, loc *time.Location) AttendanceResponse {
	resp := AttendanceResponse{
		ID:         a.ID,
		UserID:     a.UserID,
		UserName:   a.UserName,
		UserEmail:  a.UserEmail,
		Date:       a.Date.Format(timeutil.DateLayout),
		ClockIn:    timeutil.FormatInstant(a.ClockIn, loc),
		ClockOut:   timeutil.FormatInstant(a.ClockOut, loc),
		BreakStart: timeutil.FormatInstant(a.BreakStart, loc),
		BreakEnd:   timeutil.FormatInstant(a.BreakEnd, loc),
		Worked:     FormatWorked(a.Times),
		Status:     a.Status,
		State:      DeriveState(a.Times),
		CreatedAt:  a.CreatedAt.In(loc).Format(time.RFC3339),
		UpdatedAt:  a.UpdatedAt.In(loc).Format(time.RFC3339),
	}
	if worked, ok := WorkedMinutes(a.Times); ok {
		resp.WorkedMinutes = &worked
	}
	if breakMinutes, ok := BreakMinutes(a.Times); ok {
		resp.BreakMinutes = &breakMinutes
	}
	return resp
}

type TodayResponse struct {
	Date           string              `json:"date"`
	State          State               `json:"state"`
	AllowedActions []Action            `json:"allowed_actions"`
	Record         *AttendanceResponse `json:"record"`
}

type ListResponse struct {
	StartDate string               `json:"start_date"`
	EndDate   string               `json:"end_date"`
	Records   []AttendanceResponse `json:"records"`
}
