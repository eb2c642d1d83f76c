package notification

import "time"

type EventType string

const (
	EventClockIn                EventType = "clock_in"
	EventClockOut               EventType = "clock_out"
	EventBreakStart             EventType = "break_start"
	EventBreakEnd               EventType = "break_end"
	EventAttendanceEdited       EventType = "attendance_edited"
	EventChangeRequestCreated   EventType = "change_request_created"
	EventChangeRequestApproved  EventType = "change_request_approved"
	EventChangeRequestRejected  EventType = "change_request_rejected"
	EventChangeRequestWithdrawn EventType = "change_request_withdrawn"
)

// Event describes something that happened in a company. Names and the
// human-readable summary are resolved by the dispatcher, not the caller.
type Event struct {
	Type       EventType
	CompanyID  string
	UserID     string
	ActorID    string
	Date       time.Time
	OccurredAt time.Time
	Reason     string
	Comment    string
	// RecordID or ChangeRequestID, depending on Type
	SubjectID string
}

// NotifiesUser reports whether the subject user should hear about the event
// directly (review outcomes).
func (e Event) NotifiesUser() bool {
	return e.Type == EventChangeRequestApproved || e.Type == EventChangeRequestRejected
}
