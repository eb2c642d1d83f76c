package attendance

import "errors"

// Attendance domain errors
var (
	ErrInvalidTransition = errors.New("invalid attendance transition")
	ErrUnknownAction     = errors.New("unknown attendance action")

	ErrAttendanceNotFound = errors.New("attendance record not found")
	ErrAttendanceExists   = errors.New("attendance record already exists for this date")
)
