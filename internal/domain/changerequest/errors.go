package changerequest

import "errors"

var (
	ErrChangeRequestNotFound = errors.New("change request not found")
	ErrDuplicatePending      = errors.New("a pending change request already exists for this date")
	ErrAlreadyProcessed      = errors.New("change request already processed")
	ErrRecordMismatch        = errors.New("attendance record does not match the request")
)
