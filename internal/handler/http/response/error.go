package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/kintai-line-go/internal/domain/attendance"
	"github.com/cmlabs-hris/kintai-line-go/internal/domain/auth"
	"github.com/cmlabs-hris/kintai-line-go/internal/domain/changerequest"
	"github.com/cmlabs-hris/kintai-line-go/internal/domain/company"
	"github.com/cmlabs-hris/kintai-line-go/internal/domain/report"
	"github.com/cmlabs-hris/kintai-line-go/internal/domain/share"
	"github.com/cmlabs-hris/kintai-line-go/internal/domain/user"
	"github.com/cmlabs-hris/kintai-line-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	var transitionErr *attendance.TransitionError
	if errors.As(err, &transitionErr) {
		InvalidTransition(w, transitionErr.Reason)
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrUnauthenticated),
		errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Authentication required")
	case errors.Is(err, auth.ErrInvalidState):
		Unauthorized(w, "Invalid login state")
	case errors.Is(err, auth.ErrLineAuthFailed):
		Unauthorized(w, "LINE authentication failed")

	// User domain errors
	case errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")
	case errors.Is(err, user.ErrInvalidVerificationLink):
		NotFound(w, "Verification link is invalid or already used")

	// Company domain errors
	case errors.Is(err, company.ErrNotMember):
		Forbidden(w, "Not a member of this company")
	case errors.Is(err, company.ErrAdminRequired):
		Forbidden(w, "Admin privilege required")
	case errors.Is(err, company.ErrCompanyNotFound):
		NotFound(w, "Company not found")
	case errors.Is(err, company.ErrMembershipNotFound):
		NotFound(w, "Member not found")
	case errors.Is(err, company.ErrNoMembership):
		NotFound(w, "Not linked to any company")
	case errors.Is(err, company.ErrAlreadyLinked):
		BadRequest(w, "Already linked to this company", nil)
	case errors.Is(err, company.ErrLastAdmin):
		BadRequest(w, "Company must keep at least one admin", nil)

	// Attendance domain errors
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance record not found")

	// Change request domain errors
	case errors.Is(err, changerequest.ErrChangeRequestNotFound):
		NotFound(w, "Change request not found")
	case errors.Is(err, changerequest.ErrDuplicatePending):
		BadRequest(w, "A pending change request already exists for this date", nil)
	case errors.Is(err, changerequest.ErrAlreadyProcessed):
		BadRequest(w, "Change request already processed", nil)
	case errors.Is(err, changerequest.ErrRecordMismatch):
		BadRequest(w, "Attendance record does not match the request", nil)

	// Share domain errors
	case errors.Is(err, share.ErrShareNotFound):
		NotFound(w, "Share not found")
	case errors.Is(err, share.ErrShareExpired):
		Gone(w, "Share link has expired")
	case errors.Is(err, share.ErrShareConflict):
		BadRequest(w, err.Error(), nil)

	case errors.Is(err, report.ErrUnsupportedFormat):
		BadRequest(w, err.Error(), nil)

	// Default
	default:
		slog.Error("unexpected error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
