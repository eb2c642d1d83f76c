package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/kintai-line-go/internal/domain/attendance"
	"github.com/cmlabs-hris/kintai-line-go/internal/domain/company"
	"github.com/cmlabs-hris/kintai-line-go/internal/domain/notification"
	"github.com/cmlabs-hris/kintai-line-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/kintai-line-go/internal/pkg/timeutil"
)

// createAttempts bounds the reload-and-reapply loop when a concurrent
// request inserts the day's record first.
const createAttempts = 2

type AttendanceServiceImpl struct {
	attendance.AttendanceRepository
	membershipRepo company.MembershipRepository
	dispatcher     notification.Dispatcher
	loc            *time.Location
	now            func() time.Time
}

func NewAttendanceService(
	attendanceRepo attendance.AttendanceRepository,
	membershipRepo company.MembershipRepository,
	dispatcher notification.Dispatcher,
	loc *time.Location,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		AttendanceRepository: attendanceRepo,
		membershipRepo:       membershipRepo,
		dispatcher:           dispatcher,
		loc:                  loc,
		now:                  time.Now,
	}
}

var actionEvents = map[attendance.Action]notification.EventType{
	attendance.ActionClockIn:    notification.EventClockIn,
	attendance.ActionClockOut:   notification.EventClockOut,
	attendance.ActionBreakStart: notification.EventBreakStart,
	attendance.ActionBreakEnd:   notification.EventBreakEnd,
}

// RecordAction implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) RecordAction(ctx context.Context, req attendance.RecordActionRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}
	action, _ := attendance.ParseAction(req.Action)

	if _, err := company.RequireMember(ctx, a.membershipRepo, req.UserID, req.CompanyID); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	now := a.now().UTC()
	day := timeutil.DayOf(now, a.loc)

	record, err := a.apply(ctx, req.UserID, req.CompanyID, day, action, now)
	if err != nil {
		if errors.Is(err, attendance.ErrInvalidTransition) {
			metrics.AttendanceActions.WithLabelValues(string(action), "rejected").Inc()
			return attendance.AttendanceResponse{}, err
		}
		metrics.AttendanceActions.WithLabelValues(string(action), "error").Inc()
		return attendance.AttendanceResponse{}, err
	}
	metrics.AttendanceActions.WithLabelValues(string(action), "accepted").Inc()

	a.dispatcher.Dispatch(notification.Event{
		Type:       actionEvents[action],
		CompanyID:  req.CompanyID,
		UserID:     req.UserID,
		ActorID:    req.UserID,
		Date:       day,
		OccurredAt: now,
		SubjectID:  record.ID,
	})

	return attendance.NewAttendanceResponse(record, a.loc), nil
}

// apply loads the day's record, runs the transition and persists the result.
// The record is created only when the transition succeeds.
func (a *AttendanceServiceImpl) apply(ctx context.Context, userID, companyID string, day time.Time, action attendance.Action, now time.Time) (attendance.Attendance, error) {
	for attempt := 1; ; attempt++ {
		existing, err := a.AttendanceRepository.GetByUserAndDate(ctx, userID, companyID, day)
		if err != nil {
			return attendance.Attendance{}, err
		}

		var current attendance.Times
		if existing != nil {
			current = existing.Times
		}

		next, err := attendance.Transition(current, action, now)
		if err != nil {
			return attendance.Attendance{}, err
		}

		if existing != nil {
			return a.AttendanceRepository.UpdateTimes(ctx, existing.ID, companyID, next)
		}

		created, err := a.AttendanceRepository.Create(ctx, attendance.Attendance{
			UserID:    userID,
			CompanyID: companyID,
			Date:      day,
			Times:     next,
			Status:    attendance.StatusPresent,
		})
		if errors.Is(err, attendance.ErrAttendanceExists) && attempt < createAttempts {
			slog.Debug("attendance record created concurrently, reapplying", "user_id", userID, "action", action)
			continue
		}
		return created, err
	}
}

// GetToday implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetToday(ctx context.Context, userID string, companyID string) (attendance.TodayResponse, error) {
	if _, err := company.RequireMember(ctx, a.membershipRepo, userID, companyID); err != nil {
		return attendance.TodayResponse{}, err
	}

	day := timeutil.DayOf(a.now(), a.loc)
	existing, err := a.AttendanceRepository.GetByUserAndDate(ctx, userID, companyID, day)
	if err != nil {
		return attendance.TodayResponse{}, err
	}

	var current attendance.Times
	resp := attendance.TodayResponse{Date: day.Format(timeutil.DateLayout)}
	if existing != nil {
		current = existing.Times
		record := attendance.NewAttendanceResponse(*existing, a.loc)
		resp.Record = &record
	}
	resp.State = attendance.DeriveState(current)
	resp.AllowedActions = attendance.AllowedActions(current)

	return resp, nil
}

// List implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) List(ctx context.Context, req attendance.ListRequest) (attendance.ListResponse, error) {
	requester, err := company.RequireMember(ctx, a.membershipRepo, req.RequesterID, req.CompanyID)
	if err != nil {
		return attendance.ListResponse{}, err
	}

	var userID *string
	switch {
	case req.AllUsers:
		if !requester.IsAdmin {
			return attendance.ListResponse{}, company.ErrAdminRequired
		}
	case req.UserID != "" && req.UserID != req.RequesterID:
		if !requester.IsAdmin {
			return attendance.ListResponse{}, company.ErrAdminRequired
		}
		userID = &req.UserID
	default:
		userID = &req.RequesterID
	}

	start, end, err := req.Range(timeutil.DayOf(a.now(), a.loc))
	if err != nil {
		return attendance.ListResponse{}, err
	}

	records, err := a.AttendanceRepository.List(ctx, attendance.ListFilter{
		CompanyID: req.CompanyID,
		UserID:    userID,
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		return attendance.ListResponse{}, err
	}

	resp := attendance.ListResponse{
		StartDate: start.Format(timeutil.DateLayout),
		EndDate:   end.Format(timeutil.DateLayout),
		Records:   make([]attendance.AttendanceResponse, 0, len(records)),
	}
	for _, r := range records {
		resp.Records = append(resp.Records, attendance.NewAttendanceResponse(r, a.loc))
	}
	return resp, nil
}

// AdminUpdate implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) AdminUpdate(ctx context.Context, req attendance.AdminUpdateRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if _, err := company.RequireAdmin(ctx, a.membershipRepo, req.AdminID, req.CompanyID); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	record, err := a.AttendanceRepository.UpdateTimes(ctx, req.ID, req.CompanyID, req.Times())
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	if req.Status != nil && attendance.Status(*req.Status) != record.Status {
		record, err = a.AttendanceRepository.UpdateStatus(ctx, record.ID, req.CompanyID, attendance.Status(*req.Status))
		if err != nil {
			return attendance.AttendanceResponse{}, err
		}
	}

	a.dispatchEdited(req.AdminID, record)
	return attendance.NewAttendanceResponse(record, a.loc), nil
}

// AdminUpsert implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) AdminUpsert(ctx context.Context, req attendance.AdminUpsertRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if _, err := company.RequireAdmin(ctx, a.membershipRepo, req.AdminID, req.CompanyID); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	target, err := a.membershipRepo.Get(ctx, req.UserID, req.CompanyID)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get membership: %w", err)
	}
	if target == nil {
		return attendance.AttendanceResponse{}, company.ErrMembershipNotFound
	}

	status := attendance.StatusPresent
	if req.Status != nil {
		status = attendance.Status(*req.Status)
	}

	existing, err := a.AttendanceRepository.GetByUserAndDate(ctx, req.UserID, req.CompanyID, req.Day())
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	var record attendance.Attendance
	if existing == nil {
		record, err = a.AttendanceRepository.Create(ctx, attendance.Attendance{
			UserID:    req.UserID,
			CompanyID: req.CompanyID,
			Date:      req.Day(),
			Times:     req.Times(),
			Status:    status,
		})
		if errors.Is(err, attendance.ErrAttendanceExists) {
			record, err = a.AttendanceRepository.UpdateTimesByUserAndDate(ctx, req.UserID, req.CompanyID, req.Day(), req.Times())
		}
	} else {
		record, err = a.AttendanceRepository.UpdateTimes(ctx, existing.ID, req.CompanyID, req.Times())
	}
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	if req.Status != nil && record.Status != status {
		record, err = a.AttendanceRepository.UpdateStatus(ctx, record.ID, req.CompanyID, status)
		if err != nil {
			return attendance.AttendanceResponse{}, err
		}
	}

	a.dispatchEdited(req.AdminID, record)
	return attendance.NewAttendanceResponse(record, a.loc), nil
}

func (a *AttendanceServiceImpl) dispatchEdited(adminID string, record attendance.Attendance) {
	a.dispatcher.Dispatch(notification.Event{
		Type:       notification.EventAttendanceEdited,
		CompanyID:  record.CompanyID,
		UserID:     record.UserID,
		ActorID:    adminID,
		Date:       record.Date,
		OccurredAt: a.now().UTC(),
		SubjectID:  record.ID,
	})
}
