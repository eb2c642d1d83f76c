package changerequest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/kintai-line-go/internal/domain/attendance"
	"github.com/cmlabs-hris/kintai-line-go/internal/domain/changerequest"
	"github.com/cmlabs-hris/kintai-line-go/internal/domain/company"
	"github.com/cmlabs-hris/kintai-line-go/internal/domain/notification"
	"github.com/cmlabs-hris/kintai-line-go/internal/pkg/database"
	"github.com/cmlabs-hris/kintai-line-go/internal/pkg/metrics"
)

type ChangeRequestServiceImpl struct {
	changerequest.ChangeRequestRepository
	db             database.Transactor
	attendanceRepo attendance.AttendanceRepository
	membershipRepo company.MembershipRepository
	dispatcher     notification.Dispatcher
	loc            *time.Location
	now            func() time.Time
}

func NewChangeRequestService(
	db database.Transactor,
	changeRequestRepo changerequest.ChangeRequestRepository,
	attendanceRepo attendance.AttendanceRepository,
	membershipRepo company.MembershipRepository,
	dispatcher notification.Dispatcher,
	loc *time.Location,
) changerequest.ChangeRequestService {
	return &ChangeRequestServiceImpl{
		ChangeRequestRepository: changeRequestRepo,
		db:                      db,
		attendanceRepo:          attendanceRepo,
		membershipRepo:          membershipRepo,
		dispatcher:              dispatcher,
		loc:                     loc,
		now:                     time.Now,
	}
}

// Create implements changerequest.ChangeRequestService.
// Subtle: this method shadows the Create method of the embedded repository.
func (s *ChangeRequestServiceImpl) Create(ctx context.Context, req changerequest.CreateRequest) (changerequest.ChangeRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return changerequest.ChangeRequestResponse{}, err
	}

	requester, err := company.RequireMember(ctx, s.membershipRepo, req.RequesterID, req.CompanyID)
	if err != nil {
		return changerequest.ChangeRequestResponse{}, err
	}

	targetID := req.TargetUserID()
	if targetID != req.RequesterID {
		if !requester.IsAdmin {
			return changerequest.ChangeRequestResponse{}, company.ErrAdminRequired
		}
		target, err := s.membershipRepo.Get(ctx, targetID, req.CompanyID)
		if err != nil {
			return changerequest.ChangeRequestResponse{}, fmt.Errorf("failed to get membership: %w", err)
		}
		if target == nil {
			return changerequest.ChangeRequestResponse{}, company.ErrMembershipNotFound
		}
	}

	pending, err := s.ChangeRequestRepository.ExistsPending(ctx, targetID, req.CompanyID, req.Date())
	if err != nil {
		return changerequest.ChangeRequestResponse{}, err
	}
	if pending {
		return changerequest.ChangeRequestResponse{}, changerequest.ErrDuplicatePending
	}

	live, err := s.liveRecord(ctx, req, targetID)
	if err != nil {
		return changerequest.ChangeRequestResponse{}, err
	}

	cr := changerequest.ChangeRequest{
		UserID:      targetID,
		CompanyID:   req.CompanyID,
		RequestDate: req.Date(),
		Requested:   req.RequestedTimes(),
		Reason:      req.Reason,
		Status:      changerequest.StatusPending,
	}
	if live != nil {
		cr.AttendanceRecordID = &live.ID
		cr.Current = live.Times
	}
	if current := req.CurrentTimes(); current != nil {
		cr.Current = *current
	}

	created, err := s.ChangeRequestRepository.Create(ctx, cr)
	if err != nil {
		return changerequest.ChangeRequestResponse{}, err
	}
	metrics.ChangeRequests.WithLabelValues("created").Inc()

	s.dispatcher.Dispatch(notification.Event{
		Type:       notification.EventChangeRequestCreated,
		CompanyID:  created.CompanyID,
		UserID:     created.UserID,
		ActorID:    req.RequesterID,
		Date:       created.RequestDate,
		OccurredAt: s.now().UTC(),
		Reason:     created.Reason,
		SubjectID:  created.ID,
	})

	return changerequest.NewChangeRequestResponse(created, s.loc), nil
}

// liveRecord returns the record the request corrects, if one exists. An
// explicit attendance_record_id must point at the target's record for the date.
func (s *ChangeRequestServiceImpl) liveRecord(ctx context.Context, req changerequest.CreateRequest, targetID string) (*attendance.Attendance, error) {
	if req.AttendanceRecordID != nil {
		record, err := s.attendanceRepo.GetByID(ctx, *req.AttendanceRecordID, req.CompanyID)
		if err != nil {
			return nil, err
		}
		if record.UserID != targetID || !record.Date.Equal(req.Date()) {
			return nil, changerequest.ErrRecordMismatch
		}
		return &record, nil
	}
	return s.attendanceRepo.GetByUserAndDate(ctx, targetID, req.CompanyID, req.Date())
}

// Get implements changerequest.ChangeRequestService.
func (s *ChangeRequestServiceImpl) Get(ctx context.Context, requesterID string, companyID string, id string) (changerequest.ChangeRequestResponse, error) {
	requester, err := company.RequireMember(ctx, s.membershipRepo, requesterID, companyID)
	if err != nil {
		return changerequest.ChangeRequestResponse{}, err
	}

	cr, err := s.load(ctx, id, companyID)
	if err != nil {
		return changerequest.ChangeRequestResponse{}, err
	}
	if cr.UserID != requesterID && !requester.IsAdmin {
		return changerequest.ChangeRequestResponse{}, company.ErrAdminRequired
	}

	return changerequest.NewChangeRequestResponse(cr, s.loc), nil
}

// load fetches a request and hides requests of other companies.
func (s *ChangeRequestServiceImpl) load(ctx context.Context, id, companyID string) (changerequest.ChangeRequest, error) {
	cr, err := s.ChangeRequestRepository.GetByID(ctx, id)
	if err != nil {
		return changerequest.ChangeRequest{}, err
	}
	if cr.CompanyID != companyID {
		return changerequest.ChangeRequest{}, changerequest.ErrChangeRequestNotFound
	}
	return cr, nil
}

// List implements changerequest.ChangeRequestService.
// Subtle: this method shadows the List method of the embedded repository.
func (s *ChangeRequestServiceImpl) List(ctx context.Context, req changerequest.ListRequest) ([]changerequest.ChangeRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	requester, err := company.RequireMember(ctx, s.membershipRepo, req.RequesterID, req.CompanyID)
	if err != nil {
		return nil, err
	}

	filter := changerequest.ListFilter{
		CompanyID: req.CompanyID,
		Limit:     changerequest.DefaultListLimit,
	}
	switch {
	case requester.IsAdmin:
		if req.UserID != "" {
			filter.UserID = &req.UserID
		}
	case req.UserID != "" && req.UserID != req.RequesterID:
		return nil, company.ErrAdminRequired
	default:
		filter.UserID = &req.RequesterID
	}
	if req.Status != "" {
		status := changerequest.Status(req.Status)
		filter.Status = &status
	}

	requests, err := s.ChangeRequestRepository.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	resp := make([]changerequest.ChangeRequestResponse, 0, len(requests))
	for _, cr := range requests {
		resp = append(resp, changerequest.NewChangeRequestResponse(cr, s.loc))
	}
	return resp, nil
}

// Review implements changerequest.ChangeRequestService.
func (s *ChangeRequestServiceImpl) Review(ctx context.Context, req changerequest.ReviewRequest) (changerequest.ChangeRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return changerequest.ChangeRequestResponse{}, err
	}

	cr, err := s.load(ctx, req.ID, req.CompanyID)
	if err != nil {
		return changerequest.ChangeRequestResponse{}, err
	}
	if _, err := company.RequireAdmin(ctx, s.membershipRepo, req.ReviewerID, cr.CompanyID); err != nil {
		return changerequest.ChangeRequestResponse{}, err
	}
	if cr.Status != changerequest.StatusPending {
		return changerequest.ChangeRequestResponse{}, changerequest.ErrAlreadyProcessed
	}

	approve := changerequest.ReviewAction(req.Action) == changerequest.ReviewApprove
	status := changerequest.StatusRejected
	if approve {
		status = changerequest.StatusApproved
	}
	reviewedAt := s.now().UTC()

	var reviewed changerequest.ChangeRequest
	err = s.db.WithinTransaction(ctx, func(txCtx context.Context) error {
		reviewed, err = s.ChangeRequestRepository.MarkReviewed(txCtx, cr.ID, status, req.ReviewerID, reviewedAt, req.Comment)
		if err != nil {
			return err
		}
		if !approve {
			return nil
		}
		return s.reconcile(txCtx, reviewed)
	})
	if err != nil {
		return changerequest.ChangeRequestResponse{}, err
	}

	event := notification.EventChangeRequestRejected
	if approve {
		event = notification.EventChangeRequestApproved
	}
	metrics.ChangeRequests.WithLabelValues(string(status)).Inc()
	slog.Info("change request reviewed", "change_request_id", reviewed.ID, "status", status, "reviewer_id", req.ReviewerID)

	e := notification.Event{
		Type:       event,
		CompanyID:  reviewed.CompanyID,
		UserID:     reviewed.UserID,
		ActorID:    req.ReviewerID,
		Date:       reviewed.RequestDate,
		OccurredAt: reviewedAt,
		Reason:     reviewed.Reason,
		SubjectID:  reviewed.ID,
	}
	if reviewed.ReviewComment != nil {
		e.Comment = *reviewed.ReviewComment
	}
	s.dispatcher.Dispatch(e)

	return changerequest.NewChangeRequestResponse(reviewed, s.loc), nil
}

// reconcile writes the approved values onto the day's record. Without a
// linked record it inserts one, falling back to an update by natural key
// when the user created the record in the meantime.
func (s *ChangeRequestServiceImpl) reconcile(ctx context.Context, cr changerequest.ChangeRequest) error {
	if cr.AttendanceRecordID != nil {
		record, err := s.attendanceRepo.GetByID(ctx, *cr.AttendanceRecordID, cr.CompanyID)
		if err != nil {
			return err
		}
		s.warnDrift(cr, record)
		_, err = s.attendanceRepo.UpdateTimes(ctx, record.ID, cr.CompanyID, cr.Requested)
		return err
	}

	_, err := s.attendanceRepo.Create(ctx, attendance.Attendance{
		UserID:    cr.UserID,
		CompanyID: cr.CompanyID,
		Date:      cr.RequestDate,
		Times:     cr.Requested,
		Status:    attendance.StatusPresent,
	})
	if !errors.Is(err, attendance.ErrAttendanceExists) {
		return err
	}

	metrics.ChangeRequestUpsertFallbacks.Inc()
	slog.Info("record created since submission, updating by date", "change_request_id", cr.ID, "user_id", cr.UserID)
	_, err = s.attendanceRepo.UpdateTimesByUserAndDate(ctx, cr.UserID, cr.CompanyID, cr.RequestDate, cr.Requested)
	return err
}

// warnDrift logs when the record changed after the snapshot was taken. The
// approval still overwrites it.
func (s *ChangeRequestServiceImpl) warnDrift(cr changerequest.ChangeRequest, record attendance.Attendance) {
	if record.Times.Equal(cr.Current) {
		return
	}
	slog.Warn("approving change request over a record edited since submission",
		"change_request_id", cr.ID,
		"attendance_id", record.ID,
		"user_id", cr.UserID,
	)
}

// Withdraw implements changerequest.ChangeRequestService.
func (s *ChangeRequestServiceImpl) Withdraw(ctx context.Context, req changerequest.WithdrawRequest) error {
	cr, err := s.load(ctx, req.ID, req.CompanyID)
	if err != nil {
		return err
	}

	if err := s.ChangeRequestRepository.DeletePending(ctx, cr.ID, req.RequesterID); err != nil {
		return err
	}
	metrics.ChangeRequests.WithLabelValues("withdrawn").Inc()

	s.dispatcher.Dispatch(notification.Event{
		Type:       notification.EventChangeRequestWithdrawn,
		CompanyID:  cr.CompanyID,
		UserID:     cr.UserID,
		ActorID:    req.RequesterID,
		Date:       cr.RequestDate,
		OccurredAt: s.now().UTC(),
		SubjectID:  cr.ID,
	})
	return nil
}
