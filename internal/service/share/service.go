package share

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cmlabs-hris/kintai-line-go/internal/config"
	"github.com/cmlabs-hris/kintai-line-go/internal/domain/attendance"
	"github.com/cmlabs-hris/kintai-line-go/internal/domain/company"
	"github.com/cmlabs-hris/kintai-line-go/internal/domain/share"
	"github.com/cmlabs-hris/kintai-line-go/internal/domain/user"
	"github.com/cmlabs-hris/kintai-line-go/internal/pkg/database"
	"github.com/cmlabs-hris/kintai-line-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/kintai-line-go/internal/pkg/timeutil"
	"github.com/cmlabs-hris/kintai-line-go/internal/pkg/token"
)

// tokenBytes gives share tokens 256 bits of entropy.
const tokenBytes = 32

type ShareServiceImpl struct {
	share.ShareRepository
	db             database.Transactor
	attendanceRepo attendance.AttendanceRepository
	userRepo       user.UserRepository
	companyRepo    company.CompanyRepository
	membershipRepo company.MembershipRepository
	cfg            config.ShareConfig
	baseURL        string
	loc            *time.Location
	now            func() time.Time
}

func NewShareService(
	db database.Transactor,
	shareRepo share.ShareRepository,
	attendanceRepo attendance.AttendanceRepository,
	userRepo user.UserRepository,
	companyRepo company.CompanyRepository,
	membershipRepo company.MembershipRepository,
	cfg config.ShareConfig,
	publicBaseURL string,
	loc *time.Location,
) share.ShareService {
	return &ShareServiceImpl{
		ShareRepository: shareRepo,
		db:              db,
		attendanceRepo:  attendanceRepo,
		userRepo:        userRepo,
		companyRepo:     companyRepo,
		membershipRepo:  membershipRepo,
		cfg:             cfg,
		baseURL:         strings.TrimRight(publicBaseURL, "/"),
		loc:             loc,
		now:             time.Now,
	}
}

func (s *ShareServiceImpl) url(tok string) string {
	if s.baseURL == "" {
		return ""
	}
	return s.baseURL + "/share/" + tok
}

// Create implements share.ShareService.
// Subtle: this method shadows the Create method of the embedded repository.
func (s *ShareServiceImpl) Create(ctx context.Context, req share.CreateRequest) (share.ShareResponse, error) {
	if err := req.Validate(s.cfg.DefaultTTLDays, s.cfg.MaxTTLDays); err != nil {
		return share.ShareResponse{}, err
	}

	requester, err := company.RequireMember(ctx, s.membershipRepo, req.RequesterID, req.CompanyID)
	if err != nil {
		return share.ShareResponse{}, err
	}

	targetID := req.Target()
	if targetID != req.RequesterID {
		if !requester.IsAdmin {
			return share.ShareResponse{}, company.ErrAdminRequired
		}
		target, err := s.membershipRepo.Get(ctx, targetID, req.CompanyID)
		if err != nil {
			return share.ShareResponse{}, fmt.Errorf("failed to get membership: %w", err)
		}
		if target == nil {
			return share.ShareResponse{}, company.ErrMembershipNotFound
		}
	}

	tok, err := token.Generate(tokenBytes)
	if err != nil {
		return share.ShareResponse{}, err
	}
	now := s.now().UTC()

	var created share.Share
	err = s.db.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.ShareRepository.DeleteByKey(txCtx, targetID, req.CompanyID, req.YearMonth); err != nil {
			return err
		}
		created, err = s.ShareRepository.Create(txCtx, share.Share{
			Token:     tok,
			UserID:    targetID,
			CompanyID: req.CompanyID,
			YearMonth: req.YearMonth,
			ExpiresAt: now.AddDate(0, 0, req.TTLDays),
			CreatedBy: req.RequesterID,
		})
		return err
	})
	if err != nil {
		return share.ShareResponse{}, err
	}

	slog.Info("share created", "share_id", created.ID, "user_id", targetID, "year_month", req.YearMonth, "ttl_days", req.TTLDays)
	return share.NewShareResponse(created, s.url(created.Token), now, s.loc), nil
}

// Resolve implements share.ShareService. Possession of the token is the only
// check; the caller is anonymous.
func (s *ShareServiceImpl) Resolve(ctx context.Context, tok string) (share.SummaryResponse, error) {
	found, err := s.ShareRepository.GetByToken(ctx, tok)
	if err != nil {
		if errors.Is(err, share.ErrShareNotFound) {
			metrics.ShareResolutions.WithLabelValues("not_found").Inc()
		}
		return share.SummaryResponse{}, err
	}
	if found.Expired(s.now()) {
		metrics.ShareResolutions.WithLabelValues("expired").Inc()
		return share.SummaryResponse{}, share.ErrShareExpired
	}

	first, last, err := timeutil.MonthRange(found.YearMonth)
	if err != nil {
		return share.SummaryResponse{}, err
	}

	var (
		owner   user.User
		comp    company.Company
		records []attendance.Attendance
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		owner, err = s.userRepo.GetByID(gctx, found.UserID)
		return err
	})
	g.Go(func() error {
		var err error
		comp, err = s.companyRepo.GetByID(gctx, found.CompanyID)
		return err
	})
	g.Go(func() error {
		var err error
		records, err = s.attendanceRepo.List(gctx, attendance.ListFilter{
			CompanyID: found.CompanyID,
			UserID:    &found.UserID,
			StartDate: first,
			EndDate:   last,
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return share.SummaryResponse{}, err
	}
	metrics.ShareResolutions.WithLabelValues("ok").Inc()

	resp := share.SummaryResponse{
		UserName:    owner.DisplayName,
		CompanyName: comp.Name,
		YearMonth:   found.YearMonth,
		ExpiresAt:   found.ExpiresAt.In(s.loc).Format(time.RFC3339),
		Records:     make([]share.SharedRecord, 0, len(records)),
		Stats:       attendance.Summarize(records),
	}
	for _, r := range records {
		resp.Records = append(resp.Records, share.NewSharedRecord(r, s.loc))
	}
	return resp, nil
}

// List implements share.ShareService.
// Subtle: this method shadows the List method of the embedded repository.
func (s *ShareServiceImpl) List(ctx context.Context, req share.ListRequest) ([]share.ShareResponse, error) {
	requester, err := company.RequireMember(ctx, s.membershipRepo, req.RequesterID, req.CompanyID)
	if err != nil {
		return nil, err
	}

	filter := share.ListFilter{CompanyID: req.CompanyID}
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

	shares, err := s.ShareRepository.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	now := s.now()
	resp := make([]share.ShareResponse, 0, len(shares))
	for _, sh := range shares {
		resp = append(resp, share.NewShareResponse(sh, s.url(sh.Token), now, s.loc))
	}
	return resp, nil
}

// Delete implements share.ShareService. Owners may always delete their own
// share; anyone else needs admin rights in the share's company.
// Subtle: this method shadows the Delete method of the embedded repository.
func (s *ShareServiceImpl) Delete(ctx context.Context, req share.DeleteRequest) error {
	found, err := s.ShareRepository.GetByID(ctx, req.ID)
	if err != nil {
		return err
	}
	if found.CompanyID != req.CompanyID {
		return share.ErrShareNotFound
	}

	if found.UserID != req.RequesterID {
		if _, err := company.RequireAdmin(ctx, s.membershipRepo, req.RequesterID, found.CompanyID); err != nil {
			return err
		}
	}

	if err := s.ShareRepository.Delete(ctx, found.ID); err != nil {
		return err
	}
	slog.Info("share deleted", "share_id", found.ID, "requester_id", req.RequesterID)
	return nil
}
