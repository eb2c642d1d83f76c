package company

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/kintai-line-go/internal/domain/company"
	"github.com/cmlabs-hris/kintai-line-go/internal/domain/user"
	"github.com/cmlabs-hris/kintai-line-go/internal/pkg/database"
	"github.com/cmlabs-hris/kintai-line-go/internal/pkg/token"
)

const (
	joinCodeLength   = 8
	joinCodeAttempts = 5
)

type CompanyServiceImpl struct {
	db database.Transactor
	company.CompanyRepository
	company.MembershipRepository
	userService user.UserService
}

func NewCompanyService(db database.Transactor, companyRepo company.CompanyRepository, membershipRepo company.MembershipRepository, userService user.UserService) company.CompanyService {
	return &CompanyServiceImpl{
		db:                   db,
		CompanyRepository:    companyRepo,
		MembershipRepository: membershipRepo,
		userService:          userService,
	}
}

// Create implements company.CompanyService.
// Subtle: this method shadows the Create methods of the embedded repositories.
func (c *CompanyServiceImpl) Create(ctx context.Context, req company.CreateCompanyRequest) (company.CompanyResponse, error) {
	if err := req.Validate(); err != nil {
		return company.CompanyResponse{}, err
	}

	var created company.Company
	var err error
	for attempt := 0; attempt < joinCodeAttempts; attempt++ {
		created, err = c.createWithAdmin(ctx, req)
		if !errors.Is(err, company.ErrJoinCodeTaken) {
			break
		}
	}
	if err != nil {
		return company.CompanyResponse{}, err
	}

	slog.Info("company created", "company_id", created.ID, "owner_id", req.UserID)
	return company.NewCompanyResponse(created, true), nil
}

// createWithAdmin inserts the company, the creator's admin membership and the
// owner back-reference in one transaction.
func (c *CompanyServiceImpl) createWithAdmin(ctx context.Context, req company.CreateCompanyRequest) (company.Company, error) {
	code, err := token.JoinCode(joinCodeLength)
	if err != nil {
		return company.Company{}, fmt.Errorf("failed to generate join code: %w", err)
	}

	var created company.Company
	err = c.db.WithinTransaction(ctx, func(txCtx context.Context) error {
		created, err = c.CompanyRepository.Create(txCtx, company.Company{Name: req.Name, JoinCode: code})
		if err != nil {
			return err
		}

		if _, err := c.MembershipRepository.Create(txCtx, company.Membership{
			UserID:    req.UserID,
			CompanyID: created.ID,
			IsAdmin:   true,
		}); err != nil {
			return fmt.Errorf("failed to create admin membership: %w", err)
		}

		if err := c.CompanyRepository.SetOwner(txCtx, created.ID, req.UserID); err != nil {
			return fmt.Errorf("failed to set company owner: %w", err)
		}
		created.OwnerID = &req.UserID
		return nil
	})
	return created, err
}

// Link implements company.CompanyService.
func (c *CompanyServiceImpl) Link(ctx context.Context, req company.LinkRequest) (company.MembershipResponse, error) {
	if err := req.Validate(); err != nil {
		return company.MembershipResponse{}, err
	}

	target, err := c.CompanyRepository.GetByJoinCode(ctx, req.Code)
	if err != nil {
		return company.MembershipResponse{}, err
	}

	u, err := c.userService.FindOrCreateByLine(ctx, req.LineUserID, req.DisplayName, nil)
	if err != nil {
		return company.MembershipResponse{}, err
	}

	existing, err := c.MembershipRepository.Get(ctx, u.ID, target.ID)
	if err != nil {
		return company.MembershipResponse{}, fmt.Errorf("failed to get membership: %w", err)
	}
	if existing != nil {
		return company.MembershipResponse{}, company.ErrAlreadyLinked
	}

	m, err := c.MembershipRepository.Create(ctx, company.Membership{UserID: u.ID, CompanyID: target.ID})
	if err != nil {
		return company.MembershipResponse{}, err
	}
	m.CompanyName = &target.Name

	slog.Info("user linked to company", "user_id", u.ID, "company_id", target.ID)
	return company.NewMembershipResponse(m), nil
}

// ListMine implements company.CompanyService.
func (c *CompanyServiceImpl) ListMine(ctx context.Context, userID string) ([]company.MembershipResponse, error) {
	memberships, err := c.MembershipRepository.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := make([]company.MembershipResponse, 0, len(memberships))
	for _, m := range memberships {
		resp = append(resp, company.NewMembershipResponse(m))
	}
	return resp, nil
}

// Get implements company.CompanyService.
func (c *CompanyServiceImpl) Get(ctx context.Context, userID string, companyID string) (company.CompanyResponse, error) {
	m, err := company.RequireMember(ctx, c.MembershipRepository, userID, companyID)
	if err != nil {
		return company.CompanyResponse{}, err
	}

	found, err := c.CompanyRepository.GetByID(ctx, companyID)
	if err != nil {
		return company.CompanyResponse{}, err
	}

	return company.NewCompanyResponse(found, m.IsAdmin), nil
}

// ListMembers implements company.CompanyService.
func (c *CompanyServiceImpl) ListMembers(ctx context.Context, requesterID string, companyID string) ([]company.MemberResponse, error) {
	if _, err := company.RequireAdmin(ctx, c.MembershipRepository, requesterID, companyID); err != nil {
		return nil, err
	}

	members, err := c.MembershipRepository.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}

	resp := make([]company.MemberResponse, 0, len(members))
	for _, m := range members {
		resp = append(resp, company.NewMemberResponse(m))
	}
	return resp, nil
}

// SetAdmin implements company.CompanyService.
// Subtle: this method shadows the method (MembershipRepository).SetAdmin.
func (c *CompanyServiceImpl) SetAdmin(ctx context.Context, req company.SetAdminRequest) (company.MemberResponse, error) {
	if err := req.Validate(); err != nil {
		return company.MemberResponse{}, err
	}
	if _, err := company.RequireAdmin(ctx, c.MembershipRepository, req.RequesterID, req.CompanyID); err != nil {
		return company.MemberResponse{}, err
	}

	var updated company.Membership
	err := c.db.WithinTransaction(ctx, func(txCtx context.Context) error {
		target, err := c.MembershipRepository.Get(txCtx, req.UserID, req.CompanyID)
		if err != nil {
			return fmt.Errorf("failed to get membership: %w", err)
		}
		if target == nil {
			return company.ErrMembershipNotFound
		}

		if target.IsAdmin && !*req.IsAdmin {
			admins, err := c.MembershipRepository.CountAdmins(txCtx, req.CompanyID)
			if err != nil {
				return err
			}
			if admins <= 1 {
				return company.ErrLastAdmin
			}
		}

		updated, err = c.MembershipRepository.SetAdmin(txCtx, req.UserID, req.CompanyID, *req.IsAdmin)
		return err
	})
	if err != nil {
		return company.MemberResponse{}, err
	}

	slog.Info("membership admin flag changed",
		"company_id", req.CompanyID, "user_id", req.UserID, "is_admin", *req.IsAdmin, "by", req.RequesterID)
	return company.NewMemberResponse(updated), nil
}

// RegenerateJoinCode implements company.CompanyService.
func (c *CompanyServiceImpl) RegenerateJoinCode(ctx context.Context, requesterID string, companyID string) (company.CompanyResponse, error) {
	if _, err := company.RequireAdmin(ctx, c.MembershipRepository, requesterID, companyID); err != nil {
		return company.CompanyResponse{}, err
	}

	for attempt := 0; attempt < joinCodeAttempts; attempt++ {
		code, err := token.JoinCode(joinCodeLength)
		if err != nil {
			return company.CompanyResponse{}, fmt.Errorf("failed to generate join code: %w", err)
		}

		updated, err := c.CompanyRepository.UpdateJoinCode(ctx, companyID, code)
		if errors.Is(err, company.ErrJoinCodeTaken) {
			continue
		}
		if err != nil {
			return company.CompanyResponse{}, err
		}
		return company.NewCompanyResponse(updated, true), nil
	}

	return company.CompanyResponse{}, company.ErrJoinCodeTaken
}

// PrimaryMembership implements company.CompanyService.
func (c *CompanyServiceImpl) PrimaryMembership(ctx context.Context, userID string) (company.Membership, error) {
	memberships, err := c.MembershipRepository.ListByUser(ctx, userID)
	if err != nil {
		return company.Membership{}, err
	}
	if len(memberships) == 0 {
		return company.Membership{}, company.ErrNoMembership
	}
	return memberships[0], nil
}
