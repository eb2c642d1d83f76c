package company

import "context"

type CompanyService interface {
	// Create makes the caller admin and owner of a new company
	Create(ctx context.Context, req CreateCompanyRequest) (CompanyResponse, error)
	// Link joins a LINE identity to a company by join code
	Link(ctx context.Context, req LinkRequest) (MembershipResponse, error)
	ListMine(ctx context.Context, userID string) ([]MembershipResponse, error)
	Get(ctx context.Context, userID string, companyID string) (CompanyResponse, error)
	ListMembers(ctx context.Context, requesterID string, companyID string) ([]MemberResponse, error)
	SetAdmin(ctx context.Context, req SetAdminRequest) (MemberResponse, error)
	RegenerateJoinCode(ctx context.Context, requesterID string, companyID string) (CompanyResponse, error)
	// PrimaryMembership is the earliest membership of a user; used by the bot
	PrimaryMembership(ctx context.Context, userID string) (Membership, error)
}
