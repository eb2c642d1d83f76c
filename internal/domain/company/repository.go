package company

import "context"

type CompanyRepository interface {
	// Create inserts a company; ErrJoinCodeTaken if the join code collides
	Create(ctx context.Context, company Company) (Company, error)
	GetByID(ctx context.Context, id string) (Company, error)
	// GetByJoinCode is an exact match on the unique join code
	GetByJoinCode(ctx context.Context, code string) (Company, error)
	SetOwner(ctx context.Context, companyID string, ownerID string) error
	UpdateJoinCode(ctx context.Context, companyID string, code string) (Company, error)
}

type MembershipRepository interface {
	// Create inserts a membership; ErrAlreadyLinked if (user, company) exists
	Create(ctx context.Context, membership Membership) (Membership, error)
	// Get returns nil, nil when the user is not a member
	Get(ctx context.Context, userID string, companyID string) (*Membership, error)
	// ListByUser returns memberships oldest first, with company names
	ListByUser(ctx context.Context, userID string) ([]Membership, error)
	// ListByCompany returns members with user identity fields
	ListByCompany(ctx context.Context, companyID string) ([]Membership, error)
	SetAdmin(ctx context.Context, userID string, companyID string, isAdmin bool) (Membership, error)
	CountAdmins(ctx context.Context, companyID string) (int, error)
	// ListAdminEmails returns verified email addresses of the company's admins
	ListAdminEmails(ctx context.Context, companyID string) ([]string, error)
}
