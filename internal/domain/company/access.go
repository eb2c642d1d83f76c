package company

import (
	"context"
	"fmt"
)

// RequireMember returns the caller's membership or ErrNotMember.
func RequireMember(ctx context.Context, repo MembershipRepository, userID, companyID string) (Membership, error) {
	m, err := repo.Get(ctx, userID, companyID)
	if err != nil {
		return Membership{}, fmt.Errorf("failed to get membership: %w", err)
	}
	if m == nil {
		return Membership{}, ErrNotMember
	}
	return *m, nil
}

// RequireAdmin returns the caller's membership or an authorization error.
func RequireAdmin(ctx context.Context, repo MembershipRepository, userID, companyID string) (Membership, error) {
	m, err := RequireMember(ctx, repo, userID, companyID)
	if err != nil {
		return Membership{}, err
	}
	if !m.IsAdmin {
		return Membership{}, ErrAdminRequired
	}
	return m, nil
}
