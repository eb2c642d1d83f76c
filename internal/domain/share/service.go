package share

import "context"

type ShareService interface {
	// Create replaces any share for the same (user, company, month) with a fresh token
	Create(ctx context.Context, req CreateRequest) (ShareResponse, error)
	// Resolve serves the month to any holder of the token
	Resolve(ctx context.Context, token string) (SummaryResponse, error)
	List(ctx context.Context, req ListRequest) ([]ShareResponse, error)
	Delete(ctx context.Context, req DeleteRequest) error
}
