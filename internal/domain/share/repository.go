package share

import "context"

type ListFilter struct {
	CompanyID string
	UserID    *string
}

type ShareRepository interface {
	// Create inserts a share; ErrShareConflict if the key or token is taken
	Create(ctx context.Context, share Share) (Share, error)
	GetByID(ctx context.Context, id string) (Share, error)
	GetByToken(ctx context.Context, token string) (Share, error)
	List(ctx context.Context, filter ListFilter) ([]Share, error)
	// DeleteByKey removes the share for (user, company, year month), if any
	DeleteByKey(ctx context.Context, userID string, companyID string, yearMonth string) error
	Delete(ctx context.Context, id string) error
}
