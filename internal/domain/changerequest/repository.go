package changerequest

import (
	"context"
	"time"
)

type ListFilter struct {
	CompanyID string
	UserID    *string
	Status    *Status
	Limit     int
}

type ChangeRequestRepository interface {
	// Create inserts a pending request; ErrDuplicatePending when one is already pending
	Create(ctx context.Context, cr ChangeRequest) (ChangeRequest, error)
	GetByID(ctx context.Context, id string) (ChangeRequest, error)
	ExistsPending(ctx context.Context, userID string, companyID string, date time.Time) (bool, error)
	List(ctx context.Context, filter ListFilter) ([]ChangeRequest, error)
	// MarkReviewed moves a pending request to status; ErrAlreadyProcessed if it is no longer pending
	MarkReviewed(ctx context.Context, id string, status Status, reviewerID string, reviewedAt time.Time, comment *string) (ChangeRequest, error)
	// DeletePending removes a pending request owned by userID; ErrChangeRequestNotFound otherwise
	DeletePending(ctx context.Context, id string, userID string) error
}
