package changerequest

import "context"

type ChangeRequestService interface {
	// Create submits a correction; ErrDuplicatePending if one is already pending for the date
	Create(ctx context.Context, req CreateRequest) (ChangeRequestResponse, error)
	Get(ctx context.Context, requesterID string, companyID string, id string) (ChangeRequestResponse, error)
	List(ctx context.Context, req ListRequest) ([]ChangeRequestResponse, error)
	// Review approves or rejects; approval writes the requested times onto the record
	Review(ctx context.Context, req ReviewRequest) (ChangeRequestResponse, error)
	// Withdraw hard-deletes the requester's own pending request
	Withdraw(ctx context.Context, req WithdrawRequest) error
}
