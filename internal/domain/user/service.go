package user

import "context"

type UserService interface {
	// FindOrCreateByLine resolves a LINE identity, creating the user on first sight
	FindOrCreateByLine(ctx context.Context, lineUserID string, displayName string, pictureURL *string) (User, error)
	GetProfile(ctx context.Context, userID string) (UserResponse, error)
	UpdateProfile(ctx context.Context, req UpdateProfileRequest) (UserResponse, error)
	VerifyEmail(ctx context.Context, req VerifyEmailRequest) (UserResponse, error)
}
