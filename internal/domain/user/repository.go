package user

import "context"

type UserRepository interface {
	Create(ctx context.Context, user User) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
	GetByLineUserID(ctx context.Context, lineUserID string) (User, error)
	// UpdateProfile sets display name and picture
	UpdateProfile(ctx context.Context, id string, displayName string, pictureURL *string) (User, error)
	// SetEmail stores an unverified address together with its verification token
	SetEmail(ctx context.Context, id string, email *string, verificationToken *string) (User, error)
	// VerifyEmail marks the address owning token as verified and clears the token
	VerifyEmail(ctx context.Context, verificationToken string) (User, error)
}
