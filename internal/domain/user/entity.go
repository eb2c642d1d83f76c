package user

import "time"

// User is identified by their LINE user id.
type User struct {
	ID                     string
	LineUserID             string
	DisplayName            string
	PictureURL             *string
	Email                  *string
	EmailVerified          bool
	EmailVerificationToken *string
	CreatedAt              time.Time
	UpdatedAt              time.Time
}
