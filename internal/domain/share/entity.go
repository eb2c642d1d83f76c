package share

import "time"

// Share binds a bearer token to one month of one user's records.
type Share struct {
	ID        string
	Token     string
	UserID    string
	CompanyID string
	YearMonth string
	ExpiresAt time.Time
	CreatedBy string
	CreatedAt time.Time

	// Joined from users
	UserName *string
}

// Expired reports whether the share is no longer valid at now.
func (s Share) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
