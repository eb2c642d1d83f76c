package company

import "time"

type Company struct {
	ID        string
	Name      string
	JoinCode  string
	OwnerID   *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Membership links a user to a company. Admin privilege is per pair.
type Membership struct {
	ID        string
	UserID    string
	CompanyID string
	IsAdmin   bool
	CreatedAt time.Time

	// Joined fields
	CompanyName   *string
	UserName      *string
	UserEmail     *string
	EmailVerified bool
}
