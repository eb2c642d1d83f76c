package user

import (
	"strings"

	"github.com/cmlabs-hris/kintai-line-go/internal/pkg/validator"
)

type UpdateProfileRequest struct {
	UserID      string  `json:"-"`
	DisplayName *string `json:"display_name"`
	// Email set to "" removes the address.
	Email *string `json:"email"`
}

func (r *UpdateProfileRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.DisplayName != nil {
		name := strings.TrimSpace(*r.DisplayName)
		if name == "" {
			errs.Add("display_name", "display_name must not be empty")
		} else if len([]rune(name)) > 100 {
			errs.Add("display_name", "display_name must be at most 100 characters")
		}
		r.DisplayName = &name
	}
	if r.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*r.Email))
		if email != "" && !validator.IsValidEmail(email) {
			errs.Add("email", "email is invalid")
		}
		r.Email = &email
	}

	return errs.Err()
}

type VerifyEmailRequest struct {
	Token string `json:"token"`
}

func (r *VerifyEmailRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.Token) {
		errs.Add("token", "token is required")
	}
	return errs.Err()
}

type UserResponse struct {
	ID            string  `json:"id"`
	LineUserID    string  `json:"line_user_id"`
	DisplayName   string  `json:"display_name"`
	PictureURL    *string `json:"picture_url,omitempty"`
	Email         *string `json:"email,omitempty"`
	EmailVerified bool    `json:"email_verified"`
}

func NewUserResponse(u User) UserResponse {
	return UserResponse{
		ID:            u.ID,
		LineUserID:    u.LineUserID,
		DisplayName:   u.DisplayName,
		PictureURL:    u.PictureURL,
		Email:         u.Email,
		EmailVerified: u.EmailVerified,
	}
}
