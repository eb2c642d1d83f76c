package auth

import (
	"github.com/cmlabs-hris/kintai-line-go/internal/domain/user"
	"github.com/cmlabs-hris/kintai-line-go/internal/pkg/validator"
)

type LIFFLoginRequest struct {
	AccessToken string `json:"access_token"`
}

func (r *LIFFLoginRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.AccessToken) {
		errs.Add("access_token", "access_token is required")
	}
	return errs.Err()
}

type LineCallbackRequest struct {
	Code          string
	State         string
	ExpectedState string
}

func (r *LineCallbackRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.Code) {
		errs.Add("code", "code is required")
	}
	if validator.IsEmpty(r.State) {
		errs.Add("state", "state is required")
	}
	return errs.Err()
}

type TokenResponse struct {
	AccessToken string            `json:"access_token"`
	TokenType   string            `json:"token_type"`
	ExpiresAt   int64             `json:"expires_at"`
	User        user.UserResponse `json:"user"`
}

type StreamTokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}
