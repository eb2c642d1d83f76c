package company

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/kintai-line-go/internal/pkg/validator"
)

type CreateCompanyRequest struct {
	UserID string `json:"-"`
	Name   string `json:"name"`
}

func (r *CreateCompanyRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		errs.Add("name", "name is required")
	} else if len([]rune(r.Name)) > 100 {
		errs.Add("name", "name must be at most 100 characters")
	}

	return errs.Err()
}

type LinkRequest struct {
	LineUserID  string `json:"-"`
	Code        string `json:"code"`
	DisplayName string `json:"display_name"`
}

// Validate normalizes the code to upper case before matching.
func (r *LinkRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Code = strings.ToUpper(strings.TrimSpace(r.Code))
	if validator.IsEmpty(r.LineUserID) {
		errs.Add("line_user_id", "line_user_id is required")
	}
	if r.Code == "" {
		errs.Add("code", "code is required")
	} else if !validator.IsValidJoinCode(r.Code) {
		errs.Add("code", "code must be 6 to 12 letters or digits")
	}

	return errs.Err()
}

type SetAdminRequest struct {
	RequesterID string `json:"-"`
	CompanyID   string `json:"-"`
	UserID      string `json:"-"`
	IsAdmin     *bool  `json:"is_admin"`
}

func (r *SetAdminRequest) Validate() error {
	var errs validator.ValidationErrors
	if r.IsAdmin == nil {
		errs.Add("is_admin", "is_admin is required")
	}
	return errs.Err()
}

type CompanyResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	JoinCode  *string `json:"join_code,omitempty"`
	OwnerID   *string `json:"owner_id,omitempty"`
	IsAdmin   bool    `json:"is_admin"`
	CreatedAt string  `json:"created_at"`
}

// NewCompanyResponse hides the join code from non-admins.
func NewCompanyResponse(c Company, isAdmin bool) CompanyResponse {
	resp := CompanyResponse{
		ID:        c.ID,
		Name:      c.Name,
		OwnerID:   c.OwnerID,
		IsAdmin:   isAdmin,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
	}
	if isAdmin {
		code := c.JoinCode
		resp.JoinCode = &code
	}
	return resp
}

type MembershipResponse struct {
	CompanyID   string `json:"company_id"`
	CompanyName string `json:"company_name"`
	IsAdmin     bool   `json:"is_admin"`
	JoinedAt    string `json:"joined_at"`
}

func NewMembershipResponse(m Membership) MembershipResponse {
	resp := MembershipResponse{
		CompanyID: m.CompanyID,
		IsAdmin:   m.IsAdmin,
		JoinedAt:  m.CreatedAt.Format(time.RFC3339),
	}
	if m.CompanyName != nil {
		resp.CompanyName = *m.CompanyName
	}
	return resp
}

type MemberResponse struct {
	UserID        string  `json:"user_id"`
	DisplayName   string  `json:"display_name"`
	Email         *string `json:"email,omitempty"`
	EmailVerified bool    `json:"email_verified"`
	IsAdmin       bool    `json:"is_admin"`
	JoinedAt      string  `json:"joined_at"`
}

func NewMemberResponse(m Membership) MemberResponse {
	resp := MemberResponse{
		UserID:        m.UserID,
		Email:         m.UserEmail,
		EmailVerified: m.EmailVerified,
		IsAdmin:       m.IsAdmin,
		JoinedAt:      m.CreatedAt.Format(time.RFC3339),
	}
	if m.UserName != nil {
		resp.DisplayName = *m.UserName
	}
	return resp
}
