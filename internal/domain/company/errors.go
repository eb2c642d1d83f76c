package company

import "errors"

var (
	ErrCompanyNotFound    = errors.New("company not found")
	ErrJoinCodeTaken      = errors.New("join code already in use")
	ErrAlreadyLinked      = errors.New("already linked to this company")
	ErrNotMember          = errors.New("not a member of this company")
	ErrAdminRequired      = errors.New("admin privilege required")
	ErrMembershipNotFound = errors.New("membership not found")
	ErrLastAdmin          = errors.New("company must keep at least one admin")
	ErrNoMembership       = errors.New("not linked to any company")
)
