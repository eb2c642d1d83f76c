package user

import "errors"

var (
	ErrUserNotFound            = errors.New("user not found")
	ErrLineUserExists          = errors.New("line user already registered")
	ErrInvalidVerificationLink = errors.New("invalid or used verification link")
)
