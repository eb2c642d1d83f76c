package auth

import "errors"

var (
	ErrInvalidToken    = errors.New("invalid token")
	ErrInvalidState    = errors.New("invalid oauth state")
	ErrLineAuthFailed  = errors.New("LINE authentication failed")
	ErrUnauthenticated = errors.New("authentication required")
)
