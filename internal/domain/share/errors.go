package share

import "errors"

var (
	ErrShareNotFound = errors.New("share not found")
	ErrShareExpired  = errors.New("share link has expired")
	ErrShareConflict = errors.New("share is being created concurrently, please retry")
)
