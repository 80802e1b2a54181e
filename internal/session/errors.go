package session

import "errors"

// Sentinel kinds for session errors.
var (
	ErrInvalidIdentity = errors.New("invalid identity")
)
