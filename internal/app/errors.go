package app

import "errors"

// Sentinel kinds for orchestration errors.
var (
	ErrNoSession    = errors.New("no active session")
	ErrNotPermitted = errors.New("operation not permitted for role")
)
