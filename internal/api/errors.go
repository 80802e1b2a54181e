package api

import (
	"errors"
	"fmt"
)

// Kind discriminates API failures so callers can branch explicitly.
type Kind string

// Failure kinds.
const (
	// KindNetwork covers transport failures: refused connections, timeouts,
	// interrupted bodies. No HTTP status is available.
	KindNetwork Kind = "network"
	// KindValidation covers 4xx responses.
	KindValidation Kind = "validation"
	// KindServer covers 5xx responses.
	KindServer Kind = "server"
	// KindDecode covers 2xx responses whose body does not decode.
	KindDecode Kind = "decode"
)

// Sentinel kinds for errors.Is matching.
var (
	ErrNetwork    = errors.New("network failure")
	ErrValidation = errors.New("request rejected")
	ErrServer     = errors.New("server failure")
	ErrDecode     = errors.New("malformed response")
)

// Error is the single typed failure channel of the gateway client.
type Error struct {
	Kind    Kind
	Status  int // HTTP status when one was received, else 0
	Message string
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("api %s (status %d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("api %s: %s", e.Kind, e.Message)
}

// Unwrap maps the kind to its sentinel so errors.Is works on values.
func (e *Error) Unwrap() error {
	switch e.Kind {
	case KindValidation:
		return ErrValidation
	case KindServer:
		return ErrServer
	case KindDecode:
		return ErrDecode
	default:
		return ErrNetwork
	}
}
