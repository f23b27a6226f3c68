package conversation

import "errors"

var (
	// ErrInvalidMessage is returned for a blank conversation id or an unknown role.
	ErrInvalidMessage = errors.New("invalid conversation message")
)
