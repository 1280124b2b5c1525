package chat

import "errors"

var (
	// ErrAuthFailed - submitted credential does not match the room secret.
	ErrAuthFailed = errors.New("chat: credential mismatch")

	// ErrInvalidSecret - room secret does not satisfy length constraints.
	ErrInvalidSecret = errors.New("chat: invalid room secret")
)
