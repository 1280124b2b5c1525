package client

import "errors"

var (
	// ErrAuthFailed - the server rejected the submitted room secret.
	ErrAuthFailed = errors.New("client: room secret rejected")

	// ErrServerFull - the room is at capacity.
	ErrServerFull = errors.New("client: server is full")

	// ErrProtocol - the server answered outside the handshake vocabulary.
	ErrProtocol = errors.New("client: unexpected server response")

	// ErrTooLong - outbound body exceeds the wire limit; nothing was sent.
	ErrTooLong = errors.New("client: message is too long")
)
