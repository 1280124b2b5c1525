package registry

import "errors"

var (
	// ErrDuplicateID - returned when an identity is already registered.
	ErrDuplicateID = errors.New("registry: connection identity already registered")

	// ErrNilConn - returned on an attempt to register a nil connection.
	ErrNilConn = errors.New("registry: connection is nil")

	// ErrRoomFull - returned when an insert would grow the registry past
	// its capacity.
	ErrRoomFull = errors.New("registry: room capacity reached")
)
