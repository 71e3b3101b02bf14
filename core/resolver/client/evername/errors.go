package evername

import (
	"errors"
)

var (
	// ErrFailedToConnect denotes that the naming service gateway could not
	// be dialed.
	ErrFailedToConnect = errors.New("failed to connect")
)

var (
	// errNotConnected denotes a resolve attempt on a disconnected client.
	errNotConnected = errors.New("client not connected")
)
