package client

import "errors"

// Client-specific errors
var (
	ErrClientClosed  = errors.New("client is closed")
	ErrInvalidConfig = errors.New("invalid client configuration")
	ErrNoWelcome     = errors.New("server did not greet the client")
)
