package realtime

import "errors"

var (
	// ErrConfiguration means Connect was called without a base URL or identifier.
	ErrConfiguration = errors.New("realtime: configuration error")

	// ErrTransport is recorded when the socket reports an error. The close that
	// follows drives reconnection, not the error itself.
	ErrTransport = errors.New("realtime: transport error")

	// ErrProtocol marks a frame that could not be decoded. Such frames are dropped.
	ErrProtocol = errors.New("realtime: malformed message")

	// ErrReconnectExhausted is terminal until Connect is called again.
	ErrReconnectExhausted = errors.New("realtime: reconnect attempts exhausted")

	// ErrNotConnected is returned by Send while no connection is open.
	ErrNotConnected = errors.New("realtime: not connected")
)
