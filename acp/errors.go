package acp

import "errors"

// Connection-level errors, distinct from the wire-level RPCError.
var (
	// ErrClosed is returned by outbound requests and notifications once
	// the connection's read loop has observed EOF or Close has been called.
	ErrClosed = errors.New("acp: connection closed")

	// ErrTimeout is returned by an outbound request when RequestTimeout
	// elapses before a response arrives.
	ErrTimeout = errors.New("acp: request timed out")
)
