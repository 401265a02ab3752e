package acp

import (
	"context"
	"encoding/json"
)

// ExtRequest is an opaque extension method call: any request or
// notification whose method begins with "_". Both peer roles accept these
// uniformly and pass the params through untouched, since the core schema
// has no way to know what a given deployment's extension methods mean
// (spec.md §4.4, Open Questions).
type ExtRequest struct {
	Method string
	Params json.RawMessage
}

// ExtResponse is the opaque reply to an ExtRequest that was a request
// (not a notification). Leaving Result nil sends a JSON-RPC null result.
type ExtResponse struct {
	Result json.RawMessage
}

// ExtHandlerFunc handles one extension method call received over a
// Connection. Returning a non-nil *RPCError via err fails the call with a
// structured JSON-RPC error instead of CodeInternalError.
type ExtHandlerFunc func(ctx context.Context, conn *Connection, req ExtRequest) (ExtResponse, error)
