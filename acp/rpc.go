package acp

import (
	"encoding/json"
	"fmt"
)

// protocolVersionLiteral is the jsonrpc version string every emitted
// message must carry, and the only value accepted on input besides
// omission (spec.md §3.1, §6).
const protocolVersionLiteral = "2.0"

// Standard JSON-RPC 2.0 and ACP-specific error codes (spec.md §3.1).
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
	CodeAuthRequired   = -32000
	CodeResourceNotFound = -32002
)

var defaultMessages = map[int]string{
	CodeParseError:       "Parse error",
	CodeInvalidRequest:   "Invalid request",
	CodeMethodNotFound:   "Method not found",
	CodeInvalidParams:    "Invalid params",
	CodeInternalError:    "Internal error",
	CodeAuthRequired:     "Authentication required",
	CodeResourceNotFound: "Resource not found",
}

// DefaultMessage returns the canonical message for a well-known error code,
// or "" if code is not one of the codes spec.md §3.1 names.
func DefaultMessage(code int) string {
	return defaultMessages[code]
}

// RPCError is a JSON-RPC 2.0 error object: {code, message, data?}.
type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("acp: rpc error %d: %s", e.Code, e.Message)
}

// NewRPCError builds an RPCError using the default message for code when
// message is empty.
func NewRPCError(code int, message string, data any) *RPCError {
	if message == "" {
		message = DefaultMessage(code)
	}
	e := &RPCError{Code: code, Message: message}
	if data != nil {
		if b, err := json.Marshal(data); err == nil {
			e.Data = b
		}
	}
	return e
}

// ResourceNotFoundData is the conventional `data` payload for a
// resource_not_found error.
type ResourceNotFoundData struct {
	URI string `json:"uri"`
}

// RequestID is the opaque JSON-RPC request identifier: absent (notification
// only), JSON null, an integer, or a string. It is never interpreted beyond
// equality comparison for correlation (spec.md §3.1).
type RequestID struct {
	raw json.RawMessage
}

// NewRequestID wraps an integer id.
func NewRequestID(id int64) RequestID {
	b, _ := json.Marshal(id)
	return RequestID{raw: b}
}

// NewStringRequestID wraps a string id.
func NewStringRequestID(id string) RequestID {
	b, _ := json.Marshal(id)
	return RequestID{raw: b}
}

// NullRequestID returns the JSON-null request id, accepted leniently on
// read per spec.md §6.
func NullRequestID() RequestID {
	return RequestID{raw: json.RawMessage("null")}
}

// IsZero reports whether the RequestID was never set (absent from the
// wire, i.e. a notification).
func (id RequestID) IsZero() bool { return len(id.raw) == 0 }

// Equal compares two request ids by their raw JSON encoding.
func (id RequestID) Equal(other RequestID) bool {
	return string(id.raw) == string(other.raw)
}

// Int64 reports the id as an int64 if it decodes as a JSON number.
func (id RequestID) Int64() (int64, bool) {
	if len(id.raw) == 0 {
		return 0, false
	}
	var n int64
	if err := json.Unmarshal(id.raw, &n); err != nil {
		return 0, false
	}
	return n, true
}

func (id RequestID) MarshalJSON() ([]byte, error) {
	if len(id.raw) == 0 {
		return json.Marshal(nil)
	}
	return id.raw, nil
}

func (id *RequestID) UnmarshalJSON(data []byte) error {
	id.raw = append(id.raw[:0], data...)
	return nil
}

func (id RequestID) String() string {
	if len(id.raw) == 0 {
		return "<none>"
	}
	return string(id.raw)
}

// envelope is the generic shape every JSON-RPC message is first decoded
// into so the connection runtime can classify it before dispatch
// (spec.md §4.2).
type envelope struct {
	JSONRPC string          `json:"jsonrpc,omitempty"`
	ID      *RequestID      `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// messageKind classifies a decoded envelope per the table in spec.md §4.2.
type messageKind int

const (
	kindInvalid messageKind = iota
	kindRequest
	kindResponse
	kindNotification
)

func (e *envelope) classify() messageKind {
	hasID := e.ID != nil
	hasMethod := e.Method != ""
	hasResultOrError := e.Result != nil || e.Error != nil

	switch {
	case hasID && hasMethod:
		return kindRequest
	case hasID && !hasMethod && hasResultOrError:
		return kindResponse
	case !hasID && hasMethod:
		return kindNotification
	default:
		return kindInvalid
	}
}

// checkVersion validates the jsonrpc field per spec.md §3.1/§6: absent is
// accepted as 2.0, present-and-wrong is a framing error.
func (e *envelope) checkVersion() error {
	if e.JSONRPC == "" || e.JSONRPC == protocolVersionLiteral {
		return nil
	}
	return fmt.Errorf("acp: unsupported jsonrpc version %q", e.JSONRPC)
}

// Request is an outbound or inbound JSON-RPC request.
type Request struct {
	ID     RequestID
	Method string
	Params json.RawMessage
}

// Response is an outbound or inbound JSON-RPC response. Exactly one of
// Result/Err is set.
type Response struct {
	ID     RequestID
	Result json.RawMessage
	Err    *RPCError
}

// Notification is an outbound or inbound JSON-RPC notification.
type Notification struct {
	Method string
	Params json.RawMessage
}

func (r *Request) toEnvelope() *envelope {
	id := r.ID
	return &envelope{JSONRPC: protocolVersionLiteral, ID: &id, Method: r.Method, Params: r.Params}
}

func (r *Response) toEnvelope() *envelope {
	id := r.ID
	e := &envelope{JSONRPC: protocolVersionLiteral, ID: &id}
	if r.Err != nil {
		e.Error = r.Err
	} else {
		if r.Result == nil {
			e.Result = json.RawMessage("null")
		} else {
			e.Result = r.Result
		}
	}
	return e
}

func (n *Notification) toEnvelope() *envelope {
	return &envelope{JSONRPC: protocolVersionLiteral, Method: n.Method, Params: n.Params}
}
