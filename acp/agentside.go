package acp

import (
	"context"
	"encoding/json"
)

// AgentHandler is implemented by code acting as the agent: the peer role
// that receives session/new, session/prompt and the rest of the
// agent-bound method table over a Connection (spec.md §4 "Side dispatch").
type AgentHandler interface {
	Initialize(ctx context.Context, params InitializeParams) (InitializeResult, error)
	Authenticate(ctx context.Context, params AuthenticateParams) error
	NewSession(ctx context.Context, params SessionNewParams) (SessionNewResult, error)
	LoadSession(ctx context.Context, params SessionLoadParams) (SessionLoadResult, error)
	Prompt(ctx context.Context, params SessionPromptParams) (SessionPromptResult, error)
	Cancel(ctx context.Context, params SessionCancelParams) error
	SetMode(ctx context.Context, params SessionSetModeParams) (SessionSetModeResult, error)

	// Unstable session family (spec.md §6 — request/response, like every
	// other agent-bound method).
	SetConfigOption(ctx context.Context, params SessionSetConfigOptionParams) (SessionSetConfigOptionResult, error)
	ListSessions(ctx context.Context, params SessionListParams) (SessionListResult, error)
	ForkSession(ctx context.Context, params SessionForkParams) (SessionForkResult, error)
	ResumeSession(ctx context.Context, params SessionResumeParams) (SessionResumeResult, error)
	SetModel(ctx context.Context, params SessionSetModelParams) (SessionSetModelResult, error)

	// Ext handles a vendor extension method (method name prefixed "_").
	// Implementations that support no extensions can embed
	// UnimplementedAgentExt to satisfy this method.
	Ext(ctx context.Context, conn *Connection, req ExtRequest) (ExtResponse, error)
}

// UnimplementedAgentExt can be embedded in an AgentHandler to reject every
// extension method with method_not_found instead of writing a stub.
type UnimplementedAgentExt struct{}

func (UnimplementedAgentExt) Ext(context.Context, *Connection, ExtRequest) (ExtResponse, error) {
	return ExtResponse{}, NewRPCError(CodeMethodNotFound, "", nil)
}

// dispatchAgentRequest decodes params for method and invokes the matching
// AgentHandler method, marshaling the result. Unknown non-extension
// methods return method_not_found.
func dispatchAgentRequest(ctx context.Context, conn *Connection, h AgentHandler, method string, params json.RawMessage) (json.RawMessage, *RPCError) {
	switch method {
	case MethodInitialize:
		var p InitializeParams
		if err := unmarshalParams(params, &p); err != nil {
			return nil, err
		}
		res, err := h.Initialize(ctx, p)
		return marshalHandlerResult(res, err)

	case MethodSessionNew:
		var p SessionNewParams
		if err := unmarshalParams(params, &p); err != nil {
			return nil, err
		}
		res, err := h.NewSession(ctx, p)
		return marshalHandlerResult(res, err)

	case MethodSessionLoad:
		var p SessionLoadParams
		if err := unmarshalParams(params, &p); err != nil {
			return nil, err
		}
		res, err := h.LoadSession(ctx, p)
		return marshalHandlerResult(res, err)

	case MethodSessionPrompt:
		var p SessionPromptParams
		if err := unmarshalParams(params, &p); err != nil {
			return nil, err
		}
		res, err := h.Prompt(ctx, p)
		return marshalHandlerResult(res, err)

	case MethodAuthenticate:
		var p AuthenticateParams
		if err := unmarshalParams(params, &p); err != nil {
			return nil, err
		}
		if err := h.Authenticate(ctx, p); err != nil {
			return nil, toRPCError(err)
		}
		return json.RawMessage("null"), nil

	case MethodSessionSetMode:
		var p SessionSetModeParams
		if err := unmarshalParams(params, &p); err != nil {
			return nil, err
		}
		res, err := h.SetMode(ctx, p)
		return marshalHandlerResult(res, err)

	case MethodSessionSetConfigOption:
		var p SessionSetConfigOptionParams
		if err := unmarshalParams(params, &p); err != nil {
			return nil, err
		}
		res, err := h.SetConfigOption(ctx, p)
		return marshalHandlerResult(res, err)

	case MethodSessionList:
		var p SessionListParams
		if err := unmarshalParams(params, &p); err != nil {
			return nil, err
		}
		res, err := h.ListSessions(ctx, p)
		return marshalHandlerResult(res, err)

	case MethodSessionFork:
		var p SessionForkParams
		if err := unmarshalParams(params, &p); err != nil {
			return nil, err
		}
		res, err := h.ForkSession(ctx, p)
		return marshalHandlerResult(res, err)

	case MethodSessionResume:
		var p SessionResumeParams
		if err := unmarshalParams(params, &p); err != nil {
			return nil, err
		}
		res, err := h.ResumeSession(ctx, p)
		return marshalHandlerResult(res, err)

	case MethodSessionSetModel:
		var p SessionSetModelParams
		if err := unmarshalParams(params, &p); err != nil {
			return nil, err
		}
		res, err := h.SetModel(ctx, p)
		return marshalHandlerResult(res, err)

	default:
		if isExtMethod(method) {
			res, err := h.Ext(ctx, conn, ExtRequest{Method: method, Params: params})
			if err != nil {
				return nil, toRPCError(err)
			}
			if res.Result == nil {
				return json.RawMessage("null"), nil
			}
			return res.Result, nil
		}
		return nil, NewRPCError(CodeMethodNotFound, "", method)
	}
}

// dispatchAgentNotification decodes params for method and invokes the
// matching AgentHandler method. Notifications have no response to send,
// so a handler error is only logged by the Connection.
func dispatchAgentNotification(ctx context.Context, conn *Connection, h AgentHandler, method string, params json.RawMessage) error {
	switch method {
	case MethodSessionCancel:
		var p SessionCancelParams
		if err := json.Unmarshal(params, &p); err != nil {
			return err
		}
		return h.Cancel(ctx, p)

	default:
		if isExtMethod(method) {
			_, err := h.Ext(ctx, conn, ExtRequest{Method: method, Params: params})
			return err
		}
		return nil
	}
}

func unmarshalParams(params json.RawMessage, v any) *RPCError {
	if len(params) == 0 {
		return nil
	}
	if err := json.Unmarshal(params, v); err != nil {
		return NewRPCError(CodeInvalidParams, err.Error(), nil)
	}
	return validateParams(v)
}

func marshalHandlerResult(v any, err error) (json.RawMessage, *RPCError) {
	if err != nil {
		return nil, toRPCError(err)
	}
	b, merr := json.Marshal(v)
	if merr != nil {
		return nil, NewRPCError(CodeInternalError, merr.Error(), nil)
	}
	return b, nil
}

// toRPCError passes an *RPCError through unchanged and wraps any other
// error as an internal_error.
func toRPCError(err error) *RPCError {
	if err == nil {
		return nil
	}
	if rpcErr, ok := err.(*RPCError); ok {
		return rpcErr
	}
	return NewRPCError(CodeInternalError, err.Error(), nil)
}
