package acp

import (
	"context"
	"encoding/json"
)

// ClientHandler is implemented by code acting as the client: the peer
// role that receives session/update, fs/* and terminal/* over a
// Connection (spec.md §4 "Side dispatch").
type ClientHandler interface {
	SessionUpdate(ctx context.Context, params SessionUpdateParams) error
	RequestPermission(ctx context.Context, params RequestPermissionParams) (RequestPermissionResult, error)

	ReadTextFile(ctx context.Context, params FSReadTextFileParams) (FSReadTextFileResult, error)
	WriteTextFile(ctx context.Context, params FSWriteTextFileParams) (FSWriteTextFileResult, error)

	CreateTerminal(ctx context.Context, params TerminalCreateParams) (TerminalCreateResult, error)
	TerminalOutput(ctx context.Context, params TerminalOutputParams) (TerminalOutputResult, error)
	WaitForTerminalExit(ctx context.Context, params TerminalWaitForExitParams) (TerminalWaitForExitResult, error)
	KillTerminal(ctx context.Context, params TerminalKillParams) error
	ReleaseTerminal(ctx context.Context, params TerminalReleaseParams) error

	// Ext handles a vendor extension method (method name prefixed "_").
	Ext(ctx context.Context, conn *Connection, req ExtRequest) (ExtResponse, error)
}

// UnimplementedClientExt can be embedded in a ClientHandler to reject
// every extension method with method_not_found instead of writing a stub.
type UnimplementedClientExt struct{}

func (UnimplementedClientExt) Ext(context.Context, *Connection, ExtRequest) (ExtResponse, error) {
	return ExtResponse{}, NewRPCError(CodeMethodNotFound, "", nil)
}

func dispatchClientRequest(ctx context.Context, conn *Connection, h ClientHandler, method string, params json.RawMessage) (json.RawMessage, *RPCError) {
	switch method {
	case MethodSessionRequestPermission:
		var p RequestPermissionParams
		if err := unmarshalParams(params, &p); err != nil {
			return nil, err
		}
		res, err := h.RequestPermission(ctx, p)
		return marshalHandlerResult(res, err)

	case MethodFSReadTextFile:
		var p FSReadTextFileParams
		if err := unmarshalParams(params, &p); err != nil {
			return nil, err
		}
		res, err := h.ReadTextFile(ctx, p)
		return marshalHandlerResult(res, err)

	case MethodFSWriteTextFile:
		var p FSWriteTextFileParams
		if err := unmarshalParams(params, &p); err != nil {
			return nil, err
		}
		res, err := h.WriteTextFile(ctx, p)
		return marshalHandlerResult(res, err)

	case MethodTerminalCreate:
		var p TerminalCreateParams
		if err := unmarshalParams(params, &p); err != nil {
			return nil, err
		}
		res, err := h.CreateTerminal(ctx, p)
		return marshalHandlerResult(res, err)

	case MethodTerminalOutput:
		var p TerminalOutputParams
		if err := unmarshalParams(params, &p); err != nil {
			return nil, err
		}
		res, err := h.TerminalOutput(ctx, p)
		return marshalHandlerResult(res, err)

	case MethodTerminalWaitForExit:
		var p TerminalWaitForExitParams
		if err := unmarshalParams(params, &p); err != nil {
			return nil, err
		}
		res, err := h.WaitForTerminalExit(ctx, p)
		return marshalHandlerResult(res, err)

	case MethodTerminalKill:
		var p TerminalKillParams
		if err := unmarshalParams(params, &p); err != nil {
			return nil, err
		}
		if err := h.KillTerminal(ctx, p); err != nil {
			return nil, toRPCError(err)
		}
		return json.RawMessage("null"), nil

	case MethodTerminalRelease:
		var p TerminalReleaseParams
		if err := unmarshalParams(params, &p); err != nil {
			return nil, err
		}
		if err := h.ReleaseTerminal(ctx, p); err != nil {
			return nil, toRPCError(err)
		}
		return json.RawMessage("null"), nil

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

func dispatchClientNotification(ctx context.Context, conn *Connection, h ClientHandler, method string, params json.RawMessage) error {
	switch method {
	case MethodSessionUpdate:
		var p SessionUpdateParams
		if err := json.Unmarshal(params, &p); err != nil {
			return err
		}
		return h.SessionUpdate(ctx, p)

	default:
		if isExtMethod(method) {
			_, err := h.Ext(ctx, conn, ExtRequest{Method: method, Params: params})
			return err
		}
		return nil
	}
}
