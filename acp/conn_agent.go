package acp

import (
	"context"
	"io"

	"go.uber.org/zap"
)

// AgentSideConnection is used by a process acting as the agent: it serves
// AgentHandler for requests/notifications arriving from the client, and
// exposes the client-bound methods (fs/*, terminal/*,
// session/request_permission, session/update) as outbound calls.
type AgentSideConnection struct {
	*Connection
}

// NewAgentSideConnection wires handler up to rw and starts its read loop.
// rw is typically a duplex stdio pipe to the client process, but any
// io.ReadWriter works (see wsduplex for a WebSocket-backed one).
func NewAgentSideConnection(rw io.ReadWriter, handler AgentHandler, log *zap.Logger) *AgentSideConnection {
	c := newConnection(rw, sideAgent, log)
	c.agentHandler = handler
	return &AgentSideConnection{Connection: c}
}

// SessionUpdate streams one update to the client for an in-flight prompt
// turn. It is a notification: the client never replies.
func (a *AgentSideConnection) SessionUpdate(ctx context.Context, params SessionUpdateParams) error {
	_ = ctx
	return a.notify(MethodSessionUpdate, params)
}

// RequestPermission asks the client to authorize a tool call.
func (a *AgentSideConnection) RequestPermission(ctx context.Context, params RequestPermissionParams) (RequestPermissionResult, error) {
	var res RequestPermissionResult
	err := a.call(ctx, MethodSessionRequestPermission, params, &res)
	return res, err
}

// ReadTextFile reads a file through the client.
func (a *AgentSideConnection) ReadTextFile(ctx context.Context, params FSReadTextFileParams) (FSReadTextFileResult, error) {
	var res FSReadTextFileResult
	err := a.call(ctx, MethodFSReadTextFile, params, &res)
	return res, err
}

// WriteTextFile writes a file through the client.
func (a *AgentSideConnection) WriteTextFile(ctx context.Context, params FSWriteTextFileParams) (FSWriteTextFileResult, error) {
	var res FSWriteTextFileResult
	err := a.call(ctx, MethodFSWriteTextFile, params, &res)
	return res, err
}

// CreateTerminal asks the client to spawn a command and attach a terminal.
func (a *AgentSideConnection) CreateTerminal(ctx context.Context, params TerminalCreateParams) (TerminalCreateResult, error) {
	var res TerminalCreateResult
	err := a.call(ctx, MethodTerminalCreate, params, &res)
	return res, err
}

// TerminalOutput polls a terminal's buffered output.
func (a *AgentSideConnection) TerminalOutput(ctx context.Context, params TerminalOutputParams) (TerminalOutputResult, error) {
	var res TerminalOutputResult
	err := a.call(ctx, MethodTerminalOutput, params, &res)
	return res, err
}

// WaitForTerminalExit blocks until a terminal's command exits.
func (a *AgentSideConnection) WaitForTerminalExit(ctx context.Context, params TerminalWaitForExitParams) (TerminalWaitForExitResult, error) {
	var res TerminalWaitForExitResult
	err := a.call(ctx, MethodTerminalWaitForExit, params, &res)
	return res, err
}

// KillTerminal sends SIGTERM (then SIGKILL) to a terminal's command.
func (a *AgentSideConnection) KillTerminal(ctx context.Context, params TerminalKillParams) error {
	return a.call(ctx, MethodTerminalKill, params, nil)
}

// ReleaseTerminal frees a terminal's resources.
func (a *AgentSideConnection) ReleaseTerminal(ctx context.Context, params TerminalReleaseParams) error {
	return a.call(ctx, MethodTerminalRelease, params, nil)
}

// CallExt sends an opaque extension request to the client and decodes its
// result into out (which may be nil to discard it).
func (a *AgentSideConnection) CallExt(ctx context.Context, method string, params any, out any) error {
	return a.call(ctx, method, params, out)
}

// NotifyExt sends an opaque extension notification to the client.
func (a *AgentSideConnection) NotifyExt(method string, params any) error {
	return a.notify(method, params)
}
