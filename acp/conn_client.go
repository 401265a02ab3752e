package acp

import (
	"context"
	"io"

	"go.uber.org/zap"
)

// ClientSideConnection is used by a process acting as the client: it
// serves ClientHandler for requests/notifications arriving from the
// agent, and exposes the agent-bound methods (initialize, session/*) as
// outbound calls.
type ClientSideConnection struct {
	*Connection
}

// NewClientSideConnection wires handler up to rw and starts its read
// loop. rw is typically a duplex stdio pipe to a spawned agent process.
func NewClientSideConnection(rw io.ReadWriter, handler ClientHandler, log *zap.Logger) *ClientSideConnection {
	c := newConnection(rw, sideClient, log)
	c.clientHandler = handler
	return &ClientSideConnection{Connection: c}
}

// Initialize performs the protocol handshake. Must be the first call made
// on a fresh connection.
func (cc *ClientSideConnection) Initialize(ctx context.Context, params InitializeParams) (InitializeResult, error) {
	var res InitializeResult
	err := cc.call(ctx, MethodInitialize, params, &res)
	return res, err
}

// Authenticate completes one of the agent-advertised auth methods.
func (cc *ClientSideConnection) Authenticate(ctx context.Context, params AuthenticateParams) error {
	return cc.call(ctx, MethodAuthenticate, params, nil)
}

// NewSession starts a new session.
func (cc *ClientSideConnection) NewSession(ctx context.Context, params SessionNewParams) (SessionNewResult, error) {
	var res SessionNewResult
	err := cc.call(ctx, MethodSessionNew, params, &res)
	return res, err
}

// LoadSession resumes a previously created session.
func (cc *ClientSideConnection) LoadSession(ctx context.Context, params SessionLoadParams) (SessionLoadResult, error) {
	var res SessionLoadResult
	err := cc.call(ctx, MethodSessionLoad, params, &res)
	return res, err
}

// Prompt sends a prompt turn and blocks until the agent reports a stop
// reason, after streaming any number of session/update notifications.
func (cc *ClientSideConnection) Prompt(ctx context.Context, params SessionPromptParams) (SessionPromptResult, error) {
	var res SessionPromptResult
	err := cc.call(ctx, MethodSessionPrompt, params, &res)
	return res, err
}

// Cancel asks the agent to abort an in-flight prompt turn. It is a
// notification: the turn ends via the Prompt call's own response.
func (cc *ClientSideConnection) Cancel(ctx context.Context, params SessionCancelParams) error {
	_ = ctx
	return cc.notify(MethodSessionCancel, params)
}

// SetMode switches a session's active mode and blocks for the agent's
// acknowledgement.
func (cc *ClientSideConnection) SetMode(ctx context.Context, params SessionSetModeParams) (SessionSetModeResult, error) {
	var res SessionSetModeResult
	err := cc.call(ctx, MethodSessionSetMode, params, &res)
	return res, err
}

// SetConfigOption sets one configurable option on a session (unstable
// family).
func (cc *ClientSideConnection) SetConfigOption(ctx context.Context, params SessionSetConfigOptionParams) (SessionSetConfigOptionResult, error) {
	var res SessionSetConfigOptionResult
	err := cc.call(ctx, MethodSessionSetConfigOption, params, &res)
	return res, err
}

// ListSessions enumerates the agent's known sessions (unstable family).
func (cc *ClientSideConnection) ListSessions(ctx context.Context, params SessionListParams) (SessionListResult, error) {
	var res SessionListResult
	err := cc.call(ctx, MethodSessionList, params, &res)
	return res, err
}

// ForkSession branches a new session off an existing one (unstable
// family).
func (cc *ClientSideConnection) ForkSession(ctx context.Context, params SessionForkParams) (SessionForkResult, error) {
	var res SessionForkResult
	err := cc.call(ctx, MethodSessionFork, params, &res)
	return res, err
}

// ResumeSession picks a previously listed session back up without a full
// history replay (unstable family).
func (cc *ClientSideConnection) ResumeSession(ctx context.Context, params SessionResumeParams) (SessionResumeResult, error) {
	var res SessionResumeResult
	err := cc.call(ctx, MethodSessionResume, params, &res)
	return res, err
}

// SetModel switches a session's active model (unstable family).
func (cc *ClientSideConnection) SetModel(ctx context.Context, params SessionSetModelParams) (SessionSetModelResult, error) {
	var res SessionSetModelResult
	err := cc.call(ctx, MethodSessionSetModel, params, &res)
	return res, err
}

// CallExt sends an opaque extension request to the agent and decodes its
// result into out (which may be nil to discard it).
func (cc *ClientSideConnection) CallExt(ctx context.Context, method string, params any, out any) error {
	return cc.call(ctx, method, params, out)
}

// NotifyExt sends an opaque extension notification to the agent.
func (cc *ClientSideConnection) NotifyExt(method string, params any) error {
	return cc.notify(method, params)
}
