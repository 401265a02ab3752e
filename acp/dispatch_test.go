package acp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubAgent implements AgentHandler with canned behavior for dispatch
// tests that don't need a live Connection.
type stubAgent struct {
	UnimplementedAgentExt
	newSessionCalls int
	lastCancel      SessionCancelParams
}

func (s *stubAgent) Initialize(_ context.Context, p InitializeParams) (InitializeResult, error) {
	return InitializeResult{ProtocolVersion: p.ProtocolVersion}, nil
}
func (s *stubAgent) Authenticate(context.Context, AuthenticateParams) error { return nil }
func (s *stubAgent) NewSession(_ context.Context, p SessionNewParams) (SessionNewResult, error) {
	s.newSessionCalls++
	return SessionNewResult{SessionID: SessionID("sess-1")}, nil
}
func (s *stubAgent) LoadSession(context.Context, SessionLoadParams) (SessionLoadResult, error) {
	return SessionLoadResult{}, nil
}
func (s *stubAgent) Prompt(context.Context, SessionPromptParams) (SessionPromptResult, error) {
	return SessionPromptResult{StopReason: StopEndTurn}, nil
}
func (s *stubAgent) Cancel(_ context.Context, p SessionCancelParams) error {
	s.lastCancel = p
	return nil
}
func (s *stubAgent) SetMode(context.Context, SessionSetModeParams) (SessionSetModeResult, error) {
	return SessionSetModeResult{}, nil
}
func (s *stubAgent) SetConfigOption(context.Context, SessionSetConfigOptionParams) (SessionSetConfigOptionResult, error) {
	return SessionSetConfigOptionResult{}, nil
}
func (s *stubAgent) ListSessions(context.Context, SessionListParams) (SessionListResult, error) {
	return SessionListResult{}, nil
}
func (s *stubAgent) ForkSession(context.Context, SessionForkParams) (SessionForkResult, error) {
	return SessionForkResult{SessionID: SessionID("sess-fork")}, nil
}
func (s *stubAgent) ResumeSession(context.Context, SessionResumeParams) (SessionResumeResult, error) {
	return SessionResumeResult{}, nil
}
func (s *stubAgent) SetModel(context.Context, SessionSetModelParams) (SessionSetModelResult, error) {
	return SessionSetModelResult{}, nil
}

func TestDispatchAgentRequestCoversEveryAgentMethod(t *testing.T) {
	h := &stubAgent{}
	cases := map[string]json.RawMessage{
		MethodInitialize:             json.RawMessage(`{}`),
		MethodAuthenticate:           json.RawMessage(`{}`),
		MethodSessionNew:             json.RawMessage(`{"cwd":"/tmp"}`),
		MethodSessionLoad:            json.RawMessage(`{"sessionId":"sess-1","cwd":"/tmp"}`),
		MethodSessionPrompt:          json.RawMessage(`{"sessionId":"sess-1","prompt":[{"type":"text","text":"hi"}]}`),
		MethodSessionSetMode:         json.RawMessage(`{}`),
		MethodSessionSetConfigOption: json.RawMessage(`{}`),
		MethodSessionList:            json.RawMessage(`{}`),
		MethodSessionFork:            json.RawMessage(`{"sessionId":"sess-1"}`),
		MethodSessionResume:          json.RawMessage(`{"sessionId":"sess-1"}`),
		MethodSessionSetModel:        json.RawMessage(`{}`),
	}
	for m, params := range cases {
		result, rpcErr := dispatchAgentRequest(context.Background(), nil, h, m, params)
		require.Nil(t, rpcErr, m)
		assert.NotNil(t, result, m)
	}
}

func TestDispatchAgentRequestUnknownMethodNotFound(t *testing.T) {
	h := &stubAgent{}
	_, rpcErr := dispatchAgentRequest(context.Background(), nil, h, "session/frobnicate", nil)
	require.NotNil(t, rpcErr)
	assert.Equal(t, CodeMethodNotFound, rpcErr.Code)
}

func TestDispatchAgentRequestExtMethodPassthrough(t *testing.T) {
	h := &stubAgent{}
	_, rpcErr := dispatchAgentRequest(context.Background(), nil, h, "_vendor/ping", json.RawMessage(`{"n":1}`))
	require.NotNil(t, rpcErr)
	assert.Equal(t, CodeMethodNotFound, rpcErr.Code, "UnimplementedAgentExt rejects every ext method")
}

func TestDispatchAgentNotificationCoversEveryAgentNotification(t *testing.T) {
	h := &stubAgent{}
	params, _ := json.Marshal(SessionCancelParams{SessionID: "sess-1"})
	require.NoError(t, dispatchAgentNotification(context.Background(), nil, h, MethodSessionCancel, params))
	assert.Equal(t, SessionID("sess-1"), h.lastCancel.SessionID)
}

// stubClient implements ClientHandler with canned behavior.
type stubClient struct {
	UnimplementedClientExt
	updates []SessionUpdateParams
}

func (c *stubClient) SessionUpdate(_ context.Context, p SessionUpdateParams) error {
	c.updates = append(c.updates, p)
	return nil
}
func (c *stubClient) RequestPermission(context.Context, RequestPermissionParams) (RequestPermissionResult, error) {
	return RequestPermissionResult{Outcome: PermissionOutcome{Outcome: PermissionOutcomeSelected, OptionID: "allow"}}, nil
}
func (c *stubClient) ReadTextFile(context.Context, FSReadTextFileParams) (FSReadTextFileResult, error) {
	return FSReadTextFileResult{Content: "package main\n"}, nil
}
func (c *stubClient) WriteTextFile(context.Context, FSWriteTextFileParams) (FSWriteTextFileResult, error) {
	return FSWriteTextFileResult{}, nil
}
func (c *stubClient) CreateTerminal(context.Context, TerminalCreateParams) (TerminalCreateResult, error) {
	return TerminalCreateResult{TerminalID: "term-1"}, nil
}
func (c *stubClient) TerminalOutput(context.Context, TerminalOutputParams) (TerminalOutputResult, error) {
	return TerminalOutputResult{Output: "ok"}, nil
}
func (c *stubClient) WaitForTerminalExit(context.Context, TerminalWaitForExitParams) (TerminalWaitForExitResult, error) {
	zero := 0
	return TerminalWaitForExitResult{ExitStatus: ExitStatus{ExitCode: &zero}}, nil
}
func (c *stubClient) KillTerminal(context.Context, TerminalKillParams) error    { return nil }
func (c *stubClient) ReleaseTerminal(context.Context, TerminalReleaseParams) error { return nil }

func TestDispatchClientRequestCoversEveryClientMethod(t *testing.T) {
	h := &stubClient{}
	cases := map[string]json.RawMessage{
		MethodSessionRequestPermission: json.RawMessage(`{}`),
		MethodFSReadTextFile:           json.RawMessage(`{"sessionId":"sess-1","path":"main.go"}`),
		MethodFSWriteTextFile:          json.RawMessage(`{"sessionId":"sess-1","path":"main.go","content":""}`),
		MethodTerminalCreate:           json.RawMessage(`{"sessionId":"sess-1","command":"true"}`),
		MethodTerminalOutput:           json.RawMessage(`{}`),
		MethodTerminalWaitForExit:      json.RawMessage(`{}`),
		MethodTerminalKill:             json.RawMessage(`{}`),
		MethodTerminalRelease:          json.RawMessage(`{}`),
	}
	for m, params := range cases {
		result, rpcErr := dispatchClientRequest(context.Background(), nil, h, m, params)
		require.Nil(t, rpcErr, m)
		assert.NotNil(t, result, m)
	}
}

func TestDispatchClientNotificationSessionUpdate(t *testing.T) {
	h := &stubClient{}
	params, _ := json.Marshal(SessionUpdateParams{
		SessionID: "sess-1",
		Update:    SessionUpdate{Type: UpdateAgentMessageChunk, Content: ContentBlock{Type: ContentText, Text: "hi"}},
	})
	require.NoError(t, dispatchClientNotification(context.Background(), nil, h, MethodSessionUpdate, params))
	require.Len(t, h.updates, 1)
	assert.Equal(t, SessionID("sess-1"), h.updates[0].SessionID)
}
