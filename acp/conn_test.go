package acp

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// duplexPipe joins two io.Pipe halves into a single io.ReadWriter so a
// Connection can be driven in-process without a real subprocess or
// socket, the way the teacher's tests exercise StdioTransport. Closing it
// closes the write half, which surfaces as EOF on the peer's reader.
type duplexPipe struct {
	io.Reader
	io.Writer
}

func (d *duplexPipe) Close() error {
	if wc, ok := d.Writer.(io.Closer); ok {
		return wc.Close()
	}
	return nil
}

// newConnPair returns two duplexPipes wired so writes to one are reads on
// the other, in both directions.
func newConnPair() (a, b *duplexPipe) {
	ar, bw := io.Pipe()
	br, aw := io.Pipe()
	return &duplexPipe{Reader: ar, Writer: aw}, &duplexPipe{Reader: br, Writer: bw}
}

func newTestPair(t *testing.T, agent AgentHandler, client ClientHandler) (*ClientSideConnection, *AgentSideConnection) {
	t.Helper()
	clientRW, agentRW := newConnPair()
	cc := NewClientSideConnection(clientRW, client, nil)
	ac := NewAgentSideConnection(agentRW, agent, nil)
	t.Cleanup(func() {
		cc.Close()
		ac.Close()
	})
	return cc, ac
}

func TestConnectionFullHandshakeAndPromptTurn(t *testing.T) {
	agent := &stubAgent{}
	client := &stubClient{}
	cc, _ := newTestPair(t, agent, client)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	initRes, err := cc.Initialize(ctx, InitializeParams{ProtocolVersion: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, initRes.ProtocolVersion)

	sessRes, err := cc.NewSession(ctx, SessionNewParams{Cwd: "/tmp"})
	require.NoError(t, err)
	assert.Equal(t, SessionID("sess-1"), sessRes.SessionID)
	assert.Equal(t, 1, agent.newSessionCalls)

	promptRes, err := cc.Prompt(ctx, SessionPromptParams{
		SessionID: sessRes.SessionID,
		Prompt:    []ContentBlock{{Type: ContentText, Text: "hello"}},
	})
	require.NoError(t, err)
	assert.Equal(t, StopEndTurn, promptRes.StopReason)
}

func TestConnectionRequestIDsStartAtZero(t *testing.T) {
	agent := &stubAgent{}
	client := &stubClient{}
	cc, _ := newTestPair(t, agent, client)

	var firstID, secondID RequestID
	token := cc.Subscribe(ObserverFunc(func(e Event) {
		if e.Direction == DirectionSent && e.Kind == EventRequest {
			if firstID.IsZero() {
				firstID = e.ID
			} else if secondID.IsZero() {
				secondID = e.ID
			}
		}
	}))
	defer cc.Unsubscribe(token)

	ctx := context.Background()
	_, err := cc.Initialize(ctx, InitializeParams{ProtocolVersion: 1})
	require.NoError(t, err)
	_, err = cc.NewSession(ctx, SessionNewParams{Cwd: "/tmp"})
	require.NoError(t, err)

	n, ok := firstID.Int64()
	require.True(t, ok)
	assert.Equal(t, int64(0), n, "the first request id issued by a Connection must be 0")

	n, ok = secondID.Int64()
	require.True(t, ok)
	assert.Equal(t, int64(1), n)
}

func TestConnectionAgentCallsIntoClient(t *testing.T) {
	agent := &stubAgent{}
	client := &stubClient{}
	_, ac := newTestPair(t, agent, client)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := ac.RequestPermission(ctx, RequestPermissionParams{
		SessionID: "sess-1",
		ToolCall:  ToolCallUpdate{ToolCallID: "tc1"},
		Options:   []PermissionOption{{ID: "allow", Name: "Allow", Kind: PermissionKindAllowOnce}},
	})
	require.NoError(t, err)
	assert.Equal(t, PermissionOutcomeSelected, res.Outcome.Outcome)
	assert.Equal(t, "allow", res.Outcome.OptionID)

	fileRes, err := ac.ReadTextFile(ctx, FSReadTextFileParams{SessionID: "sess-1", Path: "main.go"})
	require.NoError(t, err)
	assert.Equal(t, "package main\n", fileRes.Content)
}

func TestConnectionSessionUpdateNotificationDelivered(t *testing.T) {
	agent := &stubAgent{}
	client := &stubClient{}
	_, ac := newTestPair(t, agent, client)

	err := ac.SessionUpdate(context.Background(), SessionUpdateParams{
		SessionID: "sess-1",
		Update:    SessionUpdate{Type: UpdateAgentMessageChunk, Content: ContentBlock{Type: ContentText, Text: "hi"}},
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool { return len(client.updates) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, SessionID("sess-1"), client.updates[0].SessionID)
}

func TestConnectionClosesOnPeerEOF(t *testing.T) {
	agent := &stubAgent{}
	client := &stubClient{}
	clientRW, agentRW := newConnPair()
	cc := NewClientSideConnection(clientRW, client, nil)
	ac := NewAgentSideConnection(agentRW, agent, nil)
	t.Cleanup(func() { cc.Close(); ac.Close() })

	require.NoError(t, ac.Close())
	require.NoError(t, agentRW.Close()) // simulates the agent process exiting

	select {
	case <-cc.Done():
	case <-time.After(time.Second):
		t.Fatal("client connection never observed agent shutdown")
	}
}

func TestConnectionRejectsPendingCallsAfterClose(t *testing.T) {
	agent := &stubAgent{}
	client := &stubClient{}
	cc, ac := newTestPair(t, agent, client)
	require.NoError(t, ac.Close())
	require.NoError(t, cc.Close())

	_, err := cc.NewSession(context.Background(), SessionNewParams{Cwd: "/tmp"})
	assert.Error(t, err)
}
