package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/agentclientprotocol/acp-go/acp"
	"github.com/agentclientprotocol/acp-go/internal/transcript"
	"go.uber.org/zap"
)

// echoAgent is a minimal AgentHandler: it acknowledges sessions, echoes
// the user's prompt back as a single agent_message_chunk update, and logs
// every turn to a transcript store. It exists to give acp-agent something
// real to serve, the way a reference implementation would.
type echoAgent struct {
	acp.UnimplementedAgentExt

	log   *zap.Logger
	store *transcript.Store
	conn  *acp.AgentSideConnection

	mu       sync.Mutex
	sessions map[acp.SessionID]*acp.AgentSideConnection
}

func newEchoAgent(log *zap.Logger, store *transcript.Store) *echoAgent {
	return &echoAgent{log: log, store: store, sessions: make(map[acp.SessionID]*acp.AgentSideConnection)}
}

// bind associates this handler with the connection that will carry its
// outbound session/update calls; main wires this after construction since
// AgentHandler and Connection are built in a cycle.
func (a *echoAgent) bind(conn *acp.AgentSideConnection) {
	a.conn = conn
}

func (a *echoAgent) Initialize(_ context.Context, p acp.InitializeParams) (acp.InitializeResult, error) {
	return acp.InitializeResult{
		ProtocolVersion: p.ProtocolVersion,
		AgentCapabilities: acp.AgentCapabilities{
			LoadSession:        false,
			PromptCapabilities: acp.PromptCapabilities{Image: false, Audio: false, EmbeddedContext: true},
		},
		AgentInfo: &acp.Implementation{Name: "acp-agent", Version: "0.1.0"},
	}, nil
}

func (a *echoAgent) Authenticate(context.Context, acp.AuthenticateParams) error { return nil }

func (a *echoAgent) NewSession(ctx context.Context, p acp.SessionNewParams) (acp.SessionNewResult, error) {
	id := acp.SessionID(fmt.Sprintf("sess-%d", len(a.sessions)+1))

	a.mu.Lock()
	a.sessions[id] = a.conn
	a.mu.Unlock()

	if a.store != nil {
		if err := a.store.CreateSession(ctx, id, p.Cwd); err != nil {
			a.log.Warn("transcript: create session failed", zap.Error(err))
		}
	}
	return acp.SessionNewResult{SessionID: id}, nil
}

func (a *echoAgent) LoadSession(context.Context, acp.SessionLoadParams) (acp.SessionLoadResult, error) {
	return acp.SessionLoadResult{}, acp.NewRPCError(acp.CodeMethodNotFound, "session/load is not supported by acp-agent", nil)
}

func (a *echoAgent) Prompt(ctx context.Context, p acp.SessionPromptParams) (acp.SessionPromptResult, error) {
	var text string
	for _, block := range p.Prompt {
		if block.Type == acp.ContentText {
			text += block.Text
		}
	}
	if a.store != nil {
		_ = a.store.AddMessage(ctx, p.SessionID, transcript.Message{Role: acp.RoleUser, Content: text})
	}

	reply := "you said: " + text
	if err := a.conn.SessionUpdate(ctx, acp.SessionUpdateParams{
		SessionID: p.SessionID,
		Update:    acp.SessionUpdate{Type: acp.UpdateAgentMessageChunk, Content: acp.ContentBlock{Type: acp.ContentText, Text: reply}},
	}); err != nil {
		return acp.SessionPromptResult{}, err
	}
	if a.store != nil {
		_ = a.store.AddMessage(ctx, p.SessionID, transcript.Message{Role: acp.RoleAssistant, Content: reply})
	}

	return acp.SessionPromptResult{StopReason: acp.StopEndTurn}, nil
}

func (a *echoAgent) Cancel(context.Context, acp.SessionCancelParams) error { return nil }

func (a *echoAgent) SetMode(context.Context, acp.SessionSetModeParams) (acp.SessionSetModeResult, error) {
	return acp.SessionSetModeResult{}, nil
}

func (a *echoAgent) SetConfigOption(context.Context, acp.SessionSetConfigOptionParams) (acp.SessionSetConfigOptionResult, error) {
	return acp.SessionSetConfigOptionResult{}, nil
}

func (a *echoAgent) ListSessions(_ context.Context, acp.SessionListParams) (acp.SessionListResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	sessions := make([]acp.SessionSummary, 0, len(a.sessions))
	for id := range a.sessions {
		sessions = append(sessions, acp.SessionSummary{SessionID: id})
	}
	return acp.SessionListResult{Sessions: sessions}, nil
}

func (a *echoAgent) ForkSession(context.Context, acp.SessionForkParams) (acp.SessionForkResult, error) {
	return acp.SessionForkResult{}, acp.NewRPCError(acp.CodeMethodNotFound, "session/fork is not supported by acp-agent", nil)
}

func (a *echoAgent) ResumeSession(context.Context, acp.SessionResumeParams) (acp.SessionResumeResult, error) {
	return acp.SessionResumeResult{}, acp.NewRPCError(acp.CodeMethodNotFound, "session/resume is not supported by acp-agent", nil)
}

func (a *echoAgent) SetModel(context.Context, acp.SessionSetModelParams) (acp.SessionSetModelResult, error) {
	return acp.SessionSetModelResult{}, nil
}
