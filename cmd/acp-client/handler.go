package main

import (
	"context"
	"fmt"

	"github.com/agentclientprotocol/acp-go/acp"
	"github.com/agentclientprotocol/acp-go/internal/fsprovider"
	"github.com/agentclientprotocol/acp-go/internal/termpty"
	"go.uber.org/zap"
)

// cliHandler implements acp.ClientHandler for a terminal-driven ACP
// client: it answers fs/* and terminal/* through real providers, prints
// streamed session updates to stdout, and answers every permission
// request by selecting its first offered option, or as cancelled when it
// offers none (there is no interactive user to ask).
type cliHandler struct {
	acp.UnimplementedClientExt

	log  *zap.Logger
	fs   *fsprovider.Provider
	term *termpty.Provider
}

func newCLIHandler(log *zap.Logger) *cliHandler {
	return &cliHandler{log: log, fs: fsprovider.NewProvider(), term: termpty.NewProvider()}
}

func (h *cliHandler) SessionUpdate(_ context.Context, p acp.SessionUpdateParams) error {
	switch p.Update.Type {
	case acp.UpdateAgentMessageChunk:
		fmt.Print(p.Update.Content.Text)
	case acp.UpdateAgentThoughtChunk:
		h.log.Debug("agent thought", zap.String("text", p.Update.Content.Text))
	case acp.UpdatePlan:
		for _, entry := range p.Update.Plan.Entries {
			h.log.Info("plan", zap.String("step", entry.Content), zap.String("status", entry.Status))
		}
	case acp.UpdateToolCall, acp.UpdateToolCallUpdate:
		title, _ := p.Update.ToolCall.Title.Get()
		status, _ := p.Update.ToolCall.Status.Get()
		h.log.Info("tool call", zap.String("id", p.Update.ToolCall.ToolCallID), zap.String("title", title), zap.String("status", status))
	}
	return nil
}

func (h *cliHandler) RequestPermission(_ context.Context, p acp.RequestPermissionParams) (acp.RequestPermissionResult, error) {
	if len(p.Options) == 0 {
		return acp.RequestPermissionResult{Outcome: acp.PermissionOutcome{Outcome: acp.PermissionOutcomeCancelled}}, nil
	}
	return acp.RequestPermissionResult{Outcome: acp.PermissionOutcome{
		Outcome:  acp.PermissionOutcomeSelected,
		OptionID: p.Options[0].ID,
	}}, nil
}

func (h *cliHandler) ReadTextFile(ctx context.Context, p acp.FSReadTextFileParams) (acp.FSReadTextFileResult, error) {
	return h.fs.ReadTextFile(ctx, p)
}

func (h *cliHandler) WriteTextFile(ctx context.Context, p acp.FSWriteTextFileParams) (acp.FSWriteTextFileResult, error) {
	return h.fs.WriteTextFile(ctx, p)
}

func (h *cliHandler) CreateTerminal(ctx context.Context, p acp.TerminalCreateParams) (acp.TerminalCreateResult, error) {
	return h.term.CreateTerminal(ctx, p)
}

func (h *cliHandler) TerminalOutput(ctx context.Context, p acp.TerminalOutputParams) (acp.TerminalOutputResult, error) {
	return h.term.TerminalOutput(ctx, p)
}

func (h *cliHandler) WaitForTerminalExit(ctx context.Context, p acp.TerminalWaitForExitParams) (acp.TerminalWaitForExitResult, error) {
	return h.term.WaitForTerminalExit(ctx, p)
}

func (h *cliHandler) KillTerminal(ctx context.Context, p acp.TerminalKillParams) error {
	return h.term.KillTerminal(ctx, p)
}

func (h *cliHandler) ReleaseTerminal(ctx context.Context, p acp.TerminalReleaseParams) error {
	return h.term.ReleaseTerminal(ctx, p)
}
