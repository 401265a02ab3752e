// Package fsprovider implements the client side of the fs/* ACP methods:
// reading and writing text files on behalf of an agent, with change
// tracking for undo/review.
package fsprovider

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/agentclientprotocol/acp-go/acp"
)

// FileChange records a single file modification made by an agent,
// capturing before/after content for undo and review.
type FileChange struct {
	Path       string
	OldContent string
	NewContent string
	Timestamp  time.Time
	SessionID  acp.SessionID
}

// Provider answers fs/read_text_file and fs/write_text_file requests from
// agents. It reads and writes files on disk, tracks all modifications for
// undo/review, and emits events when files are changed.
type Provider struct {
	mu            sync.RWMutex
	changes       []FileChange
	onFileChanged func(FileChange)
}

// NewProvider creates a new file system Provider.
func NewProvider() *Provider {
	return &Provider{}
}

// ReadTextFile implements the fs/read_text_file portion of
// acp.ClientHandler: Line is a 1-based start offset (0/nil defaults to 1),
// Limit caps the number of lines returned (0/nil returns through EOF).
func (p *Provider) ReadTextFile(_ context.Context, params acp.FSReadTextFileParams) (acp.FSReadTextFileResult, error) {
	f, err := os.Open(params.Path)
	if err != nil {
		return acp.FSReadTextFileResult{}, fmt.Errorf("fsprovider: open %s: %w", params.Path, err)
	}
	defer f.Close()

	var allLines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		allLines = append(allLines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return acp.FSReadTextFileResult{}, fmt.Errorf("fsprovider: read %s: %w", params.Path, err)
	}

	totalLines := len(allLines)
	offset := 1
	if params.Line != nil && *params.Line > 0 {
		offset = *params.Line
	}
	if offset > totalLines {
		return acp.FSReadTextFileResult{Content: ""}, nil
	}

	startIdx := offset - 1
	endIdx := totalLines
	if params.Limit != nil && *params.Limit > 0 {
		if candidate := startIdx + *params.Limit; candidate < endIdx {
			endIdx = candidate
		}
	}

	content := strings.Join(allLines[startIdx:endIdx], "\n")
	if endIdx == totalLines && totalLines > 0 {
		content += "\n"
	}
	return acp.FSReadTextFileResult{Content: content}, nil
}

// WriteTextFile implements the fs/write_text_file portion of
// acp.ClientHandler: it creates parent directories as needed and records
// the before/after content for GetChanges.
func (p *Provider) WriteTextFile(_ context.Context, params acp.FSWriteTextFileParams) (acp.FSWriteTextFileResult, error) {
	var oldContent string
	if data, err := os.ReadFile(params.Path); err == nil {
		oldContent = string(data)
	}

	if err := os.MkdirAll(filepath.Dir(params.Path), 0o755); err != nil {
		return acp.FSWriteTextFileResult{}, fmt.Errorf("fsprovider: mkdir for %s: %w", params.Path, err)
	}
	if err := os.WriteFile(params.Path, []byte(params.Content), 0o644); err != nil {
		return acp.FSWriteTextFileResult{}, fmt.Errorf("fsprovider: write %s: %w", params.Path, err)
	}

	change := FileChange{
		Path:       params.Path,
		OldContent: oldContent,
		NewContent: params.Content,
		Timestamp:  time.Now(),
		SessionID:  params.SessionID,
	}

	p.mu.Lock()
	p.changes = append(p.changes, change)
	handler := p.onFileChanged
	p.mu.Unlock()

	if handler != nil {
		handler(change)
	}
	return acp.FSWriteTextFileResult{}, nil
}

// GetChanges returns a copy of all recorded file changes.
func (p *Provider) GetChanges() []FileChange {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]FileChange, len(p.changes))
	copy(out, p.changes)
	return out
}

// OnFileChanged registers a callback invoked whenever a file is written.
// Only one handler is supported; subsequent calls replace the previous
// handler.
func (p *Provider) OnFileChanged(handler func(FileChange)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onFileChanged = handler
}
