// Package termpty implements the client side of the terminal/* ACP
// methods over a real pseudo-terminal, so commands that detect a TTY
// (interactive build tools, colorized output) behave the same way they
// would in a user's own shell.
package termpty

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/agentclientprotocol/acp-go/acp"
	"github.com/creack/pty"
	"github.com/google/uuid"
)

// Terminal represents a single subprocess spawned on behalf of an agent,
// attached to its own pty.
type Terminal struct {
	ID        acp.TerminalID
	SessionID acp.SessionID
	Command   string
	Args      []string
	Cwd       string

	output     bytes.Buffer
	truncated  bool
	byteLimit  int
	exitStatus *acp.ExitStatus

	cmd  *exec.Cmd
	pty  io.ReadWriteCloser
	done chan struct{}
	mu   sync.Mutex
}

// Provider manages terminal instances created by agents: it starts
// subprocesses under a pty, captures their output, and answers
// terminal/output, terminal/wait_for_exit, terminal/kill and
// terminal/release.
type Provider struct {
	mu        sync.RWMutex
	terminals map[acp.TerminalID]*Terminal
	onOutput  func(id acp.TerminalID, data string)
}

// NewProvider creates a new terminal Provider.
func NewProvider() *Provider {
	return &Provider{terminals: make(map[acp.TerminalID]*Terminal)}
}

// CreateTerminal implements the terminal/create portion of
// acp.ClientHandler. The subprocess runs attached to a pty whose combined
// output is captured into an in-memory ring buffer, truncated from the
// front once it exceeds OutputByteLimit (1MiB by default).
func (p *Provider) CreateTerminal(_ context.Context, params acp.TerminalCreateParams) (acp.TerminalCreateResult, error) {
	id := acp.TerminalID(uuid.New().String())

	cmd := exec.Command(params.Command, params.Args...)
	if params.Cwd != "" {
		cmd.Dir = params.Cwd
	}
	for _, e := range params.Env {
		cmd.Env = append(cmd.Env, e.Name+"="+e.Value)
	}

	byteLimit := 1024 * 1024
	if params.OutputByteLimit != nil && *params.OutputByteLimit > 0 {
		byteLimit = *params.OutputByteLimit
	}

	t := &Terminal{
		ID:        id,
		SessionID: params.SessionID,
		Command:   params.Command,
		Args:      params.Args,
		Cwd:       params.Cwd,
		byteLimit: byteLimit,
		cmd:       cmd,
		done:      make(chan struct{}),
	}

	f, err := pty.Start(cmd)
	if err != nil {
		return acp.TerminalCreateResult{}, fmt.Errorf("termpty: start %q: %w", params.Command, err)
	}
	t.pty = f

	p.mu.Lock()
	p.terminals[id] = t
	p.mu.Unlock()

	go p.readOutput(t)
	go p.waitForProcess(t)

	return acp.TerminalCreateResult{TerminalID: id}, nil
}

func (p *Provider) readOutput(t *Terminal) {
	buf := make([]byte, 4096)
	for {
		n, err := t.pty.Read(buf)
		if n > 0 {
			chunk := append([]byte(nil), buf[:n]...)

			t.mu.Lock()
			t.output.Write(chunk)
			if t.output.Len() > t.byteLimit {
				data := t.output.Bytes()
				excess := len(data) - t.byteLimit
				t.output.Reset()
				t.output.Write(data[excess:])
				t.truncated = true
			}
			t.mu.Unlock()

			p.mu.RLock()
			handler := p.onOutput
			p.mu.RUnlock()
			if handler != nil {
				handler(t.ID, string(chunk))
			}
		}
		if err != nil {
			return
		}
	}
}

func (p *Provider) waitForProcess(t *Terminal) {
	err := t.cmd.Wait()
	_ = t.pty.Close()

	t.mu.Lock()
	defer t.mu.Unlock()

	status := acp.ExitStatus{}
	switch e := err.(type) {
	case nil:
		code := 0
		status.ExitCode = &code
	case *exec.ExitError:
		code := e.ExitCode()
		status.ExitCode = &code
		if ws, ok := e.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			sig := ws.Signal().String()
			status.Signal = &sig
		}
	default:
		code := -1
		status.ExitCode = &code
	}

	t.exitStatus = &status
	close(t.done)
}

func (p *Provider) get(id acp.TerminalID) (*Terminal, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	t, ok := p.terminals[id]
	if !ok {
		return nil, fmt.Errorf("termpty: terminal %q not found", id)
	}
	return t, nil
}

// TerminalOutput implements terminal/output.
func (p *Provider) TerminalOutput(_ context.Context, params acp.TerminalOutputParams) (acp.TerminalOutputResult, error) {
	t, err := p.get(params.TerminalID)
	if err != nil {
		return acp.TerminalOutputResult{}, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return acp.TerminalOutputResult{
		Output:     t.output.String(),
		Truncated:  t.truncated,
		ExitStatus: t.exitStatus,
	}, nil
}

// WaitForTerminalExit implements terminal/wait_for_exit.
func (p *Provider) WaitForTerminalExit(ctx context.Context, params acp.TerminalWaitForExitParams) (acp.TerminalWaitForExitResult, error) {
	t, err := p.get(params.TerminalID)
	if err != nil {
		return acp.TerminalWaitForExitResult{}, err
	}
	select {
	case <-t.done:
	case <-ctx.Done():
		return acp.TerminalWaitForExitResult{}, ctx.Err()
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return acp.TerminalWaitForExitResult{ExitStatus: *t.exitStatus}, nil
}

// KillTerminal implements terminal/kill: SIGTERM, then SIGKILL after a
// five second grace period.
func (p *Provider) KillTerminal(_ context.Context, params acp.TerminalKillParams) error {
	t, err := p.get(params.TerminalID)
	if err != nil {
		return err
	}

	t.mu.Lock()
	alreadyExited := t.exitStatus != nil
	process := t.cmd.Process
	t.mu.Unlock()
	if alreadyExited || process == nil {
		return nil
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		return nil // likely already exited
	}

	select {
	case <-t.done:
	case <-time.After(5 * time.Second):
		_ = process.Signal(syscall.SIGKILL)
		<-t.done
	}
	return nil
}

// ReleaseTerminal implements terminal/release: kills the subprocess if
// still running and forgets the terminal.
func (p *Provider) ReleaseTerminal(ctx context.Context, params acp.TerminalReleaseParams) error {
	if _, err := p.get(params.TerminalID); err != nil {
		return err
	}
	_ = p.KillTerminal(ctx, acp.TerminalKillParams{TerminalID: params.TerminalID})

	p.mu.Lock()
	delete(p.terminals, params.TerminalID)
	p.mu.Unlock()
	return nil
}

// OnOutput registers a callback invoked whenever new output is read from
// any terminal. Only one handler is supported; subsequent calls replace
// the previous handler.
func (p *Provider) OnOutput(handler func(id acp.TerminalID, data string)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onOutput = handler
}

// CloseAll kills and releases all active terminals.
func (p *Provider) CloseAll() {
	p.mu.RLock()
	ids := make([]acp.TerminalID, 0, len(p.terminals))
	for id := range p.terminals {
		ids = append(ids, id)
	}
	p.mu.RUnlock()
	for _, id := range ids {
		_ = p.ReleaseTerminal(context.Background(), acp.TerminalReleaseParams{TerminalID: id})
	}
}
