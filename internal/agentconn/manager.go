package agentconn

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"sync"

	"github.com/agentclientprotocol/acp-go/acp"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// processDuplex adapts a spawned subprocess's stdin/stdout pipes into a
// single io.ReadWriter, the way the teacher's StdioTransport did, but
// without owning any ACP-specific framing itself — that now lives in
// acp.Connection.
type processDuplex struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.ReadCloser
}

func (p *processDuplex) Read(b []byte) (int, error)  { return p.stdout.Read(b) }
func (p *processDuplex) Write(b []byte) (int, error) { return p.stdin.Write(b) }

func startProcessDuplex(command string, args, env []string, cwd string) (*processDuplex, error) {
	cmd := exec.Command(command, args...)
	cmd.Dir = cwd
	if len(env) > 0 {
		cmd.Env = append(cmd.Environ(), env...)
	}
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("agentconn: stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("agentconn: stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("agentconn: start %s: %w", command, err)
	}
	return &processDuplex{cmd: cmd, stdin: stdin, stdout: stdout}, nil
}

func (p *processDuplex) Close() error {
	_ = p.stdin.Close()
	return nil
}

// Connection represents a live connection to an agent subprocess.
type Connection struct {
	ID       string
	Agent    AgentConfig
	Conn     *acp.ClientSideConnection
	Sessions []acp.SessionID

	proc *processDuplex
}

// Manager handles the lifecycle of multiple agent connections, the
// generalization of the teacher's single-agent-panel manager into a
// multi-agent registry (spec.md domain stack: multi-agent management).
type Manager struct {
	handler acp.ClientHandler
	log     *zap.Logger

	mu          sync.RWMutex
	config      *Config
	connections map[string]*Connection
}

// NewManager creates a Manager that serves handler for every client-bound
// method (fs/*, terminal/*, session/request_permission) an agent issues
// on any connection it owns.
func NewManager(config *Config, handler acp.ClientHandler, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		handler:     handler,
		log:         log,
		config:      config,
		connections: make(map[string]*Connection),
	}
}

func (m *Manager) findAgent(name string) (AgentConfig, bool) {
	for _, a := range m.config.Agents {
		if a.Name == name {
			return a, true
		}
	}
	return AgentConfig{}, false
}

// Connect spawns an agent subprocess, wires an ACP connection over its
// stdio, performs the initialize handshake, and registers the connection.
func (m *Manager) Connect(ctx context.Context, agentName, cwd string) (*Connection, error) {
	agentCfg, ok := m.findAgent(agentName)
	if !ok {
		return nil, fmt.Errorf("agentconn: unknown agent %q", agentName)
	}

	var env []string
	for k, v := range agentCfg.Env {
		env = append(env, k+"="+v)
	}

	proc, err := startProcessDuplex(agentCfg.Command, agentCfg.Args, env, cwd)
	if err != nil {
		return nil, err
	}

	cc := acp.NewClientSideConnection(proc, m.handler, m.log)
	if _, err := cc.Initialize(ctx, acp.InitializeParams{
		ProtocolVersion: 1,
		ClientCapabilities: acp.ClientCapabilities{
			FS:       acp.FSCapabilities{ReadTextFile: true, WriteTextFile: true},
			Terminal: true,
		},
	}); err != nil {
		cc.Close()
		proc.Close()
		return nil, fmt.Errorf("agentconn: initialize %s: %w", agentName, err)
	}

	conn := &Connection{
		ID:    uuid.New().String(),
		Agent: agentCfg,
		Conn:  cc,
		proc:  proc,
	}

	m.mu.Lock()
	m.connections[conn.ID] = conn
	m.mu.Unlock()

	return conn, nil
}

// Disconnect gracefully shuts down a single connection by ID.
func (m *Manager) Disconnect(connectionID string) error {
	m.mu.Lock()
	conn, ok := m.connections[connectionID]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("agentconn: connection %q not found", connectionID)
	}
	delete(m.connections, connectionID)
	m.mu.Unlock()

	if err := conn.Conn.Close(); err != nil {
		return fmt.Errorf("agentconn: close connection %s: %w", connectionID, err)
	}
	if err := conn.proc.Close(); err != nil {
		return fmt.Errorf("agentconn: close subprocess %s: %w", connectionID, err)
	}
	_ = conn.proc.cmd.Wait()
	return nil
}

// GetConnection returns the connection with the given ID, or nil if not
// found.
func (m *Manager) GetConnection(connectionID string) *Connection {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connections[connectionID]
}

// ListConnections returns a snapshot of all active connections.
func (m *Manager) ListConnections() []*Connection {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*Connection, 0, len(m.connections))
	for _, c := range m.connections {
		result = append(result, c)
	}
	return result
}

// DisconnectAll shuts down every active connection. Errors are silently
// ignored so the method can be used in defer/cleanup paths.
func (m *Manager) DisconnectAll() {
	m.mu.Lock()
	ids := make([]string, 0, len(m.connections))
	for id := range m.connections {
		ids = append(ids, id)
	}
	m.mu.Unlock()
	for _, id := range ids {
		_ = m.Disconnect(id)
	}
}
