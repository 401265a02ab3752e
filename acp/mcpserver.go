package acp

import (
	"encoding/json"
	"fmt"
)

// MCP server transport tags (spec.md §3.6 tagged union).
const (
	MCPTransportStdio = "stdio"
	MCPTransportHTTP  = "http"
	MCPTransportSSE   = "sse"
)

// EnvVariable is a single environment variable to set on a spawned MCP
// server process.
type EnvVariable struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// HTTPHeader is a single header to send with HTTP/SSE MCP server requests.
type HTTPHeader struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// MCPServer is the structural union describing how to reach an MCP
// server: a spawned stdio subprocess (the default, identified on the
// wire by the presence of "command" rather than a "type" tag), or an
// HTTP/SSE endpoint (identified by an explicit "type").
type MCPServer struct {
	Type string `json:"type"`

	// stdio
	Command string        `json:"command,omitempty"`
	Args    []string      `json:"args,omitempty"`
	Env     []EnvVariable `json:"env,omitempty"`

	// http / sse
	URL     string       `json:"url,omitempty"`
	Headers []HTTPHeader `json:"headers,omitempty"`

	Name string `json:"name"`
}

type mcpServerStdioJSON struct {
	Name    string        `json:"name"`
	Command string        `json:"command"`
	Args    []string      `json:"args,omitempty"`
	Env     []EnvVariable `json:"env,omitempty"`
}

type mcpServerRemoteJSON struct {
	Type    string       `json:"type"`
	Name    string       `json:"name"`
	URL     string       `json:"url"`
	Headers []HTTPHeader `json:"headers,omitempty"`
}

// MarshalJSON omits "type" entirely for the stdio case (the default,
// identified structurally by "command"), per spec.md §3.4/§8: a stdio
// server encodes as {"name", "command", ...}, never {"type":"stdio",...}.
func (m MCPServer) MarshalJSON() ([]byte, error) {
	switch m.Type {
	case "", MCPTransportStdio:
		return json.Marshal(mcpServerStdioJSON{
			Name: m.Name, Command: m.Command, Args: m.Args, Env: m.Env,
		})
	case MCPTransportHTTP, MCPTransportSSE:
		return json.Marshal(mcpServerRemoteJSON{
			Type: m.Type, Name: m.Name, URL: m.URL, Headers: m.Headers,
		})
	default:
		return nil, fmt.Errorf("acp: mcp server %q: unrecognized type %q", m.Name, m.Type)
	}
}

// UnmarshalJSON decodes the structural union: an explicit "type" picks
// http/sse, otherwise the presence of "command" identifies a stdio
// server even though the wire payload never names it.
func (m *MCPServer) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if typeRaw, ok := raw["type"]; ok {
		var typ string
		if err := json.Unmarshal(typeRaw, &typ); err != nil {
			return err
		}
		switch typ {
		case MCPTransportHTTP, MCPTransportSSE:
			var v mcpServerRemoteJSON
			if err := json.Unmarshal(data, &v); err != nil {
				return err
			}
			*m = MCPServer{Type: v.Type, Name: v.Name, URL: v.URL, Headers: v.Headers}
			return nil
		case MCPTransportStdio:
			// explicit tag on an otherwise-structural stdio payload; fall
			// through to the structural decode below.
		default:
			return fmt.Errorf("acp: mcp server: unrecognized type %q", typ)
		}
	}

	if _, ok := raw["command"]; ok {
		var v mcpServerStdioJSON
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*m = MCPServer{Type: MCPTransportStdio, Name: v.Name, Command: v.Command, Args: v.Args, Env: v.Env}
		return nil
	}

	return fmt.Errorf("acp: mcp server: missing \"command\" or a recognized \"type\"")
}

func (m MCPServer) Validate() error {
	switch m.Type {
	case "", MCPTransportStdio:
		if m.Command == "" {
			return fmt.Errorf("acp: mcp server %q: missing field \"command\"", m.Name)
		}
	case MCPTransportHTTP, MCPTransportSSE:
		if m.URL == "" {
			return fmt.Errorf("acp: mcp server %q: missing field \"url\"", m.Name)
		}
	default:
		return fmt.Errorf("acp: mcp server %q: unrecognized type %q", m.Name, m.Type)
	}
	return nil
}
