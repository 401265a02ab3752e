// Package acp implements the Agent Client Protocol (ACP): a bidirectional
// JSON-RPC 2.0 protocol spoken between a client (typically a code editor)
// and an agent (typically an AI coding assistant) over a pair of
// byte-oriented streams.
//
// The package is organized in the four layers the protocol is specified in:
// the wire schema (this file and its siblings), JSON-RPC framing (rpc.go),
// per-peer-role method dispatch (agentside.go, clientside.go), and the
// connection runtime that ties them together (conn.go).
//
// Spec: https://agentclientprotocol.com
package acp
