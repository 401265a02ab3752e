package acp

import (
	"encoding/json"
	"fmt"
)

// SessionUpdate variant tags (spec.md §3.7 — ten variants).
const (
	UpdateAgentMessageChunk      = "agent_message_chunk"
	UpdateAgentThoughtChunk      = "agent_thought_chunk"
	UpdateUserMessageChunk       = "user_message_chunk"
	UpdateToolCall               = "tool_call"
	UpdateToolCallUpdate         = "tool_call_update"
	UpdatePlan                   = "plan"
	UpdateAvailableCommandsUpdate = "available_commands_update"
	UpdateCurrentModeUpdate      = "current_mode_update"
	UpdateSessionInfoUpdate      = "session_info_update"
	UpdateConfigOptionUpdate     = "config_option_update"
)

// SessionUpdateParams is the payload of a session/update notification: a
// session id plus one SessionUpdate variant.
type SessionUpdateParams struct {
	SessionID SessionID     `json:"sessionId"`
	Update    SessionUpdate `json:"update"`
	Meta      Meta          `json:"_meta,omitempty"`
}

// SessionUpdate is the tagged union of everything an agent can stream to a
// client mid-turn. SessionUpdate carries a custom codec because its payload
// field is overloaded: "content" means a ContentBlock for the two chunk
// variants but is absent for the others, and several variants (tool_call,
// tool_call_update, current_mode_update, session_info_update,
// config_option_update) each own a disjoint set of fields.
type SessionUpdate struct {
	Type string

	// agent_message_chunk / agent_thought_chunk / user_message_chunk
	Content ContentBlock

	// tool_call / tool_call_update
	ToolCall ToolCallUpdate

	// plan
	Plan Plan

	// available_commands_update
	AvailableCommands []AvailableCommand

	// current_mode_update
	CurrentModeID string

	// session_info_update
	SessionInfo SessionInfo

	// config_option_update
	ConfigOption ConfigOption
}

type sessionUpdateJSON struct {
	SessionUpdate     string             `json:"sessionUpdate"`
	Content           *ContentBlock      `json:"content,omitempty"`
	Entries           []PlanEntry        `json:"entries,omitempty"`
	AvailableCommands []AvailableCommand `json:"availableCommands,omitempty"`
	CurrentModeID     string             `json:"currentModeId,omitempty"`
	SessionInfo       *SessionInfo       `json:"sessionInfo,omitempty"`
	ConfigOption      *ConfigOption      `json:"configOption,omitempty"`
}

// MarshalJSON encodes SessionUpdate as {"sessionUpdate": <tag>, ...fields}
// following the teacher's established pattern for overloaded payload
// fields (see ToolCallUpdate for the tool_call_update three-state fields).
func (u SessionUpdate) MarshalJSON() ([]byte, error) {
	raw := sessionUpdateJSON{SessionUpdate: u.Type}
	switch u.Type {
	case UpdateAgentMessageChunk, UpdateAgentThoughtChunk, UpdateUserMessageChunk:
		raw.Content = &u.Content
	case UpdateToolCall, UpdateToolCallUpdate:
		return u.ToolCall.marshalAsSessionUpdate(u.Type)
	case UpdatePlan:
		raw.Entries = u.Plan.Entries
	case UpdateAvailableCommandsUpdate:
		raw.AvailableCommands = u.AvailableCommands
	case UpdateCurrentModeUpdate:
		raw.CurrentModeID = u.CurrentModeID
	case UpdateSessionInfoUpdate:
		raw.SessionInfo = &u.SessionInfo
	case UpdateConfigOptionUpdate:
		raw.ConfigOption = &u.ConfigOption
	default:
		return nil, fmt.Errorf("acp: session update: unrecognized type %q", u.Type)
	}
	return json.Marshal(raw)
}

func (u *SessionUpdate) UnmarshalJSON(data []byte) error {
	var raw sessionUpdateJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	u.Type = raw.SessionUpdate
	switch u.Type {
	case UpdateAgentMessageChunk, UpdateAgentThoughtChunk, UpdateUserMessageChunk:
		if raw.Content != nil {
			u.Content = *raw.Content
		}
	case UpdateToolCall, UpdateToolCallUpdate:
		return u.ToolCall.unmarshalFromSessionUpdate(data, u.Type)
	case UpdatePlan:
		u.Plan = Plan{Entries: raw.Entries}
	case UpdateAvailableCommandsUpdate:
		u.AvailableCommands = raw.AvailableCommands
	case UpdateCurrentModeUpdate:
		u.CurrentModeID = raw.CurrentModeID
	case UpdateSessionInfoUpdate:
		if raw.SessionInfo != nil {
			u.SessionInfo = *raw.SessionInfo
		}
	case UpdateConfigOptionUpdate:
		if raw.ConfigOption != nil {
			u.ConfigOption = *raw.ConfigOption
		}
	default:
		return fmt.Errorf("acp: session update: unrecognized type %q", u.Type)
	}
	return nil
}

// SessionInfo carries a partial update of session metadata pushed
// proactively by the agent (unstable family): a title it inferred for
// the conversation, and/or when that title last changed. Both fields
// are three-state: undefined leaves the client's existing value
// untouched, null clears it, a value replaces it.
type SessionInfo struct {
	Title     Optional[string]
	UpdatedAt Optional[string]
}

func (s SessionInfo) MarshalJSON() ([]byte, error) {
	raw := map[string]json.RawMessage{}
	if err := s.Title.encodeInto(raw, "title"); err != nil {
		return nil, err
	}
	if err := s.UpdatedAt.encodeInto(raw, "updatedAt"); err != nil {
		return nil, err
	}
	return json.Marshal(raw)
}

func (s *SessionInfo) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var err error
	if s.Title, err = decodeOptional[string](raw, "title"); err != nil {
		return err
	}
	if s.UpdatedAt, err = decodeOptional[string](raw, "updatedAt"); err != nil {
		return err
	}
	return nil
}

// AvailableCommand is one slash-style command the agent currently accepts.
type AvailableCommand struct {
	Name        string                  `json:"name"`
	Description string                  `json:"description,omitempty"`
	Input       *AvailableCommandInput  `json:"input,omitempty"`
}

// AvailableCommandInput describes the argument hint shown for a command,
// a structural union distinguished by the presence of the "hint" key.
type AvailableCommandInput struct {
	Hint string `json:"hint,omitempty"`
}
