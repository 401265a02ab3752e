package acp

import "encoding/json"

// SessionID identifies a single conversation between client and agent.
type SessionID string

// SessionNewParams asks the agent to start a new session rooted at Cwd,
// optionally wiring in MCP servers the client wants made available.
type SessionNewParams struct {
	Cwd        string      `json:"cwd" validate:"required"`
	MCPServers []MCPServer `json:"mcpServers,omitempty"`
	Meta       Meta        `json:"_meta,omitempty"`
}

// SessionNewResult carries the freshly minted session id and, if the agent
// supports multiple named modes, the mode menu.
type SessionNewResult struct {
	SessionID SessionID   `json:"sessionId"`
	Modes     *ModesInfo  `json:"modes,omitempty"`
	Models    *ModelsInfo `json:"models,omitempty"`
	Meta      Meta        `json:"_meta,omitempty"`
}

// SessionLoadParams asks the agent to resume a previously created session.
type SessionLoadParams struct {
	SessionID  SessionID   `json:"sessionId" validate:"required"`
	Cwd        string      `json:"cwd" validate:"required"`
	MCPServers []MCPServer `json:"mcpServers,omitempty"`
	Meta       Meta        `json:"_meta,omitempty"`
}

// SessionLoadResult mirrors SessionNewResult; loading replays history via
// session/update notifications before this response is sent.
type SessionLoadResult struct {
	Modes  *ModesInfo  `json:"modes,omitempty"`
	Models *ModelsInfo `json:"models,omitempty"`
	Meta   Meta        `json:"_meta,omitempty"`
}

// ModesInfo describes the set of named modes an agent can run a session in
// (e.g. "ask" vs "code") and which one is currently active.
type ModesInfo struct {
	CurrentModeID  string `json:"currentModeId"`
	AvailableModes []Mode `json:"availableModes"`
}

// Mode is one entry in a session's mode menu.
type Mode struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// SessionPromptParams is the turn the client sends to make the agent act.
type SessionPromptParams struct {
	SessionID SessionID      `json:"sessionId" validate:"required"`
	Prompt    []ContentBlock `json:"prompt" validate:"required,min=1"`
	Meta      Meta           `json:"_meta,omitempty"`
}

// StopReason explains why a prompt turn ended (spec.md §3 prompt lifecycle).
type StopReason string

const (
	StopEndTurn       StopReason = "end_turn"
	StopMaxTokens     StopReason = "max_tokens"
	StopMaxTurnReqs   StopReason = "max_turn_requests"
	StopRefusal       StopReason = "refusal"
	StopCancelled     StopReason = "cancelled"
)

// SessionPromptResult is the response to session/prompt, delivered after
// all session/update notifications for the turn have been sent.
type SessionPromptResult struct {
	StopReason StopReason `json:"stopReason"`
	Meta       Meta       `json:"_meta,omitempty"`
}

// SessionCancelParams is sent as a notification to abort an in-flight
// prompt turn.
type SessionCancelParams struct {
	SessionID SessionID `json:"sessionId"`
	Meta      Meta      `json:"_meta,omitempty"`
}

// SessionSetModeParams switches a session's active mode.
type SessionSetModeParams struct {
	SessionID SessionID `json:"sessionId"`
	ModeID    string    `json:"modeId"`
	Meta      Meta      `json:"_meta,omitempty"`
}

// ConfigOption is one entry in a session's configurable option set
// (unstable family). Value is a structural union: a bool renders as a
// toggle, a string with Choices renders as a picker.
type ConfigOption struct {
	ID      string             `json:"id"`
	Name    string             `json:"name"`
	Value   string             `json:"value,omitempty"`
	Bool    *bool              `json:"bool,omitempty"`
	Choices *ConfigOptionValue `json:"choices,omitempty"`
}

// IsToggle reports whether this option is a boolean toggle rather than a
// string/choice option, distinguished structurally by presence of Bool.
func (c ConfigOption) IsToggle() bool { return c.Bool != nil }

// ConfigOptionChoice is one selectable value within a config option's
// choice list.
type ConfigOptionChoice struct {
	Value string `json:"value"`
	Name  string `json:"name,omitempty"`
}

// ConfigOptionGroup is a named bucket of related choices.
type ConfigOptionGroup struct {
	Group   string               `json:"group"`
	Options []ConfigOptionChoice `json:"options"`
}

// ConfigOptionValue is the structural union of a config option's choice
// list (spec.md §3.4 union 5): grouped, where entries are organized
// under named ConfigOptionGroup buckets, or ungrouped, a flat list of
// ConfigOptionChoice — distinguished by whether the wire array's first
// element carries a "group" key.
type ConfigOptionValue struct {
	Grouped   []ConfigOptionGroup
	Ungrouped []ConfigOptionChoice
}

// IsGrouped reports whether this choice list is organized into named
// groups rather than a flat list.
func (v ConfigOptionValue) IsGrouped() bool { return v.Grouped != nil }

func (v ConfigOptionValue) MarshalJSON() ([]byte, error) {
	if v.Grouped != nil {
		return json.Marshal(v.Grouped)
	}
	return json.Marshal(v.Ungrouped)
}

func (v *ConfigOptionValue) UnmarshalJSON(data []byte) error {
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return err
	}
	if len(elems) == 0 {
		v.Ungrouped = []ConfigOptionChoice{}
		return nil
	}
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(elems[0], &probe); err != nil {
		return err
	}
	if _, grouped := probe["group"]; grouped {
		return json.Unmarshal(data, &v.Grouped)
	}
	return json.Unmarshal(data, &v.Ungrouped)
}

// SessionSetConfigOptionParams sets one configurable option on a session
// (unstable family).
type SessionSetConfigOptionParams struct {
	SessionID SessionID `json:"sessionId"`
	OptionID  string    `json:"optionId"`
	Value     string    `json:"value,omitempty"`
	Bool      *bool     `json:"bool,omitempty"`
	Meta      Meta      `json:"_meta,omitempty"`
}

// SessionSetModeResult acknowledges a session/set_mode request. It carries
// no payload of its own; spec.md §6 lists it as a stable request/response
// method, not a fire-and-forget notification, so the client learns whether
// the switch succeeded before sending its next message.
type SessionSetModeResult struct {
	Meta Meta `json:"_meta,omitempty"`
}

// SessionSetConfigOptionResult acknowledges a session/set_config_option
// request (unstable family).
type SessionSetConfigOptionResult struct {
	Meta Meta `json:"_meta,omitempty"`
}

// SessionListParams requests the set of sessions the agent currently
// knows about (unstable family).
type SessionListParams struct {
	Meta Meta `json:"_meta,omitempty"`
}

// SessionListResult enumerates the agent's known sessions.
type SessionListResult struct {
	Sessions []SessionSummary `json:"sessions"`
	Meta     Meta             `json:"_meta,omitempty"`
}

// SessionSummary is one entry in a session/list response.
type SessionSummary struct {
	SessionID SessionID        `json:"sessionId"`
	Cwd       string           `json:"cwd,omitempty"`
	Title     Optional[string] `json:"-"`
}

func (s SessionSummary) MarshalJSON() ([]byte, error) {
	raw := map[string]json.RawMessage{}
	if err := s.Title.encodeInto(raw, "title"); err != nil {
		return nil, err
	}
	idb, err := json.Marshal(s.SessionID)
	if err != nil {
		return nil, err
	}
	raw["sessionId"] = idb
	if s.Cwd != "" {
		cwdb, err := json.Marshal(s.Cwd)
		if err != nil {
			return nil, err
		}
		raw["cwd"] = cwdb
	}
	return json.Marshal(raw)
}

func (s *SessionSummary) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if v, ok := raw["sessionId"]; ok {
		if err := json.Unmarshal(v, &s.SessionID); err != nil {
			return err
		}
	}
	if v, ok := raw["cwd"]; ok {
		if err := json.Unmarshal(v, &s.Cwd); err != nil {
			return err
		}
	}
	var err error
	if s.Title, err = decodeOptional[string](raw, "title"); err != nil {
		return err
	}
	return nil
}

// SessionForkParams branches a new session off an existing one, inheriting
// its history up to the fork point (unstable family).
type SessionForkParams struct {
	SessionID SessionID `json:"sessionId" validate:"required"`
	Meta      Meta      `json:"_meta,omitempty"`
}

// SessionForkResult carries the id of the newly forked session.
type SessionForkResult struct {
	SessionID SessionID  `json:"sessionId"`
	Modes     *ModesInfo `json:"modes,omitempty"`
	Meta      Meta       `json:"_meta,omitempty"`
}

// SessionResumeParams asks the agent to pick a previously listed session
// back up without replaying its full history via session/update (unstable
// family; unlike session/load, resume does not require the agent to
// re-stream every prior update).
type SessionResumeParams struct {
	SessionID SessionID `json:"sessionId" validate:"required"`
	Meta      Meta      `json:"_meta,omitempty"`
}

// SessionResumeResult mirrors SessionNewResult.
type SessionResumeResult struct {
	Modes *ModesInfo `json:"modes,omitempty"`
	Meta  Meta       `json:"_meta,omitempty"`
}

// ModelInfo describes one model a session can be switched to.
type ModelInfo struct {
	ModelID     string `json:"modelId"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ModelsInfo mirrors ModesInfo for the model dimension: which model a
// session currently runs and the full menu of models it could switch to.
type ModelsInfo struct {
	CurrentModelID  string      `json:"currentModelId"`
	AvailableModels []ModelInfo `json:"availableModels"`
}

// SessionSetModelParams switches a session's active model (unstable
// family).
type SessionSetModelParams struct {
	SessionID SessionID `json:"sessionId"`
	ModelID   string    `json:"modelId"`
	Meta      Meta      `json:"_meta,omitempty"`
}

// SessionSetModelResult acknowledges a session/set_model request.
type SessionSetModelResult struct {
	Meta Meta `json:"_meta,omitempty"`
}
