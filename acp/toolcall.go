package acp

import "encoding/json"

// Tool call kind hints (spec.md §3.8) — purely advisory, for client UI.
const (
	ToolKindRead    = "read"
	ToolKindEdit    = "edit"
	ToolKindDelete  = "delete"
	ToolKindMove    = "move"
	ToolKindSearch  = "search"
	ToolKindExecute = "execute"
	ToolKindThink   = "think"
	ToolKindFetch   = "fetch"
	ToolKindOther   = "other"
)

// Tool call status values.
const (
	ToolStatusPending    = "pending"
	ToolStatusInProgress = "in_progress"
	ToolStatusCompleted  = "completed"
	ToolStatusFailed     = "failed"
)

// ToolCallContent is the tagged union of what a tool call reports back:
// ordinary content, a diff, or a reference to a client terminal by id.
type ToolCallContent struct {
	Type string `json:"type"`

	Content *ContentBlock `json:"content,omitempty"`

	Path    string `json:"path,omitempty"`
	OldText string `json:"oldText,omitempty"`
	NewText string `json:"newText,omitempty"`

	TerminalID TerminalID `json:"terminalId,omitempty"`
}

const (
	ToolCallContentTypeContent  = "content"
	ToolCallContentTypeDiff     = "diff"
	ToolCallContentTypeTerminal = "terminal"
)

// ToolCallLocation is one file a tool call touches, with an optional line
// hint for the client to scroll to.
type ToolCallLocation struct {
	Path string `json:"path"`
	Line *int   `json:"line,omitempty"`
}

// ToolCallUpdate is the merged representation of the tool_call and
// tool_call_update SessionUpdate variants. tool_call requires ToolCallID,
// Title and Status; tool_call_update makes every field but ToolCallID a
// three-state partial update that leaves anything undefined untouched in
// the client's running view of the call.
type ToolCallUpdate struct {
	ToolCallID string

	Title     Optional[string]
	Kind      Optional[string]
	Status    Optional[string]
	Content   Optional[[]ToolCallContent]
	Locations Optional[[]ToolCallLocation]
	RawInput  Optional[json.RawMessage]
	RawOutput Optional[json.RawMessage]
	Meta      Optional[Meta]
}

// isFullToolCall reports whether tag is the full tool_call variant (as
// opposed to tool_call_update), which is where Kind/Status fall back to
// documented defaults instead of staying an untouched three-state field.
func isFullToolCall(tag string) bool { return tag == UpdateToolCall }

// encodeToolCallEnum omits the key entirely when it's the full variant
// and the value equals its documented default, keeping the wire payload
// minimal; tool_call_update never applies a default, so its explicit
// three-state semantics are preserved untouched.
func encodeToolCallEnum(raw map[string]json.RawMessage, key string, opt Optional[string], isFull bool, def string) error {
	if isFull {
		if v, ok := opt.Get(); ok && v == def {
			return nil
		}
	}
	return opt.encodeInto(raw, key)
}

// decodeToolCallEnum fills an absent key with its documented default for
// the full tool_call variant; tool_call_update leaves it Undefined so
// callers can tell "unspecified" from "explicitly reset".
func decodeToolCallEnum(raw map[string]json.RawMessage, key string, isFull bool, def string) (Optional[string], error) {
	opt, err := decodeOptional[string](raw, key)
	if err != nil {
		return opt, err
	}
	if isFull && opt.IsUndefined() {
		return Some(def), nil
	}
	return opt, nil
}

func (u ToolCallUpdate) marshalAsSessionUpdate(tag string) ([]byte, error) {
	raw := map[string]json.RawMessage{}
	raw["sessionUpdate"] = mustMarshal(tag)
	raw["toolCallId"] = mustMarshal(u.ToolCallID)
	full := isFullToolCall(tag)
	if err := u.Title.encodeInto(raw, "title"); err != nil {
		return nil, err
	}
	if err := encodeToolCallEnum(raw, "kind", u.Kind, full, ToolKindOther); err != nil {
		return nil, err
	}
	if err := encodeToolCallEnum(raw, "status", u.Status, full, ToolStatusPending); err != nil {
		return nil, err
	}
	if err := u.Content.encodeInto(raw, "content"); err != nil {
		return nil, err
	}
	if err := u.Locations.encodeInto(raw, "locations"); err != nil {
		return nil, err
	}
	if err := u.RawInput.encodeInto(raw, "rawInput"); err != nil {
		return nil, err
	}
	if err := u.RawOutput.encodeInto(raw, "rawOutput"); err != nil {
		return nil, err
	}
	if err := u.Meta.encodeInto(raw, "_meta"); err != nil {
		return nil, err
	}
	return json.Marshal(raw)
}

// MarshalJSON encodes u on its own (e.g. as RequestPermissionParams'
// toolCall) with the tool_call_update three-state rules and no
// "sessionUpdate" tag.
func (u ToolCallUpdate) MarshalJSON() ([]byte, error) {
	b, err := u.marshalAsSessionUpdate(UpdateToolCallUpdate)
	if err != nil {
		return nil, err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, err
	}
	delete(raw, "sessionUpdate")
	return json.Marshal(raw)
}

// UnmarshalJSON decodes a standalone tool call update with the
// tool_call_update three-state rules.
func (u *ToolCallUpdate) UnmarshalJSON(data []byte) error {
	return u.unmarshalFromSessionUpdate(data, UpdateToolCallUpdate)
}

func (u *ToolCallUpdate) unmarshalFromSessionUpdate(data []byte, tag string) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if id, ok := raw["toolCallId"]; ok {
		if err := json.Unmarshal(id, &u.ToolCallID); err != nil {
			return err
		}
	}
	full := isFullToolCall(tag)
	var err error
	if u.Title, err = decodeOptional[string](raw, "title"); err != nil {
		return err
	}
	if u.Kind, err = decodeToolCallEnum(raw, "kind", full, ToolKindOther); err != nil {
		return err
	}
	if u.Status, err = decodeToolCallEnum(raw, "status", full, ToolStatusPending); err != nil {
		return err
	}
	if u.Content, err = decodeOptional[[]ToolCallContent](raw, "content"); err != nil {
		return err
	}
	if u.Locations, err = decodeOptional[[]ToolCallLocation](raw, "locations"); err != nil {
		return err
	}
	if u.RawInput, err = decodeOptional[json.RawMessage](raw, "rawInput"); err != nil {
		return err
	}
	if u.RawOutput, err = decodeOptional[json.RawMessage](raw, "rawOutput"); err != nil {
		return err
	}
	if u.Meta, err = decodeOptional[Meta](raw, "_meta"); err != nil {
		return err
	}
	return nil
}

func mustMarshal(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
