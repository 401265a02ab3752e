package acp

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentBlockRoundTrip(t *testing.T) {
	blocks := []ContentBlock{
		{Type: ContentText, Text: "hi"},
		{Type: ContentImage, Data: "YWJj", MimeType: "image/png"},
		{Type: ContentAudio, Data: "YWJj", MimeType: "audio/wav"},
		{Type: ContentResourceLink, URI: "file:///a.go", Name: "a.go"},
		{Type: ContentResource, Resource: &EmbeddedResource{URI: "file:///b.go", Text: "package b"}},
	}
	for _, b := range blocks {
		require.NoError(t, b.Validate())
		data, err := json.Marshal(b)
		require.NoError(t, err)

		var got ContentBlock
		require.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, b, got)
	}
}

func TestEmbeddedResourceTextVsBlob(t *testing.T) {
	text := EmbeddedResource{URI: "file:///a", Text: "hello"}
	assert.True(t, text.IsText())

	blob := EmbeddedResource{URI: "file:///a", Blob: "aGVsbG8="}
	assert.False(t, blob.IsText())
}

func TestSessionUpdateAllTenVariantsRoundTrip(t *testing.T) {
	line := 3
	updates := []SessionUpdate{
		{Type: UpdateAgentMessageChunk, Content: ContentBlock{Type: ContentText, Text: "hi"}},
		{Type: UpdateAgentThoughtChunk, Content: ContentBlock{Type: ContentText, Text: "thinking"}},
		{Type: UpdateUserMessageChunk, Content: ContentBlock{Type: ContentText, Text: "hello agent"}},
		{Type: UpdatePlan, Plan: Plan{Entries: []PlanEntry{{Content: "step 1", Priority: PlanPriorityHigh, Status: PlanEntryPending}}}},
		{Type: UpdateAvailableCommandsUpdate, AvailableCommands: []AvailableCommand{{Name: "explain", Input: &AvailableCommandInput{Hint: "<file>"}}}},
		{Type: UpdateCurrentModeUpdate, CurrentModeID: "code"},
		{Type: UpdateSessionInfoUpdate, SessionInfo: SessionInfo{Title: Some("Refactor auth"), UpdatedAt: Undefined[string]()}},
		{Type: UpdateConfigOptionUpdate, ConfigOption: ConfigOption{ID: "verbose", Name: "Verbose", Bool: boolPtr(true)}},
	}
	for _, u := range updates {
		data, err := json.Marshal(u)
		require.NoError(t, err, u.Type)

		var got SessionUpdate
		require.NoError(t, json.Unmarshal(data, &got), u.Type)
		assert.Equal(t, u, got, u.Type)
	}

	toolCalls := []SessionUpdate{
		{Type: UpdateToolCall, ToolCall: ToolCallUpdate{
			ToolCallID: "tc1",
			Title:      Some("Read file"),
			Kind:       Some(ToolKindRead),
			Status:     Some(ToolStatusPending),
			Locations:  Some([]ToolCallLocation{{Path: "main.go", Line: &line}}),
		}},
		{Type: UpdateToolCallUpdate, ToolCall: ToolCallUpdate{
			ToolCallID: "tc1",
			Status:     Some(ToolStatusCompleted),
			Content:    Some([]ToolCallContent{{Type: ToolCallContentTypeContent, Content: &ContentBlock{Type: ContentText, Text: "done"}}}),
		}},
	}
	for _, u := range toolCalls {
		data, err := json.Marshal(u)
		require.NoError(t, err, u.Type)

		var got SessionUpdate
		require.NoError(t, json.Unmarshal(data, &got), u.Type)
		assert.Equal(t, u.Type, got.Type)
		assert.Equal(t, u.ToolCall.ToolCallID, got.ToolCall.ToolCallID)

		wantStatus, _ := u.ToolCall.Status.Get()
		gotStatus, ok := got.ToolCall.Status.Get()
		require.True(t, ok)
		assert.Equal(t, wantStatus, gotStatus)
	}
}

func TestToolCallUpdateThreeStateFieldsSurviveElision(t *testing.T) {
	u := ToolCallUpdate{
		ToolCallID: "tc1",
		Status:     Some(ToolStatusInProgress),
		// Title, Kind, Content, Locations, RawInput, RawOutput, Meta left
		// Undefined — they must round-trip as Undefined, not as their
		// zero value, so a client merging this update leaves those
		// fields untouched in its local view of the call.
	}
	data, err := u.marshalAsSessionUpdate(UpdateToolCallUpdate)
	require.NoError(t, err)

	var got ToolCallUpdate
	require.NoError(t, got.unmarshalFromSessionUpdate(data, UpdateToolCallUpdate))

	assert.Equal(t, "tc1", got.ToolCallID)
	assert.True(t, got.Title.IsUndefined())
	assert.True(t, got.Kind.IsUndefined())
	assert.True(t, got.Content.IsUndefined())
	assert.True(t, got.Locations.IsUndefined())
	assert.True(t, got.RawInput.IsUndefined())
	assert.True(t, got.RawOutput.IsUndefined())
	assert.True(t, got.Meta.IsUndefined())

	v, ok := got.Status.Get()
	require.True(t, ok)
	assert.Equal(t, ToolStatusInProgress, v)
}

func TestMCPServerTaggedUnion(t *testing.T) {
	servers := []MCPServer{
		{Type: MCPTransportStdio, Name: "local", Command: "npx", Args: []string{"-y", "thing"}},
		{Type: MCPTransportHTTP, Name: "remote", URL: "https://example.com/mcp"},
		{Type: MCPTransportSSE, Name: "sse", URL: "https://example.com/sse"},
	}
	for _, s := range servers {
		require.NoError(t, s.Validate())
		data, err := json.Marshal(s)
		require.NoError(t, err)

		var got MCPServer
		require.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, s, got)
	}
}

func TestMCPServerStdioOmitsTypeTagOnWire(t *testing.T) {
	s := MCPServer{Type: MCPTransportStdio, Name: "srv", Command: "/bin/s"}
	data, err := json.Marshal(s)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	_, hasType := raw["type"]
	assert.False(t, hasType, "stdio server must not encode a \"type\" field")
	assert.Equal(t, "srv", raw["name"])
	assert.Equal(t, "/bin/s", raw["command"])
}

func TestMCPServerDecodesStdioWithoutTypeTag(t *testing.T) {
	var got MCPServer
	require.NoError(t, json.Unmarshal([]byte(`{"name":"srv","command":"/bin/s"}`), &got))
	assert.Equal(t, MCPTransportStdio, got.Type)
	assert.Equal(t, "/bin/s", got.Command)
	require.NoError(t, got.Validate())
}

func TestAnnotationsThreeStateOptionalFields(t *testing.T) {
	a := Annotations{Audience: []Role{RoleAssistant}, Priority: Some(0.5)}
	data, err := json.Marshal(a)
	require.NoError(t, err)

	var got Annotations
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, []Role{RoleAssistant}, got.Audience)
	assert.True(t, got.LastModified.IsUndefined())
	v, ok := got.Priority.Get()
	require.True(t, ok)
	assert.Equal(t, 0.5, v)
}

func TestPermissionOutcomeValidation(t *testing.T) {
	require.NoError(t, PermissionOutcome{Outcome: PermissionOutcomeCancelled}.Validate())
	require.NoError(t, PermissionOutcome{Outcome: PermissionOutcomeSelected, OptionID: "allow"}.Validate())
	require.Error(t, PermissionOutcome{Outcome: PermissionOutcomeSelected}.Validate())
	require.Error(t, PermissionOutcome{Outcome: "bogus"}.Validate())
}

func TestSessionInfoThreeStateFields(t *testing.T) {
	withTitleOnly := SessionInfo{Title: Some("Test"), UpdatedAt: Undefined[string]()}
	data, err := json.Marshal(withTitleOnly)
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"Test"}`, string(data))

	var got SessionInfo
	require.NoError(t, json.Unmarshal(data, &got))
	title, ok := got.Title.Get()
	require.True(t, ok)
	assert.Equal(t, "Test", title)
	assert.True(t, got.UpdatedAt.IsUndefined())

	cleared := SessionInfo{Title: Null[string](), UpdatedAt: Undefined[string]()}
	data, err = json.Marshal(cleared)
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":null}`, string(data))

	got = SessionInfo{}
	require.NoError(t, json.Unmarshal(data, &got))
	assert.True(t, got.Title.IsNull())
}

func TestConfigOptionValueGroupedVsUngrouped(t *testing.T) {
	ungrouped := ConfigOption{
		ID:   "theme",
		Name: "Theme",
		Choices: &ConfigOptionValue{Ungrouped: []ConfigOptionChoice{
			{Value: "dark", Name: "Dark"},
			{Value: "light", Name: "Light"},
		}},
	}
	data, err := json.Marshal(ungrouped)
	require.NoError(t, err)

	var got ConfigOption
	require.NoError(t, json.Unmarshal(data, &got))
	require.NotNil(t, got.Choices)
	assert.False(t, got.Choices.IsGrouped())
	assert.Equal(t, ungrouped.Choices.Ungrouped, got.Choices.Ungrouped)

	grouped := ConfigOption{
		ID:   "model",
		Name: "Model",
		Choices: &ConfigOptionValue{Grouped: []ConfigOptionGroup{
			{Group: "Fast", Options: []ConfigOptionChoice{{Value: "haiku", Name: "Haiku"}}},
			{Group: "Smart", Options: []ConfigOptionChoice{{Value: "opus", Name: "Opus"}}},
		}},
	}
	data, err = json.Marshal(grouped)
	require.NoError(t, err)

	got = ConfigOption{}
	require.NoError(t, json.Unmarshal(data, &got))
	require.NotNil(t, got.Choices)
	assert.True(t, got.Choices.IsGrouped())
	assert.Equal(t, grouped.Choices.Grouped, got.Choices.Grouped)
}

func boolPtr(b bool) *bool { return &b }
