package transcript

import (
	"context"
	"testing"

	"github.com/agentclientprotocol/acp-go/acp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreRecordsMessagesInOrder(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	sid := acp.SessionID("sess-1")

	require.NoError(t, s.CreateSession(ctx, sid, "/tmp/work"))
	require.NoError(t, s.AddMessage(ctx, sid, Message{Role: acp.RoleUser, Content: "hello"}))
	require.NoError(t, s.AddMessage(ctx, sid, Message{Role: acp.RoleAssistant, Content: "hi there"}))

	got, err := s.Messages(ctx, sid)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, acp.RoleUser, got[0].Role)
	assert.Equal(t, "hello", got[0].Content)
	assert.Equal(t, acp.RoleAssistant, got[1].Role)
	assert.Equal(t, "hi there", got[1].Content)
}

func TestStoreMessagesEmptyForUnknownSession(t *testing.T) {
	s := openTestStore(t)
	got, err := s.Messages(context.Background(), acp.SessionID("missing"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStoreUpsertToolCall(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	sid := acp.SessionID("sess-2")
	require.NoError(t, s.CreateSession(ctx, sid, "/tmp/work"))

	err := s.UpsertToolCall(ctx, sid, ToolCallRecord{
		ID:     "tc-1",
		Title:  "run tests",
		Kind:   "execute",
		Status: "completed",
	})
	require.NoError(t, err)
}
