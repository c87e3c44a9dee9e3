package sqlitestore

import (
	"context"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leofalp/polychat/internal/store"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpen_PreparesSchema(t *testing.T) {
	s := openTestStore(t)

	conversations, err := s.ListConversations(context.Background())
	require.NoError(t, err)
	assert.Empty(t, conversations)
	assert.NotNil(t, conversations)
}

func TestCreateAndListConversations_OrderedByRecency(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	older, err := s.CreateConversation(ctx, "older")
	require.NoError(t, err)
	newer, err := s.CreateConversation(ctx, "newer")
	require.NoError(t, err)

	_, err = s.AppendMessage(ctx, older.ID, store.RoleUser, "hi", "")
	require.NoError(t, err)

	conversations, err := s.ListConversations(ctx)
	require.NoError(t, err)
	require.Len(t, conversations, 2)
	assert.Equal(t, older.ID, conversations[0].ID)
	assert.Equal(t, newer.ID, conversations[1].ID)
}

func TestDeleteConversation_CascadesToMessages(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	conversation, err := s.CreateConversation(ctx, "doomed")
	require.NoError(t, err)
	_, err = s.AppendMessage(ctx, conversation.ID, store.RoleUser, "hi", "")
	require.NoError(t, err)

	deleted, err := s.DeleteConversation(ctx, conversation.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	messages, err := s.ListMessages(ctx, conversation.ID)
	require.NoError(t, err)
	assert.Empty(t, messages)

	deleted, err = s.DeleteConversation(ctx, conversation.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestAppendMessage_UnknownConversation(t *testing.T) {
	s := openTestStore(t)

	_, err := s.AppendMessage(context.Background(), "no-such-id", store.RoleUser, "hi", "")
	assert.ErrorIs(t, err, store.ErrConversationNotFound)
}

func TestAppendMessage_TouchesLastMessageAt(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	conversation, err := s.CreateConversation(ctx, "chat")
	require.NoError(t, err)

	message, err := s.AppendMessage(ctx, conversation.ID, store.RoleUser, "hi", "")
	require.NoError(t, err)

	conversations, err := s.ListConversations(ctx)
	require.NoError(t, err)
	require.Len(t, conversations, 1)
	assert.Equal(t, message.Timestamp.UnixNano(), conversations[0].LastMessageAt.UnixNano())
}

func TestListMessages_OrderedWithStableTieBreak(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	conversation, err := s.CreateConversation(ctx, "chat")
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		_, err := s.AppendMessage(ctx, conversation.ID, store.RoleUser, strconv.Itoa(i), "")
		require.NoError(t, err)
	}

	messages, err := s.ListMessages(ctx, conversation.ID)
	require.NoError(t, err)
	require.Len(t, messages, 20)
	for i, message := range messages {
		assert.Equal(t, strconv.Itoa(i), message.Content)
	}
}

func TestListMessages_RoundTripsFields(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	conversation, err := s.CreateConversation(ctx, "chat")
	require.NoError(t, err)

	_, err = s.AppendMessage(ctx, conversation.ID, store.RoleAssistant, "hello", "claude-sonnet-4-5")
	require.NoError(t, err)

	messages, err := s.ListMessages(ctx, conversation.ID)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, conversation.ID, messages[0].ConversationID)
	assert.Equal(t, store.RoleAssistant, messages[0].Role)
	assert.Equal(t, "hello", messages[0].Content)
	assert.Equal(t, "claude-sonnet-4-5", messages[0].Provider)
	assert.NotEmpty(t, messages[0].ID)
}

func TestListMessages_UnknownConversation_Empty(t *testing.T) {
	s := openTestStore(t)

	messages, err := s.ListMessages(context.Background(), "no-such-id")
	require.NoError(t, err)
	assert.Empty(t, messages)
	assert.NotNil(t, messages)
}
