// Package store defines the conversation persistence contract shared by all
// storage backends: a durable mapping of conversations to ordered message
// histories.
//
// Implementations live in the memstore (process-lifetime maps) and
// sqlitestore (SQLite file or in-memory database) subpackages. Both serialize
// mutations so that a message insert and the parent conversation's
// last-message timestamp update are always observed together.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrConversationNotFound is returned by AppendMessage when the target
// conversation does not exist. Reads against an unknown conversation return
// empty results rather than this error; the caller decides whether that is a
// not-found condition.
var ErrConversationNotFound = errors.New("conversation not found")

// Role identifies the author of a stored message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Conversation is one chat thread. LastMessageAt is bumped on every message
// insertion and is the sort key for listing (most recent first).
type Conversation struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	LastMessageAt time.Time `json:"lastMessageAt"`
}

// Message is one immutable entry in a conversation's history. Provider holds
// the model identifier that produced the message and is non-empty exactly
// when Role is RoleAssistant.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	Role           Role      `json:"role"`
	Content        string    `json:"content"`
	Timestamp      time.Time `json:"timestamp"`
	Provider       string    `json:"provider,omitempty"`
}

// Store is the persistence contract for conversations and their messages.
type Store interface {
	// ListConversations returns all conversations ordered by LastMessageAt
	// descending. The slice is empty, never nil, when no conversations exist.
	ListConversations(ctx context.Context) ([]Conversation, error)

	// CreateConversation assigns a new identifier and sets LastMessageAt to
	// the current time.
	CreateConversation(ctx context.Context, title string) (Conversation, error)

	// DeleteConversation removes the conversation and all of its messages
	// atomically. It reports whether the conversation existed; deleting an
	// unknown conversation is not an error.
	DeleteConversation(ctx context.Context, id string) (bool, error)

	// ListMessages returns the conversation's messages ordered by timestamp
	// ascending, ties broken by insertion order. Unknown conversations yield
	// an empty slice.
	ListMessages(ctx context.Context, conversationID string) ([]Message, error)

	// AppendMessage assigns an identifier and timestamp to a new message and
	// updates the parent conversation's LastMessageAt to the same instant,
	// atomically with the insert. Returns ErrConversationNotFound when the
	// conversation does not exist. provider should be empty for user messages
	// and the model identifier for assistant messages.
	AppendMessage(ctx context.Context, conversationID string, role Role, content, provider string) (Message, error)
}
