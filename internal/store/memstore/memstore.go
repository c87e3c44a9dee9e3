// Package memstore provides a concurrency-safe, in-memory implementation of
// the store.Store contract. Data lives for the process lifetime only.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/leofalp/polychat/internal/store"
)

// MemStore keeps conversations and their messages in mutex-guarded maps.
// A single mutex serializes all mutations, which makes the append+touch
// atomicity and the insertion-order tie-break load-bearing rather than
// best-effort: two concurrent appends to the same conversation are ordered by
// whichever acquires the lock first, and each receives a distinct sequence
// number.
type MemStore struct {
	mu            sync.RWMutex
	conversations map[string]store.Conversation
	messages      map[string][]store.Message // conversation id -> messages in insertion order
	sequence      uint64                     // monotonically increasing insertion counter
	sequences     map[string]uint64          // message id -> insertion sequence
}

// New returns a new, empty MemStore ready for immediate use.
func New() *MemStore {
	return &MemStore{
		conversations: make(map[string]store.Conversation),
		messages:      make(map[string][]store.Message),
		sequences:     make(map[string]uint64),
	}
}

// Ensure MemStore implements store.Store at compile time.
var _ store.Store = (*MemStore)(nil)

// ListConversations returns all conversations sorted by LastMessageAt
// descending. The context parameter is accepted for interface compliance but
// is not used by the in-memory implementation.
func (m *MemStore) ListConversations(_ context.Context) ([]store.Conversation, error) {
	m.mu.RLock()
	out := make([]store.Conversation, 0, len(m.conversations))
	for _, conversation := range m.conversations {
		out = append(out, conversation)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].LastMessageAt.After(out[j].LastMessageAt)
	})
	return out, nil
}

// CreateConversation assigns a new uuid and sets LastMessageAt to now.
func (m *MemStore) CreateConversation(_ context.Context, title string) (store.Conversation, error) {
	conversation := store.Conversation{
		ID:            uuid.NewString(),
		Title:         title,
		LastMessageAt: time.Now(),
	}

	m.mu.Lock()
	m.conversations[conversation.ID] = conversation
	m.mu.Unlock()

	return conversation, nil
}

// DeleteConversation removes the conversation and all of its messages under
// one lock acquisition, so no reader can observe the conversation without its
// messages or vice versa.
func (m *MemStore) DeleteConversation(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.conversations[id]; !ok {
		return false, nil
	}

	for _, message := range m.messages[id] {
		delete(m.sequences, message.ID)
	}
	delete(m.messages, id)
	delete(m.conversations, id)
	return true, nil
}

// ListMessages returns a copy of the conversation's messages ordered by
// timestamp ascending with insertion order as the tie-break. Unknown
// conversations yield an empty, non-nil slice.
func (m *MemStore) ListMessages(_ context.Context, conversationID string) ([]store.Message, error) {
	type sequenced struct {
		message store.Message
		seq     uint64
	}

	m.mu.RLock()
	stored := m.messages[conversationID]
	ordered := make([]sequenced, len(stored))
	for i, message := range stored {
		ordered[i] = sequenced{message: message, seq: m.sequences[message.ID]}
	}
	m.mu.RUnlock()

	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].message.Timestamp.Equal(ordered[j].message.Timestamp) {
			return ordered[i].seq < ordered[j].seq
		}
		return ordered[i].message.Timestamp.Before(ordered[j].message.Timestamp)
	})

	out := make([]store.Message, len(ordered))
	for i, entry := range ordered {
		out[i] = entry.message
	}
	return out, nil
}

// AppendMessage inserts the message and bumps the parent conversation's
// LastMessageAt to the message's timestamp in the same critical section.
func (m *MemStore) AppendMessage(_ context.Context, conversationID string, role store.Role, content, provider string) (store.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	conversation, ok := m.conversations[conversationID]
	if !ok {
		return store.Message{}, store.ErrConversationNotFound
	}

	now := time.Now()
	message := store.Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		Timestamp:      now,
		Provider:       provider,
	}

	m.sequence++
	m.sequences[message.ID] = m.sequence
	m.messages[conversationID] = append(m.messages[conversationID], message)

	conversation.LastMessageAt = now
	m.conversations[conversationID] = conversation

	return message, nil
}
