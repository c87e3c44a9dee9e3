// Package sqlitestore provides a SQLite-backed implementation of the
// store.Store contract using the pure Go modernc.org/sqlite driver.
//
// Messages cascade-delete with their conversation via a foreign key, and a
// message insert shares one transaction with the parent conversation's
// last-message timestamp update, so both are observed together. Ordering uses
// the timestamp column with the autoincrement seq column as a stable
// tie-break.
package sqlitestore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/leofalp/polychat/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS conversations (
	id              TEXT PRIMARY KEY,
	title           TEXT NOT NULL,
	last_message_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	seq             INTEGER PRIMARY KEY AUTOINCREMENT,
	id              TEXT NOT NULL UNIQUE,
	conversation_id TEXT NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
	role            TEXT NOT NULL,
	content         TEXT NOT NULL,
	provider        TEXT NOT NULL DEFAULT '',
	timestamp       INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_messages_conversation
	ON messages(conversation_id, timestamp, seq);
`

// SQLiteStore implements store.Store on a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// Open opens (creating if necessary) the database at path and prepares the
// schema. Use ":memory:" for an ephemeral database in tests. The connection
// pool is capped at a single connection: SQLite serializes writers anyway,
// and a single connection keeps the foreign_keys pragma and in-memory
// databases consistent across calls.
func Open(path string) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to prepare schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Ensure SQLiteStore implements store.Store at compile time.
var _ store.Store = (*SQLiteStore)(nil)

// ListConversations returns all conversations ordered by last_message_at
// descending.
func (s *SQLiteStore) ListConversations(ctx context.Context) ([]store.Conversation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, last_message_at FROM conversations ORDER BY last_message_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer rows.Close()

	conversations := []store.Conversation{}
	for rows.Next() {
		var conversation store.Conversation
		var lastMessageAt int64
		if err := rows.Scan(&conversation.ID, &conversation.Title, &lastMessageAt); err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		conversation.LastMessageAt = time.Unix(0, lastMessageAt)
		conversations = append(conversations, conversation)
	}
	return conversations, rows.Err()
}

// CreateConversation inserts a new conversation with a fresh uuid.
func (s *SQLiteStore) CreateConversation(ctx context.Context, title string) (store.Conversation, error) {
	conversation := store.Conversation{
		ID:            uuid.NewString(),
		Title:         title,
		LastMessageAt: time.Now(),
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO conversations (id, title, last_message_at) VALUES (?, ?, ?)`,
		conversation.ID, conversation.Title, conversation.LastMessageAt.UnixNano())
	if err != nil {
		return store.Conversation{}, fmt.Errorf("failed to create conversation: %w", err)
	}
	return conversation, nil
}

// DeleteConversation removes the conversation; the messages foreign key
// cascades the delete to its history within the same statement.
func (s *SQLiteStore) DeleteConversation(ctx context.Context, id string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM conversations WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete conversation: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read delete result: %w", err)
	}
	return affected > 0, nil
}

// ListMessages returns the conversation's messages ordered by timestamp with
// the insertion sequence as a stable tie-break. Unknown conversations yield
// an empty slice.
func (s *SQLiteStore) ListMessages(ctx context.Context, conversationID string) ([]store.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, conversation_id, role, content, provider, timestamp
		 FROM messages WHERE conversation_id = ?
		 ORDER BY timestamp ASC, seq ASC`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	messages := []store.Message{}
	for rows.Next() {
		var message store.Message
		var role string
		var timestamp int64
		if err := rows.Scan(&message.ID, &message.ConversationID, &role, &message.Content, &message.Provider, &timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		message.Role = store.Role(role)
		message.Timestamp = time.Unix(0, timestamp)
		messages = append(messages, message)
	}
	return messages, rows.Err()
}

// AppendMessage inserts the message and bumps the parent conversation's
// last_message_at inside one transaction.
func (s *SQLiteStore) AppendMessage(ctx context.Context, conversationID string, role store.Role, content, provider string) (store.Message, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return store.Message{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM conversations WHERE id = ?`, conversationID).Scan(&exists)
	if err == sql.ErrNoRows {
		return store.Message{}, store.ErrConversationNotFound
	}
	if err != nil {
		return store.Message{}, fmt.Errorf("failed to look up conversation: %w", err)
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

	_, err = tx.ExecContext(ctx,
		`INSERT INTO messages (id, conversation_id, role, content, provider, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		message.ID, message.ConversationID, string(message.Role), message.Content, message.Provider, now.UnixNano())
	if err != nil {
		return store.Message{}, fmt.Errorf("failed to insert message: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE conversations SET last_message_at = ? WHERE id = ?`,
		now.UnixNano(), conversationID)
	if err != nil {
		return store.Message{}, fmt.Errorf("failed to touch conversation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return store.Message{}, fmt.Errorf("failed to commit message: %w", err)
	}
	return message, nil
}
