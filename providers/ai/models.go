package ai

import "errors"

// ErrMissingAPIKey is returned by a provider when the turn's credentials are
// absent. The check happens before any network call, so no streamed content
// can have been emitted when this error surfaces.
var ErrMissingAPIKey = errors.New("API key is not set")

/*
	##### PROVIDER INPUT #####
*/

// ChatRequest represents a request to generate one assistant reply from the
// full ordered history of a conversation.
type ChatRequest struct {
	Model    string    `json:"model,omitempty"` // Model name or identifier
	Messages []Message `json:"messages"`        // All messages in the conversation, oldest first
}

// Message represents a single message in a conversation.
type Message struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content,omitempty"`
}

/*
	##### ENUMS #####
*/

// MessageRole represents the role of a message; compatible with string
type MessageRole string

const (
	RoleUser      MessageRole = "user"      // End-user message
	RoleAssistant MessageRole = "assistant" // LLM response
)
