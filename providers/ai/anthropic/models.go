package anthropic

import (
	"encoding/json"
	"fmt"

	"github.com/leofalp/polychat/providers/ai"
)

/*
	ANTHROPIC MESSAGES API - WIRE TYPES

	Request messages carry content as an array of typed content blocks.
	Streaming uses SSE with "event:" lines followed by "data:" JSON payloads;
	the SSEScanner only surfaces "data:" lines, so the "type" field inside the
	JSON payload discriminates events.

	Event lifecycle:
	  message_start → content_block_start → content_block_delta(s) →
	  content_block_stop → message_delta → message_stop
*/

// anthropicRequest is the request body for the Messages API.
type anthropicRequest struct {
	Model     string             `json:"model"`
	Messages  []anthropicMessage `json:"messages"`
	MaxTokens int                `json:"max_tokens"` // Required by Anthropic on every request
	Stream    bool               `json:"stream,omitempty"`
}

// anthropicMessage is a single turn in the conversation history.
type anthropicMessage struct {
	Role    string                  `json:"role"`    // "user" or "assistant"
	Content []anthropicContentBlock `json:"content"` // Array of content blocks
}

// anthropicContentBlock is a typed content block. Only text blocks are used
// for plain chat history.
type anthropicContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// buildMessages converts the generic history into Anthropic's content-block
// encoding: every message becomes one block of type "text".
func buildMessages(messages []ai.Message) []anthropicMessage {
	result := make([]anthropicMessage, 0, len(messages))
	for _, msg := range messages {
		result = append(result, anthropicMessage{
			Role:    string(msg.Role),
			Content: []anthropicContentBlock{{Type: "text", Text: msg.Content}},
		})
	}
	return result
}

// anthropicStreamEvent is the top-level envelope for all Anthropic SSE events.
// The Type field discriminates which optional fields are populated.
type anthropicStreamEvent struct {
	Type         string                 `json:"type"`                    // Event discriminator
	Index        int                    `json:"index,omitempty"`         // For content_block_start/delta/stop
	ContentBlock *anthropicContentBlock `json:"content_block,omitempty"` // For "content_block_start"
	Delta        *streamDelta           `json:"delta,omitempty"`         // For "content_block_delta" and "message_delta"
	Error        *anthropicError        `json:"error,omitempty"`         // For "error" events
}

// streamDelta carries incremental content within a content_block_delta or
// message_delta event. The Type field discriminates the kind of delta:
//   - "text_delta": Text field is populated
//   - (no type on message_delta): StopReason is populated
type streamDelta struct {
	Type       string `json:"type,omitempty"` // "text_delta" for content deltas
	Text       string `json:"text,omitempty"` // For text_delta
	StopReason string `json:"stop_reason,omitempty"`
}

// anthropicError represents an error event in the Anthropic SSE stream.
type anthropicError struct {
	Type    string `json:"type"`    // Error type (e.g., "overloaded_error", "api_error")
	Message string `json:"message"` // Human-readable error description
}

// unmarshalStreamEvent parses a JSON payload string into an anthropicStreamEvent.
// Returns an error if the JSON is invalid or the type field is missing.
func unmarshalStreamEvent(payload string) (*anthropicStreamEvent, error) {
	var event anthropicStreamEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return nil, err
	}
	if event.Type == "" {
		return nil, fmt.Errorf("missing type field in stream event")
	}
	return &event, nil
}
