package openai

import (
	"encoding/json"

	"github.com/leofalp/polychat/providers/ai"
)

/*
	CHAT COMPLETIONS STREAMING API - WIRE TYPES

	These types model the request body and the SSE chunks exchanged with the
	/v1/chat/completions endpoint when stream=true. Each chunk carries an
	incremental content delta; the stream ends with the [DONE] sentinel.
*/

// chatCompletionRequest is the request body for the chat completions endpoint.
type chatCompletionRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream,omitempty"`
}

// chatMessage is the flat {role, content} history encoding used by
// OpenAI-compatible APIs.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// requestToChatCompletion converts a generic ai.ChatRequest into the chat
// completions wire format.
func requestToChatCompletion(request ai.ChatRequest) chatCompletionRequest {
	messages := make([]chatMessage, 0, len(request.Messages))
	for _, message := range request.Messages {
		messages = append(messages, chatMessage{
			Role:    string(message.Role),
			Content: message.Content,
		})
	}

	return chatCompletionRequest{
		Model:    request.Model,
		Messages: messages,
	}
}

// chatCompletionStreamChunk represents a single SSE chunk from the streaming
// chat completions endpoint. Error chunks carry a top-level error object and
// no choices.
type chatCompletionStreamChunk struct {
	ID      string         `json:"id"`
	Object  string         `json:"object"` // "chat.completion.chunk"
	Created int64          `json:"created"`
	Model   string         `json:"model"`
	Choices []streamChoice `json:"choices"`
	Error   *apiError      `json:"error,omitempty"` // Vendor-reported mid-stream failure
}

// streamChoice represents a single choice in a streaming chunk.
type streamChoice struct {
	Index        int         `json:"index"`
	Delta        streamDelta `json:"delta"`
	FinishReason *string     `json:"finish_reason"` // Nullable; nil until the final chunk for this choice
}

// streamDelta carries the incremental content for a streaming chunk.
type streamDelta struct {
	Role    string  `json:"role,omitempty"`
	Content *string `json:"content,omitempty"` // Nullable to distinguish empty string from absent
}

// apiError is the error payload OpenAI-compatible APIs embed in a chunk when
// generation fails after the stream has started.
type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type,omitempty"`
	Code    string `json:"code,omitempty"`
}

// unmarshalStreamChunk parses a raw SSE data payload into a chatCompletionStreamChunk.
func unmarshalStreamChunk(data string) (*chatCompletionStreamChunk, error) {
	var chunk chatCompletionStreamChunk
	if err := json.Unmarshal([]byte(data), &chunk); err != nil {
		return nil, err
	}
	return &chunk, nil
}
