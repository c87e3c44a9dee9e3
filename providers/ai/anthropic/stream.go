package anthropic

import (
	"context"
	"fmt"
	"io"

	"github.com/leofalp/polychat/internal/utils"
	"github.com/leofalp/polychat/providers/ai"
)

// StreamMessage implements [ai.StreamProvider] for Anthropic's Messages API.
// It sends a streaming request (stream=true) and returns a [ai.ChatStream]
// that yields incremental deltas as SSE events arrive from the API.
//
// Pre-stream errors (missing API key, non-2xx HTTP response, network failure)
// are returned immediately as a non-nil error. Mid-stream errors (Anthropic
// "error" event, SSE parse failure) are yielded through the iterator.
//
// Only content_block_delta events whose delta is a text_delta contribute
// content. All other lifecycle events (message_start, content_block_start,
// content_block_stop, ping) are ignored for content purposes.
func (provider *AnthropicProvider) StreamMessage(ctx context.Context, request ai.ChatRequest) (*ai.ChatStream, error) {
	// Guard against missing credentials before making a network call.
	if provider.apiKey == "" {
		return nil, fmt.Errorf("anthropic: %w", ai.ErrMissingAPIKey)
	}

	anthropicReq := anthropicRequest{
		Model:     request.Model,
		Messages:  buildMessages(request.Messages),
		MaxTokens: defaultMaxTokens,
		Stream:    true,
	}

	// Send the streaming request — body is left open for SSE reading.
	// Pass empty apiKey so DoPostStream does not inject a Bearer token;
	// Anthropic authenticates via x-api-key (set inside buildHeaders).
	streamURL := provider.baseURL + messagesEndpoint
	httpResponse, err := utils.DoPostStream(ctx, provider.client, streamURL, "", anthropicReq, provider.buildHeaders()...)
	if err != nil {
		return nil, err
	}

	// Build the SSE scanner that will read lines from the open response body.
	sseScanner := utils.NewSSEScanner(httpResponse.Body)

	iteratorFunc := func(yield func(ai.StreamEvent, error) bool) {
		// Ensure the response body is closed when the iterator is exhausted or
		// the caller breaks out of the loop early.
		defer utils.CloseWithLog(httpResponse.Body)

		// finishReason is captured from "message_delta" and used when
		// "message_stop" triggers the StreamEventDone event.
		finishReason := ""

		for {
			// Respect context cancellation between SSE reads.
			if ctx.Err() != nil {
				yield(ai.StreamEvent{}, ctx.Err())
				return
			}

			payload, sseErr := sseScanner.Next()
			if sseErr == io.EOF {
				// Stream finished normally.
				return
			}
			if sseErr != nil {
				yield(ai.StreamEvent{}, fmt.Errorf("SSE read error: %w", sseErr))
				return
			}

			// Parse the JSON payload into a typed stream event envelope.
			event, parseErr := unmarshalStreamEvent(payload)
			if parseErr != nil {
				yield(ai.StreamEvent{}, fmt.Errorf("failed to parse stream event: %w", parseErr))
				return
			}

			switch event.Type {

			case "content_block_delta":
				// Only text deltas carry content for plain chat turns.
				if event.Delta == nil || event.Delta.Type != "text_delta" || event.Delta.Text == "" {
					continue
				}
				if !yield(ai.StreamEvent{Type: ai.StreamEventContent, Content: event.Delta.Text}, nil) {
					return // Caller stopped iterating
				}

			case "message_delta":
				// message_delta carries the stop reason ahead of message_stop.
				if event.Delta != nil && event.Delta.StopReason != "" {
					finishReason = event.Delta.StopReason
				}

			case "message_stop":
				yield(ai.StreamEvent{Type: ai.StreamEventDone, FinishReason: finishReason}, nil)
				return

			case "error":
				message := "unknown error"
				if event.Error != nil {
					message = event.Error.Message
				}
				yield(ai.StreamEvent{}, fmt.Errorf("anthropic stream error: %s", message))
				return

			default:
				// message_start, content_block_start, content_block_stop, ping:
				// lifecycle events with no content contribution.
			}
		}
	}

	return ai.NewChatStream(iteratorFunc), nil
}
