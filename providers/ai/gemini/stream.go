package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/leofalp/polychat/internal/utils"
	"github.com/leofalp/polychat/providers/ai"
)

// StreamMessage implements ai.StreamProvider for the Gemini API.
// It uses the streamGenerateContent endpoint with alt=sse to receive
// incremental response chunks as SSE events.
//
// Each SSE event carries a generateContentResponse whose first candidate's
// first part's text is the content fragment for that chunk. Chunks without
// candidates fall back to the top-level text field.
//
// Pre-stream errors (missing API key, non-2xx HTTP response, network failure)
// are returned immediately as a non-nil error. Mid-stream errors (vendor
// error chunk, SSE parse failure) are yielded through the iterator.
func (provider *GeminiProvider) StreamMessage(ctx context.Context, request ai.ChatRequest) (*ai.ChatStream, error) {
	// Guard against missing credentials before making a network call.
	if provider.apiKey == "" {
		return nil, fmt.Errorf("gemini: %w", ai.ErrMissingAPIKey)
	}

	// Build streaming URL: streamGenerateContent with alt=sse
	streamURL := fmt.Sprintf("%s/models/%s:streamGenerateContent?alt=sse", provider.baseURL, request.Model)

	geminiRequest := generateContentRequest{
		Contents: buildContents(request.Messages),
	}

	// Send the streaming request with Gemini-specific auth header
	httpResponse, err := utils.DoPostStream(
		ctx,
		provider.client,
		streamURL,
		"", // Empty apiKey: Gemini authenticates via x-goog-api-key, not Bearer
		geminiRequest,
		utils.HeaderOption{Key: "x-goog-api-key", Value: provider.apiKey},
	)
	if err != nil {
		return nil, err
	}

	// Build the iterator function that reads SSE events and converts them to StreamEvents
	sseScanner := utils.NewSSEScanner(httpResponse.Body)

	iteratorFunc := func(yield func(ai.StreamEvent, error) bool) {
		// Ensure the response body is closed when the iterator is done
		defer utils.CloseWithLog(httpResponse.Body)

		for {
			// Check for context cancellation
			if ctx.Err() != nil {
				yield(ai.StreamEvent{}, ctx.Err())
				return
			}

			payload, sseErr := sseScanner.Next()
			if sseErr == io.EOF {
				// Stream finished normally
				return
			}
			if sseErr != nil {
				yield(ai.StreamEvent{}, fmt.Errorf("SSE read error: %w", sseErr))
				return
			}

			var chunk generateContentResponse
			if parseErr := json.Unmarshal([]byte(payload), &chunk); parseErr != nil {
				yield(ai.StreamEvent{}, fmt.Errorf("failed to parse Gemini streaming chunk: %w", parseErr))
				return
			}

			// Vendor-reported failure terminates the stream
			if chunk.Error != nil {
				yield(ai.StreamEvent{}, fmt.Errorf("gemini stream error: %s", chunk.Error.Message))
				return
			}

			// Extract the fragment and any finish reason from this chunk
			events := chunkToStreamEvents(&chunk)
			for _, event := range events {
				if !yield(event, nil) {
					return // Caller stopped iterating
				}
			}
		}
	}

	return ai.NewChatStream(iteratorFunc), nil
}

// chunkToStreamEvents extracts the content fragment and finish reason from a
// streaming chunk. The fragment is the first candidate's first part's text,
// or the top-level text field when no candidates are present.
func chunkToStreamEvents(chunk *generateContentResponse) []ai.StreamEvent {
	var events []ai.StreamEvent

	fragment := chunk.Text
	finishReason := ""

	if len(chunk.Candidates) > 0 {
		candidate := chunk.Candidates[0]
		if candidate.Content != nil && len(candidate.Content.Parts) > 0 {
			fragment = candidate.Content.Parts[0].Text
		}
		finishReason = candidate.FinishReason
	}

	if fragment != "" {
		events = append(events, ai.StreamEvent{
			Type:    ai.StreamEventContent,
			Content: fragment,
		})
	}

	if finishReason != "" {
		events = append(events, ai.StreamEvent{
			Type:         ai.StreamEventDone,
			FinishReason: finishReason,
		})
	}

	return events
}
