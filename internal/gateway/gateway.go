// Package gateway orchestrates one chat turn: validation, user-message
// persistence, history load, provider adapter selection, streaming, and
// assistant-message persistence.
//
// A turn moves through validating → history-loaded → streaming →
// completed|failed. Validation failures are returned before any mutation;
// once a turn is validated its user message is always persisted, and an
// assistant message is persisted only when the provider stream completes
// cleanly. All post-validation failures are delivered as a single terminal
// error event on the turn's stream.
package gateway

import (
	"context"
	"log/slog"
	"strings"

	"github.com/leofalp/polychat/internal/store"
	"github.com/leofalp/polychat/providers/ai"
)

// TurnRequest is the explicit per-turn configuration: target conversation,
// user message, provider and model selection, and optional explicit
// credentials. There is no ambient provider state; everything a turn needs
// travels in this value.
type TurnRequest struct {
	ConversationID string `json:"conversationId"`
	Message        string `json:"message"`
	Provider       string `json:"provider"`
	Model          string `json:"model"`
	APIKey         string `json:"apiKey,omitempty"`
}

// Gateway coordinates the conversation store and the provider adapters for
// chat turns. Turns are independent: multiple may run concurrently, and the
// store serializes any same-conversation mutations.
type Gateway struct {
	store     store.Store
	providers ProviderFactory
	logger    *slog.Logger
}

// New creates a Gateway. The factory is typically DefaultFactory; tests
// substitute scripted providers through it.
func New(st store.Store, providers ProviderFactory, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{store: st, providers: providers, logger: logger}
}

// StartTurn validates the request and returns the turn's event stream.
//
// A validation failure (any missing required field) is returned immediately
// as ErrMissingFields with no side effects. Otherwise the returned stream
// drives the whole turn when consumed: the user message is persisted first,
// unconditionally; content fragments are yielded as they arrive from the
// provider and accumulated in memory; on clean end-of-stream exactly one
// assistant message holding the accumulated text is persisted and a terminal
// done event is yielded. Any failure after validation (unknown provider,
// missing credentials, vendor error, storage fault, caller cancellation)
// yields exactly one terminal error event instead, and the accumulated
// partial content is discarded.
//
// ctx cancellation propagates into the in-flight provider call; a cancelled
// turn is a failed turn for persistence purposes.
func (g *Gateway) StartTurn(ctx context.Context, request TurnRequest) (*ai.ChatStream, error) {
	if request.ConversationID == "" || request.Message == "" || request.Provider == "" || request.Model == "" {
		return nil, ErrMissingFields
	}

	iteratorFunc := func(yield func(ai.StreamEvent, error) bool) {
		fail := func(message string) {
			yield(ai.StreamEvent{Type: ai.StreamEventError, Error: message}, nil)
		}

		// A validated turn is never silently dropped from history: the user
		// message lands before the provider is even resolved.
		if _, err := g.store.AppendMessage(ctx, request.ConversationID, store.RoleUser, request.Message, ""); err != nil {
			g.logger.Error("failed to persist user message",
				"conversation_id", request.ConversationID, "error", err)
			fail(err.Error())
			return
		}

		history, err := g.store.ListMessages(ctx, request.ConversationID)
		if err != nil {
			g.logger.Error("failed to load history",
				"conversation_id", request.ConversationID, "error", err)
			fail(err.Error())
			return
		}

		provider, err := g.providers(request.Provider, request.APIKey)
		if err != nil {
			fail(err.Error())
			return
		}

		stream, err := provider.StreamMessage(ctx, ai.ChatRequest{
			Model:    request.Model,
			Messages: historyToMessages(history),
		})
		if err != nil {
			g.logger.Warn("provider stream failed to start",
				"provider", request.Provider, "model", request.Model, "error", err)
			fail(err.Error())
			return
		}

		// Accumulate fragments in memory while forwarding them; nothing is
		// written to the store until the stream ends cleanly.
		var accumulated strings.Builder
		for event, streamErr := range stream.Iter() {
			if streamErr != nil {
				g.logger.Warn("provider stream failed mid-turn",
					"provider", request.Provider, "model", request.Model, "error", streamErr)
				fail(streamErr.Error())
				return
			}
			if event.Type != ai.StreamEventContent {
				continue
			}
			accumulated.WriteString(event.Content)
			if !yield(event, nil) {
				// Caller stopped consuming; the turn is abandoned without an
				// assistant message.
				return
			}
		}

		// The iterator can drain without surfacing the cancellation that
		// stopped it; a cancelled turn must not persist an assistant message.
		if ctx.Err() != nil {
			fail(ctx.Err().Error())
			return
		}

		if _, err := g.store.AppendMessage(ctx, request.ConversationID, store.RoleAssistant, accumulated.String(), request.Model); err != nil {
			g.logger.Error("failed to persist assistant message",
				"conversation_id", request.ConversationID, "error", err)
			fail(err.Error())
			return
		}

		yield(ai.StreamEvent{Type: ai.StreamEventDone}, nil)
	}

	return ai.NewChatStream(iteratorFunc), nil
}

// historyToMessages converts stored history into the provider-facing shape.
func historyToMessages(history []store.Message) []ai.Message {
	messages := make([]ai.Message, 0, len(history))
	for _, message := range history {
		messages = append(messages, ai.Message{
			Role:    ai.MessageRole(message.Role),
			Content: message.Content,
		})
	}
	return messages
}
