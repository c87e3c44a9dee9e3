// Package server exposes the chat gateway and conversation store over HTTP.
//
// Endpoints:
//   - GET    /conversations                — list conversations, most recent first
//   - POST   /conversations               — create a conversation
//   - DELETE /conversations/{id}          — delete a conversation and its messages
//   - GET    /conversations/{id}/messages — ordered message history
//   - POST   /chat                        — run one chat turn, streamed as SSE
//
// REST failures are JSON {"error": ...} bodies. The chat endpoint returns 400
// only for validation failures; every later failure arrives as a stream error
// event because the response status is already committed once streaming
// begins.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/leofalp/polychat/internal/gateway"
	"github.com/leofalp/polychat/internal/store"
	"github.com/leofalp/polychat/providers/ai"
)

// maxRequestBodySize caps request bodies before JSON decoding (1 MB).
const maxRequestBodySize = 1 * 1024 * 1024

// TurnStarter starts one chat turn. *gateway.Gateway is the production
// implementation.
type TurnStarter interface {
	StartTurn(ctx context.Context, request gateway.TurnRequest) (*ai.ChatStream, error)
}

// Server wires the store and gateway into an http.Handler.
type Server struct {
	store   store.Store
	gateway TurnStarter
	logger  *slog.Logger
	limiter *rate.Limiter
}

// New creates a Server. limiter may be nil to disable chat rate limiting;
// logger may be nil to use the default logger.
func New(st store.Store, gw TurnStarter, logger *slog.Logger, limiter *rate.Limiter) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{store: st, gateway: gw, logger: logger, limiter: limiter}
}

// Handler returns the fully assembled route tree with logging and panic
// recovery applied outermost.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /conversations", s.handleListConversations)
	mux.HandleFunc("POST /conversations", s.handleCreateConversation)
	mux.HandleFunc("DELETE /conversations/{id}", s.handleDeleteConversation)
	mux.HandleFunc("GET /conversations/{id}/messages", s.handleListMessages)
	mux.Handle("POST /chat", withRateLimit(http.HandlerFunc(s.handleChat), s.limiter))

	return withRecovery(withLogging(mux, s.logger), s.logger)
}

func (s *Server) handleListConversations(writer http.ResponseWriter, request *http.Request) {
	conversations, err := s.store.ListConversations(request.Context())
	if err != nil {
		s.logger.Error("failed to list conversations", "error", err)
		writeJSONError(writer, http.StatusInternalServerError, "failed to fetch conversations")
		return
	}
	writeJSON(writer, http.StatusOK, conversations)
}

type createConversationRequest struct {
	Title string `json:"title"`
}

func (s *Server) handleCreateConversation(writer http.ResponseWriter, request *http.Request) {
	var body createConversationRequest
	if err := decodeJSONBody(writer, request, &body); err != nil {
		writeJSONError(writer, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Title == "" {
		writeJSONError(writer, http.StatusBadRequest, "title is required")
		return
	}

	conversation, err := s.store.CreateConversation(request.Context(), body.Title)
	if err != nil {
		s.logger.Error("failed to create conversation", "error", err)
		writeJSONError(writer, http.StatusInternalServerError, "failed to create conversation")
		return
	}
	writeJSON(writer, http.StatusOK, conversation)
}

type deleteConversationResponse struct {
	Success bool `json:"success"`
}

func (s *Server) handleDeleteConversation(writer http.ResponseWriter, request *http.Request) {
	id := request.PathValue("id")

	deleted, err := s.store.DeleteConversation(request.Context(), id)
	if err != nil {
		s.logger.Error("failed to delete conversation", "conversation_id", id, "error", err)
		writeJSONError(writer, http.StatusInternalServerError, "failed to delete conversation")
		return
	}
	if !deleted {
		writeJSONError(writer, http.StatusNotFound, "conversation not found")
		return
	}
	writeJSON(writer, http.StatusOK, deleteConversationResponse{Success: true})
}

func (s *Server) handleListMessages(writer http.ResponseWriter, request *http.Request) {
	id := request.PathValue("id")

	messages, err := s.store.ListMessages(request.Context(), id)
	if err != nil {
		s.logger.Error("failed to list messages", "conversation_id", id, "error", err)
		writeJSONError(writer, http.StatusInternalServerError, "failed to fetch messages")
		return
	}
	writeJSON(writer, http.StatusOK, messages)
}

func (s *Server) handleChat(writer http.ResponseWriter, request *http.Request) {
	var turn gateway.TurnRequest
	if err := decodeJSONBody(writer, request, &turn); err != nil {
		writeJSONError(writer, http.StatusBadRequest, "invalid request body")
		return
	}

	stream, err := s.gateway.StartTurn(request.Context(), turn)
	if err != nil {
		if errors.Is(err, gateway.ErrMissingFields) {
			writeJSONError(writer, http.StatusBadRequest, "missing required fields")
			return
		}
		s.logger.Error("failed to start chat turn", "error", err)
		writeJSONError(writer, http.StatusInternalServerError, "failed to process chat request")
		return
	}

	encoder, ok := newSSEEncoder(writer)
	if !ok {
		writeJSONError(writer, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	// Consume the turn stream. The gateway emits exactly one terminal event;
	// encoding stops there, and an encoder failure (caller gone) abandons the
	// iteration, which the gateway observes as a dropped consumer. An error
	// surfaced through the iterator itself still terminates the stream with
	// an error event so no turn ends without a terminal.
	for event, err := range stream.Iter() {
		if err != nil {
			_ = encoder.WriteError(err.Error())
			return
		}
		switch event.Type {
		case ai.StreamEventContent:
			if err := encoder.WriteContent(event.Content); err != nil {
				return
			}
		case ai.StreamEventDone:
			_ = encoder.WriteDone()
			return
		case ai.StreamEventError:
			_ = encoder.WriteError(event.Error)
			return
		}
	}
}

// decodeJSONBody decodes a JSON request body with a size cap.
func decodeJSONBody(writer http.ResponseWriter, request *http.Request, target any) error {
	request.Body = http.MaxBytesReader(writer, request.Body, maxRequestBodySize)
	decoder := json.NewDecoder(request.Body)
	return decoder.Decode(target)
}

func writeJSON(writer http.ResponseWriter, status int, payload any) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	if err := json.NewEncoder(writer).Encode(payload); err != nil {
		slog.Warn("failed to encode response", "error", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSONError(writer http.ResponseWriter, status int, message string) {
	writeJSON(writer, status, errorResponse{Error: message})
}
