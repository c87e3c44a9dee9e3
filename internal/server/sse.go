package server

import (
	"encoding/json"
	"fmt"
	"net/http"
)

/*
	SSE CHANNEL ENCODER

	Three event shapes go onto the outbound text/event-stream, one event per
	logical unit, each terminated by a blank line:

	  content fragment  → data: {"content":<text>}
	  terminal success  → data: {"done":true}
	  terminal failure  → data: {"error":<text>}

	Exactly one terminal event is written per turn; the handler stops
	encoding after it.
*/

type contentEvent struct {
	Content string `json:"content"`
}

type doneEvent struct {
	Done bool `json:"done"`
}

type errorEvent struct {
	Error string `json:"error"`
}

// sseEncoder serializes gateway events onto a one-way text event stream,
// flushing after every event so fragments reach the caller incrementally.
type sseEncoder struct {
	writer  http.ResponseWriter
	flusher http.Flusher
}

// newSSEEncoder prepares the response for event streaming and returns the
// encoder. The ok result is false when the ResponseWriter cannot flush, in
// which case no headers have been written.
func newSSEEncoder(writer http.ResponseWriter) (*sseEncoder, bool) {
	flusher, ok := writer.(http.Flusher)
	if !ok {
		return nil, false
	}

	writer.Header().Set("Content-Type", "text/event-stream")
	writer.Header().Set("Cache-Control", "no-cache")
	writer.Header().Set("Connection", "keep-alive")
	writer.WriteHeader(http.StatusOK)

	return &sseEncoder{writer: writer, flusher: flusher}, true
}

// writeEvent marshals the payload onto one data line followed by the blank
// line that terminates an SSE event.
func (encoder *sseEncoder) writeEvent(payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal SSE event: %w", err)
	}
	if _, err := fmt.Fprintf(encoder.writer, "data: %s\n\n", data); err != nil {
		return fmt.Errorf("failed to write SSE event: %w", err)
	}
	encoder.flusher.Flush()
	return nil
}

// WriteContent emits one content-fragment event.
func (encoder *sseEncoder) WriteContent(text string) error {
	return encoder.writeEvent(contentEvent{Content: text})
}

// WriteDone emits the terminal success event.
func (encoder *sseEncoder) WriteDone() error {
	return encoder.writeEvent(doneEvent{Done: true})
}

// WriteError emits the terminal failure event.
func (encoder *sseEncoder) WriteError(message string) error {
	return encoder.writeEvent(errorEvent{Error: message})
}
