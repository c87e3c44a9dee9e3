package utils

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// ---- SSEScanner tests -------------------------------------------------------

// TestSSEScanner_SingleEvent verifies that a simple "data: <payload>\n\n"
// produces exactly one payload and then io.EOF.
func TestSSEScanner_SingleEvent_ReturnsSinglePayload(t *testing.T) {
	input := "data: hello\n\n"
	scanner := NewSSEScanner(strings.NewReader(input))

	payload, err := scanner.Next()
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if payload != "hello" {
		t.Errorf("expected payload %q, got %q", "hello", payload)
	}

	_, err = scanner.Next()
	if err != io.EOF {
		t.Errorf("expected io.EOF after last event, got %v", err)
	}
}

// TestSSEScanner_MultipleEvents verifies that multiple events separated by
// blank lines are returned in order.
func TestSSEScanner_MultipleEvents_ReturnsInOrder(t *testing.T) {
	input := "data: first\n\ndata: second\n\ndata: third\n\n"
	scanner := NewSSEScanner(strings.NewReader(input))

	expectedPayloads := []string{"first", "second", "third"}
	for _, expected := range expectedPayloads {
		payload, err := scanner.Next()
		if err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
		if payload != expected {
			t.Errorf("expected %q, got %q", expected, payload)
		}
	}

	_, err := scanner.Next()
	if err != io.EOF {
		t.Errorf("expected io.EOF, got %v", err)
	}
}

// TestSSEScanner_MultiLineDataEvent verifies that consecutive "data:" lines
// within a single event are joined with newlines into a single payload.
func TestSSEScanner_MultiLineDataEvent_JoinsWithNewline(t *testing.T) {
	input := "data: line1\ndata: line2\ndata: line3\n\n"
	scanner := NewSSEScanner(strings.NewReader(input))

	payload, err := scanner.Next()
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	expected := "line1\nline2\nline3"
	if payload != expected {
		t.Errorf("expected %q, got %q", expected, payload)
	}
}

// TestSSEScanner_SkipsComments verifies that lines starting with ":" are
// treated as SSE comments and ignored.
func TestSSEScanner_SkipsComments_ReturnsOnlyDataEvents(t *testing.T) {
	input := ": this is a comment\ndata: real payload\n\n"
	scanner := NewSSEScanner(strings.NewReader(input))

	payload, err := scanner.Next()
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if payload != "real payload" {
		t.Errorf("expected %q, got %q", "real payload", payload)
	}
}

// TestSSEScanner_IgnoresEventFields verifies that "event:" lines (used by
// Anthropic to name events) are skipped; only the data payload is surfaced.
func TestSSEScanner_IgnoresEventFields_ReturnsDataOnly(t *testing.T) {
	input := "event: content_block_delta\ndata: {\"type\":\"content_block_delta\"}\n\n"
	scanner := NewSSEScanner(strings.NewReader(input))

	payload, err := scanner.Next()
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if payload != `{"type":"content_block_delta"}` {
		t.Errorf("unexpected payload: %q", payload)
	}
}

// TestSSEScanner_DoneSentinel verifies that a "data: [DONE]" line causes
// Next() to return io.EOF immediately (OpenAI convention).
func TestSSEScanner_DoneSentinel_ReturnsEOF(t *testing.T) {
	input := "data: before\n\ndata: [DONE]\n\n"
	scanner := NewSSEScanner(strings.NewReader(input))

	// First event should succeed
	_, err := scanner.Next()
	if err != nil {
		t.Fatalf("expected nil error on first event, got %v", err)
	}

	// [DONE] should produce io.EOF
	_, err = scanner.Next()
	if err != io.EOF {
		t.Errorf("expected io.EOF on [DONE], got %v", err)
	}
}

// TestSSEScanner_EmptyStream verifies that an empty input returns io.EOF
// immediately without panicking.
func TestSSEScanner_EmptyStream_ReturnsEOF(t *testing.T) {
	scanner := NewSSEScanner(strings.NewReader(""))

	_, err := scanner.Next()
	if err != io.EOF {
		t.Errorf("expected io.EOF for empty stream, got %v", err)
	}
}

// TestSSEScanner_TrailingDataWithoutBlankLine verifies that a data line not
// followed by the terminating blank line is still returned when the stream
// ends.
func TestSSEScanner_TrailingDataWithoutBlankLine_ReturnsPayload(t *testing.T) {
	input := "data: trailing"
	scanner := NewSSEScanner(strings.NewReader(input))

	payload, err := scanner.Next()
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if payload != "trailing" {
		t.Errorf("expected %q, got %q", "trailing", payload)
	}
}

// ---- DoPostStream tests -----------------------------------------------------

// TestDoPostStream_LeavesBodyOpen verifies that a 2xx response body is
// returned open and readable by the caller.
func TestDoPostStream_LeavesBodyOpen_BodyReadable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if accept := request.Header.Get("Accept"); accept != "text/event-stream" {
			t.Errorf("expected Accept text/event-stream, got %q", accept)
		}
		writer.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(writer, "data: hello\n\n")
	}))
	defer server.Close()

	response, err := DoPostStream(context.Background(), server.Client(), server.URL, "test-key", map[string]string{"k": "v"})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	defer CloseWithLog(response.Body)

	body, err := io.ReadAll(response.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	if string(body) != "data: hello\n\n" {
		t.Errorf("unexpected body: %q", string(body))
	}
}

// TestDoPostStream_BearerAuth verifies that a non-empty apiKey is sent as an
// Authorization bearer token and that HeaderOptions can override defaults.
func TestDoPostStream_BearerAuth_SetsAuthorizationHeader(t *testing.T) {
	var gotAuth, gotCustom string
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		gotAuth = request.Header.Get("Authorization")
		gotCustom = request.Header.Get("x-api-key")
	}))
	defer server.Close()

	response, err := DoPostStream(context.Background(), server.Client(), server.URL, "secret", nil,
		HeaderOption{Key: "x-api-key", Value: "other-secret"})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	CloseWithLog(response.Body)

	if gotAuth != "Bearer secret" {
		t.Errorf("expected Authorization %q, got %q", "Bearer secret", gotAuth)
	}
	if gotCustom != "other-secret" {
		t.Errorf("expected x-api-key %q, got %q", "other-secret", gotCustom)
	}
}

// TestDoPostStream_Non2xx verifies that error responses are read, closed, and
// surfaced as an error that includes the body.
func TestDoPostStream_Non2xx_ReturnsErrorWithBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(writer, `{"error":"invalid api key"}`)
	}))
	defer server.Close()

	_, err := DoPostStream(context.Background(), server.Client(), server.URL, "bad-key", nil)
	if err == nil {
		t.Fatal("expected error for non-2xx response")
	}
	if !strings.Contains(err.Error(), "401") {
		t.Errorf("expected status code in error, got %v", err)
	}
	if !strings.Contains(err.Error(), "invalid api key") {
		t.Errorf("expected body in error, got %v", err)
	}
}

// TestDoPostStream_CancelledContext verifies that a cancelled context aborts
// the request.
func TestDoPostStream_CancelledContext_ReturnsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		<-request.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := DoPostStream(ctx, server.Client(), server.URL, "", nil)
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
