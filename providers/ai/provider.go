package ai

import (
	"context"
	"net/http"
)

// StreamProvider is the interface every vendor adapter implements. It covers
// the full lifecycle of one generation: authentication, endpoint
// configuration, history encoding, and incremental delivery.
//
// The set of implementations is closed: one per backend family, each
// translating that vendor's streaming wire format into the uniform
// StreamEvent sequence. Adding a vendor means adding one implementation, not
// touching any caller.
type StreamProvider interface {
	// StreamMessage sends a chat request and returns a ChatStream that yields
	// incremental deltas as they arrive from the API. Pre-stream errors
	// (missing credentials, bad request, network) are returned as a normal
	// error before any delta is emitted. Mid-stream errors are yielded
	// through the iterator.
	StreamMessage(ctx context.Context, request ChatRequest) (*ChatStream, error)

	// WithAPIKey sets the API key used for authenticating requests.
	WithAPIKey(apiKey string) StreamProvider

	// WithBaseURL overrides the default base URL for API requests.
	WithBaseURL(baseURL string) StreamProvider

	// WithHttpClient sets the HTTP client used for outbound requests.
	WithHttpClient(httpClient *http.Client) StreamProvider
}
