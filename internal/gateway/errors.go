package gateway

import "errors"

var (
	// ErrMissingFields is returned before any mutation when a chat turn is
	// missing its conversation id, message text, provider id, or model id.
	ErrMissingFields = errors.New("missing required fields")

	// ErrUnknownProvider is returned by the default provider factory when the
	// requested provider identifier matches no adapter variant. By the time
	// this surfaces the user message has already been persisted, so it is
	// delivered as a stream error rather than an HTTP status.
	ErrUnknownProvider = errors.New("unsupported provider")
)
