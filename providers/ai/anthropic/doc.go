// Package anthropic implements the [ai.StreamProvider] interface for
// Anthropic's Messages API.
//
// History is encoded as messages whose content is an array of text content
// blocks. During streaming, only content_block_delta events carrying a
// text_delta contribute content; block start/stop and message lifecycle
// events are ignored for content purposes, and vendor error events surface
// as mid-stream failures.
//
// The primary entry point is [New]. Use [AnthropicProvider.WithAPIKey],
// [AnthropicProvider.WithBaseURL], or [AnthropicProvider.WithHttpClient] to
// configure the provider; the API key is mandatory and checked before any
// network call.
package anthropic
