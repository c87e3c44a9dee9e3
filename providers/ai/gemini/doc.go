// Package gemini implements the [ai.StreamProvider] interface for Google's
// Gemini generative language API.
//
// History is encoded as contents with role "user" or "model" (the assistant
// role is renamed on the wire) and text parts. Streaming uses the
// streamGenerateContent endpoint with alt=sse; each chunk's fragment is the
// first candidate's first part's text, falling back to the chunk's top-level
// text field when candidates are absent.
//
// The primary entry point is [New]. Use [GeminiProvider.WithAPIKey],
// [GeminiProvider.WithBaseURL], or [GeminiProvider.WithHttpClient] to
// configure the provider; the API key is mandatory and checked before any
// network call.
package gemini
