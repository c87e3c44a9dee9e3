// Package ai defines the shared, provider-agnostic types and interfaces used
// across all LLM provider implementations (OpenAI, Anthropic, Gemini). Each
// provider's conversion layer is responsible for mapping these types to its
// own wire format, keeping the rest of the codebase decoupled from
// provider-specific details.
//
// The central interface is [StreamProvider]. Request data flows through
// [ChatRequest]; incremental deltas flow back to the caller as [StreamEvent]
// values carried by a [ChatStream].
package ai
