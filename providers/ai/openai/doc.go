// Package openai implements the [ai.StreamProvider] interface for
// OpenAI-compatible chat completions APIs.
//
// It converts the generic [ai.ChatRequest] history into the flat
// {role, content} message list expected by /v1/chat/completions, sends the
// request with stream=true, and yields each chunk's content delta as an
// [ai.StreamEvent]. Concatenating the deltas in order reconstructs the full
// reply.
//
// The main entry point is [New]. Use [OpenAIProvider.WithAPIKey] and
// [OpenAIProvider.WithBaseURL] to configure credentials and endpoint; both
// are required knobs because the provider reads nothing from the ambient
// environment.
package openai
