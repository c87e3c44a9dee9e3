package gemini

import "github.com/leofalp/polychat/providers/ai"

/*
	GEMINI GENERATE CONTENT API - WIRE TYPES

	Requests encode history as contents with role "user" or "model" and text
	parts. Streaming responses (streamGenerateContent?alt=sse) deliver one
	generateContentResponse per SSE event; the content fragment is the first
	candidate's first part's text.
*/

// generateContentRequest is the request body for generateContent and
// streamGenerateContent.
type generateContentRequest struct {
	Contents []content `json:"contents"`
}

// content represents a content block with role and parts.
type content struct {
	Role  string `json:"role,omitempty"` // "user" or "model"
	Parts []part `json:"parts"`
}

// part represents a single text content part.
type part struct {
	Text string `json:"text,omitempty"`
}

// buildContents converts the generic history into Gemini's content encoding.
// Role mapping: user -> "user", assistant -> "model".
func buildContents(messages []ai.Message) []content {
	contents := make([]content, 0, len(messages))
	for _, msg := range messages {
		role := "user"
		if msg.Role == ai.RoleAssistant {
			role = "model"
		}
		contents = append(contents, content{
			Role:  role,
			Parts: []part{{Text: msg.Content}},
		})
	}
	return contents
}

// generateContentResponse is one streaming chunk. Some chunks carry no
// candidates and only a top-level text field; error chunks carry an error
// object instead.
type generateContentResponse struct {
	Candidates []candidate `json:"candidates,omitempty"`
	Text       string      `json:"text,omitempty"` // Fallback fragment when candidates are absent
	Error      *apiError   `json:"error,omitempty"`
}

// candidate represents a response candidate.
type candidate struct {
	Content      *content `json:"content,omitempty"`
	FinishReason string   `json:"finishReason,omitempty"`
	Index        int      `json:"index,omitempty"`
}

// apiError is the error payload Gemini embeds in a chunk when generation
// fails after the stream has started.
type apiError struct {
	Code    int    `json:"code,omitempty"`
	Message string `json:"message"`
	Status  string `json:"status,omitempty"`
}
