package anthropic

import (
	"net/http"

	"github.com/leofalp/polychat/internal/utils"
	"github.com/leofalp/polychat/providers/ai"
)

const (
	defaultBaseURL   = "https://api.anthropic.com/v1"
	messagesEndpoint = "/messages"

	// anthropicVersion pins the Messages API wire format.
	anthropicVersion = "2023-06-01"

	// defaultMaxTokens is sent on every request because Anthropic requires
	// max_tokens to be present.
	defaultMaxTokens = 4096
)

// AnthropicProvider implements the ai.StreamProvider interface for Anthropic's
// Messages API.
type AnthropicProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// New creates a new Anthropic provider instance with default values.
// Credentials are supplied per turn via WithAPIKey; there is no ambient
// fallback.
func New() *AnthropicProvider {
	return &AnthropicProvider{
		baseURL: defaultBaseURL,
		client:  &http.Client{},
	}
}

// Ensure AnthropicProvider implements ai.StreamProvider at compile time.
var _ ai.StreamProvider = (*AnthropicProvider)(nil)

// WithAPIKey sets the API key for the provider.
func (p *AnthropicProvider) WithAPIKey(apiKey string) ai.StreamProvider {
	p.apiKey = apiKey
	return p
}

// WithBaseURL sets the base URL for the API.
func (p *AnthropicProvider) WithBaseURL(baseURL string) ai.StreamProvider {
	p.baseURL = baseURL
	return p
}

// WithHttpClient sets a custom HTTP client.
func (p *AnthropicProvider) WithHttpClient(httpClient *http.Client) ai.StreamProvider {
	p.client = httpClient
	return p
}

// buildHeaders returns the Anthropic-specific request headers. Anthropic
// authenticates via x-api-key rather than a bearer token, and
// anthropic-version pins the wire format.
func (p *AnthropicProvider) buildHeaders() []utils.HeaderOption {
	return []utils.HeaderOption{
		{Key: "x-api-key", Value: p.apiKey},
		{Key: "anthropic-version", Value: anthropicVersion},
	}
}
