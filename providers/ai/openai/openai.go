package openai

import (
	"net/http"

	"github.com/leofalp/polychat/providers/ai"
)

const (
	defaultBaseURL          = "https://api.openai.com/v1"
	chatCompletionsEndpoint = "/chat/completions"
)

// OpenAIProvider implements the ai.StreamProvider interface for the OpenAI
// chat completions API and compatible endpoints.
type OpenAIProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// New creates a new OpenAI provider instance with default values. Credentials
// and endpoint overrides are supplied per turn via the builder methods rather
// than read from ambient environment state.
func New() *OpenAIProvider {
	return &OpenAIProvider{
		baseURL: defaultBaseURL,
		client:  &http.Client{},
	}
}

// Ensure OpenAIProvider implements ai.StreamProvider at compile time.
var _ ai.StreamProvider = (*OpenAIProvider)(nil)

// WithAPIKey sets the API key for the provider
func (p *OpenAIProvider) WithAPIKey(apiKey string) ai.StreamProvider {
	p.apiKey = apiKey
	return p
}

// WithBaseURL sets the base URL for the API
func (p *OpenAIProvider) WithBaseURL(baseURL string) ai.StreamProvider {
	p.baseURL = baseURL
	return p
}

// WithHttpClient sets a custom HTTP client
func (p *OpenAIProvider) WithHttpClient(httpClient *http.Client) ai.StreamProvider {
	p.client = httpClient
	return p
}
