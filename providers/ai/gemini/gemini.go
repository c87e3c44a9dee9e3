package gemini

import (
	"net/http"

	"github.com/leofalp/polychat/providers/ai"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiProvider implements the ai.StreamProvider interface for Google's
// Gemini API.
type GeminiProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// New creates a new Gemini provider instance with default values. Credentials
// are supplied per turn via WithAPIKey; there is no ambient fallback.
func New() *GeminiProvider {
	return &GeminiProvider{
		baseURL: defaultBaseURL,
		client:  &http.Client{},
	}
}

// Ensure GeminiProvider implements ai.StreamProvider at compile time.
var _ ai.StreamProvider = (*GeminiProvider)(nil)

// WithAPIKey sets the API key for the provider.
func (p *GeminiProvider) WithAPIKey(apiKey string) ai.StreamProvider {
	p.apiKey = apiKey
	return p
}

// WithBaseURL sets the base URL for the API.
func (p *GeminiProvider) WithBaseURL(baseURL string) ai.StreamProvider {
	p.baseURL = baseURL
	return p
}

// WithHttpClient sets a custom HTTP client.
func (p *GeminiProvider) WithHttpClient(httpClient *http.Client) ai.StreamProvider {
	p.client = httpClient
	return p
}
