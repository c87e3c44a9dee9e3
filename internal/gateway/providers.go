package gateway

import (
	"fmt"

	"github.com/leofalp/polychat/providers/ai"
	"github.com/leofalp/polychat/providers/ai/anthropic"
	"github.com/leofalp/polychat/providers/ai/gemini"
	"github.com/leofalp/polychat/providers/ai/openai"
)

// Provider identifiers carried in chat turn requests. The set is closed:
// adding a vendor means adding one adapter package and one case below.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// ProviderFactory resolves a provider identifier and the turn's explicit API
// key (which may be empty) into a ready-to-call adapter. Implementations
// return ErrUnknownProvider for an unrecognized identifier and an error
// wrapping ai.ErrMissingAPIKey when no usable credential is available.
type ProviderFactory func(providerID, apiKey string) (ai.StreamProvider, error)

// ProviderDefaults holds the system-default credential material for one
// provider, sourced from configuration. An explicit per-turn key always takes
// priority over these.
type ProviderDefaults struct {
	APIKey  string
	BaseURL string
}

// Defaults maps provider identifiers to their configured defaults.
type Defaults map[string]ProviderDefaults

// DefaultFactory returns the ProviderFactory wiring the three real adapter
// variants. Credential resolution: the turn's explicit key always wins. Only
// the openai variant falls back to the configured default key when the turn
// carries none; anthropic and gemini require an explicit per-turn key and
// fail with a missing-credentials error even when a configured default
// exists. A configured base URL override is applied only when falling back
// to the configured key, matching the behavior of routing explicit keys
// straight at the vendor's own endpoint.
func DefaultFactory(defaults Defaults) ProviderFactory {
	return func(providerID, apiKey string) (ai.StreamProvider, error) {
		var construct func() ai.StreamProvider
		switch providerID {
		case ProviderOpenAI:
			construct = func() ai.StreamProvider { return openai.New() }
		case ProviderAnthropic:
			construct = func() ai.StreamProvider { return anthropic.New() }
		case ProviderGemini:
			construct = func() ai.StreamProvider { return gemini.New() }
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, providerID)
		}

		key := apiKey
		baseURL := ""
		if key == "" {
			// anthropic and gemini never fall back to a system default.
			if providerID != ProviderOpenAI {
				return nil, fmt.Errorf("%s: %w", providerID, ai.ErrMissingAPIKey)
			}
			fallback := defaults[providerID]
			key = fallback.APIKey
			baseURL = fallback.BaseURL
		}
		if key == "" {
			return nil, fmt.Errorf("%s: %w", providerID, ai.ErrMissingAPIKey)
		}

		provider := construct().WithAPIKey(key)
		if baseURL != "" {
			provider = provider.WithBaseURL(baseURL)
		}
		return provider, nil
	}
}
