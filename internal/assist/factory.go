package assist

import (
	"fmt"
	"strings"
)

// NewProvider creates an assist provider based on configuration. An empty
// provider name disables the assist: (nil, nil) is returned and the query
// interpreter proceeds rule-based only.
func NewProvider(config Config) (Provider, error) {
	switch strings.ToLower(config.Provider) {
	case "openai":
		return NewOpenAIProvider(config)

	case "anthropic", "claude":
		return NewAnthropicProvider(config)

	case "ollama":
		return NewOllamaProvider(config)

	case "":
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown assist provider: %s (supported: openai, anthropic, ollama)", config.Provider)
	}
}
