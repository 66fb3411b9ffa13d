// File: internal/services/ai/provider.go
package ai

import "context"

// NewProvider builds the completion backend selected by config.Provider.
func NewProvider(ctx context.Context, config *Config) (CompletionProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	switch config.Provider {
	case ProviderGemini:
		return NewGeminiProvider(ctx, config)
	default:
		return NewOpenAIProvider(config), nil
	}
}
