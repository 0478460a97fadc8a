package generation

import (
	"context"
	"fmt"
	"net/http"

	awsclient "content-creator/internal/common/aws"
	"content-creator/internal/common/config"
)

// New selects the backend named by cfg.Generation.Provider. It is called once
// at process start.
func New(ctx context.Context, cfg *config.Config, httpClient *http.Client) (Backend, error) {
	gen := cfg.Generation
	switch gen.Provider {
	case config.ProviderLocal:
		return NewLocal(nil), nil
	case config.ProviderBedrock:
		awsCfg, err := awsclient.LoadConfig(ctx, cfg.AWS.Region, httpClient)
		if err != nil {
			return nil, fmt.Errorf("failed to load aws config: %w", err)
		}
		return NewBedrock(awsclient.NewBedrockClient(awsCfg), gen.Bedrock.ModelID, gen.MaxTokens), nil
	case config.ProviderOpenAI:
		return NewOpenAI(gen.OpenAI.APIKey, gen.OpenAI.BaseURL, gen.OpenAI.Model, gen.MaxTokens, httpClient), nil
	case config.ProviderGemini:
		return NewGemini(ctx, gen.Gemini.APIKey, "", gen.Gemini.Model, gen.MaxTokens, httpClient)
	default:
		return nil, fmt.Errorf("unknown generation provider %q", gen.Provider)
	}
}
