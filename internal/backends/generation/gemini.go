package generation

import (
	"context"
	"net/http"

	"google.golang.org/genai"
)

// Gemini calls the Google GenAI GenerateContent API.
type Gemini struct {
	client    *genai.Client
	model     string
	maxTokens int
}

// NewGemini builds the backend. baseURL and httpClient are optional.
func NewGemini(ctx context.Context, apiKey, baseURL, model string, maxTokens int, httpClient *http.Client) (*Gemini, error) {
	cc := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, err
	}
	return &Gemini{client: client, model: model, maxTokens: maxTokens}, nil
}

func (g *Gemini) Name() string { return "gemini" }

func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		MaxOutputTokens: int32(g.maxTokens),
	})
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}
