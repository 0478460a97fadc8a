package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	awsclient "content-creator/internal/common/aws"
)

const anthropicVersion = "bedrock-2023-05-31"

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	AnthropicVersion string             `json:"anthropic_version"`
	MaxTokens        int                `json:"max_tokens"`
	Messages         []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// Bedrock invokes an Anthropic model hosted on AWS Bedrock.
type Bedrock struct {
	client    awsclient.BedrockInvoker
	modelID   string
	maxTokens int
}

func NewBedrock(client awsclient.BedrockInvoker, modelID string, maxTokens int) *Bedrock {
	return &Bedrock{client: client, modelID: modelID, maxTokens: maxTokens}
}

func (b *Bedrock) Name() string { return "bedrock" }

func (b *Bedrock) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(anthropicRequest{
		AnthropicVersion: anthropicVersion,
		MaxTokens:        b.maxTokens,
		Messages:         []anthropicMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", err
	}

	out, err := b.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(b.modelID),
		Body:        body,
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("Bedrock API error: %w", err)
	}

	var resp anthropicResponse
	if err := json.Unmarshal(out.Body, &resp); err != nil {
		return "", fmt.Errorf("Bedrock API error: invalid response body: %w", err)
	}
	if len(resp.Content) == 0 {
		return "", errors.New("Bedrock API error: response has no content")
	}
	return resp.Content[0].Text, nil
}
