// internal/workers/content/generate-content/handler_test.go
package generatecontent

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"content-creator/internal/backends/generation"
	"content-creator/internal/backends/retrieval"
	apperrors "content-creator/internal/common/errors"
	"content-creator/internal/common/logger"
	"content-creator/internal/content/pipeline"
)

type failingBackend struct{}

func (failingBackend) Name() string { return "broken" }

func (failingBackend) Generate(ctx context.Context, prompt string) (string, error) {
	return "", errors.New("Bedrock API error: ThrottlingException")
}

func createTestConfig() *Config {
	return &Config{Timeout: 5 * time.Second}
}

func newTestHandler(t *testing.T, backend generation.Backend) *Handler {
	p := pipeline.New(retrieval.NewLocal(nil), backend)
	return NewHandler(createTestConfig(), p, logger.NewTestLogger(t))
}

func TestExecute_Success(t *testing.T) {
	h := newTestHandler(t, generation.NewLocal(rand.New(rand.NewSource(3))))

	out, err := h.Execute(context.Background(), Input{
		"title":       "Acme",
		"description": "A widget for teams",
		"tone":        "casual",
	})

	require.NoError(t, err)
	assert.False(t, out.Fallback)
	assert.Equal(t, "Try It Now", out.CTA)
	assert.NotEmpty(t, out.HTMLContent)

	raw, err := json.Marshal(out)
	require.NoError(t, err)
	var vars map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &vars))
	for _, key := range []string{"hero_section", "seo_meta", "html_content", "markdown_content", "fallback"} {
		assert.Contains(t, vars, key)
	}
}

func TestExecute_ValidationIsBusinessError(t *testing.T) {
	h := newTestHandler(t, generation.NewLocal(nil))

	_, err := h.Execute(context.Background(), Input{"title": "Acme"})

	require.Error(t, err)
	stdErr := apperrors.AsStandardError(err)
	assert.Equal(t, apperrors.ErrCodeValidationFailed, stdErr.Code)
	assert.True(t, apperrors.IsBusinessError(stdErr.Code))
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ConvertToBPMNError(stdErr).Code)
}

func TestExecute_BackendFailureIsNotRetried(t *testing.T) {
	h := newTestHandler(t, failingBackend{})

	_, err := h.Execute(context.Background(), Input{"title": "Acme", "description": "A widget"})

	require.Error(t, err)
	stdErr := apperrors.AsStandardError(err)
	assert.Equal(t, apperrors.ErrCodeGenerationFailed, stdErr.Code)
	assert.False(t, apperrors.IsBusinessError(stdErr.Code))
	assert.Equal(t, 0, apperrors.ConvertToBPMNError(stdErr).Retries)
	assert.Equal(t, "Bedrock API error: ThrottlingException", stdErr.Details)
}

func TestLoadConfig(t *testing.T) {
	assert.Equal(t, 120*time.Second, LoadConfig().Timeout)
}
