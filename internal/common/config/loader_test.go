package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func clearLegacyEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"USE_LOCAL_MOCKS", "AWS_REGION", "BEDROCK_MODEL_ID", "VECTOR_DB_TYPE",
		"OPENSEARCH_ENDPOINT", "OPENSEARCH_INDEX", "OPENAI_API_KEY", "GEMINI_API_KEY", "PORT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadFromFile_LocalDefaults(t *testing.T) {
	clearLegacyEnv(t)
	path := writeConfig(t, "app:\n  name: content-creator\n")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.True(t, cfg.Generation.UseLocal)
	assert.Equal(t, ProviderLocal, cfg.Generation.Provider)
	assert.Equal(t, ProviderLocal, cfg.Retrieval.Provider)
	assert.Equal(t, 3, cfg.Retrieval.TopK)
	assert.Equal(t, 4000, cfg.Generation.MaxTokens)
	assert.Equal(t, "content-index", cfg.Retrieval.Index)
	assert.Equal(t, "us-east-1", cfg.AWS.Region)
	assert.Equal(t, "anthropic.claude-3-5-sonnet-20241022-v2:0", cfg.Generation.Bedrock.ModelID)
	assert.Equal(t, ":8000", cfg.Server.Address)
	assert.False(t, cfg.Render.EscapeHTML)
}

func TestLoadFromFile_CloudModeFromLegacyEnv(t *testing.T) {
	clearLegacyEnv(t)
	t.Setenv("USE_LOCAL_MOCKS", "false")
	t.Setenv("VECTOR_DB_TYPE", "opensearch")
	t.Setenv("OPENSEARCH_ENDPOINT", "http://search.internal:9200")
	t.Setenv("OPENSEARCH_INDEX", "kb")
	t.Setenv("AWS_REGION", "eu-west-1")
	t.Setenv("PORT", "9090")

	cfg, err := LoadFromFile(writeConfig(t, "logging:\n  level: debug\n"))
	require.NoError(t, err)

	assert.False(t, cfg.Generation.UseLocal)
	assert.Equal(t, ProviderBedrock, cfg.Generation.Provider)
	assert.Equal(t, ProviderElasticsearch, cfg.Retrieval.Provider)
	assert.Equal(t, []string{"http://search.internal:9200"}, cfg.Database.Elasticsearch.GetAddresses())
	assert.Equal(t, "kb", cfg.Retrieval.Index)
	assert.Equal(t, "eu-west-1", cfg.AWS.Region)
	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadFromFile_ExpandsPlaceholders(t *testing.T) {
	clearLegacyEnv(t)
	t.Setenv("TEST_OPENAI_KEY", "sk-test")

	cfg, err := LoadFromFile(writeConfig(t, `
generation:
  provider: openai
  openai:
    api_key: ${TEST_OPENAI_KEY}
`))
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, cfg.Generation.Provider)
	assert.Equal(t, "sk-test", cfg.Generation.OpenAI.APIKey)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "local is always valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "unknown generation provider",
			mutate:  func(c *Config) { c.Generation.Provider = "nope" },
			wantErr: "unknown generation.provider",
		},
		{
			name:    "openai needs a key",
			mutate:  func(c *Config) { c.Generation.Provider = ProviderOpenAI },
			wantErr: "generation.openai.api_key is required",
		},
		{
			name:    "elasticsearch needs an address",
			mutate:  func(c *Config) { c.Retrieval.Provider = ProviderElasticsearch },
			wantErr: "database.elasticsearch.addresses or url is required",
		},
		{
			name:    "cache needs redis",
			mutate:  func(c *Config) { c.Retrieval.Cache.Enabled = true },
			wantErr: "database.redis.address is required",
		},
		{
			name:    "history needs postgres",
			mutate:  func(c *Config) { c.History.Enabled = true },
			wantErr: "database.postgres.host is required",
		},
		{
			name:    "sns needs a topic",
			mutate:  func(c *Config) { c.AWS.SNS.Enabled = true },
			wantErr: "aws.sns.topic_arn is required",
		},
		{
			name:    "camunda needs a broker",
			mutate:  func(c *Config) { c.Camunda.Enabled = true },
			wantErr: "camunda.broker_address is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			cfg.Generation.Provider = ProviderLocal
			cfg.Retrieval.Provider = ProviderLocal
			cfg.Retrieval.Index = "content-index"
			tt.mutate(cfg)

			err := validateConfig(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGetWorkerConfig_Default(t *testing.T) {
	cfg := &Config{}
	w := GetWorkerConfig(cfg, "generate-content")
	assert.True(t, w.Enabled)
	assert.Equal(t, 5, w.MaxJobsActive)
	assert.True(t, IsWorkerEnabled(cfg, "generate-content"))
}

func TestPostgresDSN(t *testing.T) {
	p := PostgresConfig{Host: "db", Port: 5432, User: "u", Password: "p", Database: "content", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=content sslmode=disable", p.GetDSN())
}

func TestLoadFromFile_UnsetPlaceholderFallsBackToLegacyEnv(t *testing.T) {
	clearLegacyEnv(t)
	t.Setenv("CONTENT_TEST_UNSET", "")
	require.NoError(t, os.Unsetenv("CONTENT_TEST_UNSET"))
	t.Setenv("OPENAI_API_KEY", "sk-legacy")

	cfg, err := LoadFromFile(writeConfig(t, `
generation:
  provider: openai
  openai:
    api_key: ${CONTENT_TEST_UNSET}
database:
  elasticsearch:
    url: ${CONTENT_TEST_UNSET}
`))
	require.NoError(t, err)
	assert.Equal(t, "sk-legacy", cfg.Generation.OpenAI.APIKey)
	assert.Empty(t, cfg.Database.Elasticsearch.GetAddresses())
}
