// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configs/config.yaml, merges config.<APP_ENVIRONMENT>.yaml on top,
// then applies environment overrides and defaults.
func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}
	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // optional

	return build(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return build(v)
}

func build(v *viper.Viper) (*Config, error) {
	// GENERATION_PROVIDER, RETRIEVAL_TOP_K, ...
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	overrideEmptyConfig(&cfg)
	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// setDefaults registers keys so AutomaticEnv can see them during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "content-creator")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.environment", "development")
	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.read_timeout", 30000)
	v.SetDefault("server.write_timeout", 120000)
	v.SetDefault("server.shutdown_timeout", 10000)
	v.SetDefault("server.gin_mode", "release")
	v.SetDefault("generation.provider", "")
	v.SetDefault("generation.use_local_mocks", true)
	v.SetDefault("generation.timeout", 120000)
	v.SetDefault("generation.max_tokens", 4000)
	v.SetDefault("generation.bedrock.model_id", "anthropic.claude-3-5-sonnet-20241022-v2:0")
	v.SetDefault("generation.openai.model", "gpt-4o-mini")
	v.SetDefault("generation.openai.api_key", "")
	v.SetDefault("generation.openai.base_url", "")
	v.SetDefault("generation.gemini.model", "gemini-2.0-flash")
	v.SetDefault("generation.gemini.api_key", "")
	v.SetDefault("retrieval.provider", "")
	v.SetDefault("retrieval.top_k", 3)
	v.SetDefault("retrieval.index", "content-index")
	v.SetDefault("retrieval.cache.enabled", false)
	v.SetDefault("retrieval.cache.ttl", 300000)
	v.SetDefault("render.escape_html", false)
	v.SetDefault("history.enabled", false)
	v.SetDefault("aws.region", "us-east-1")
	v.SetDefault("aws.sns.enabled", false)
	v.SetDefault("aws.sns.topic_arn", "")
	v.SetDefault("camunda.enabled", false)
	v.SetDefault("camunda.broker_address", "")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// loadEnvFile loads .env from the working directory or any parent up to the
// module root.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			// unset variables expand to "" so env fallbacks still apply
			if expanded := os.ExpandEnv(strVal); expanded != strVal {
				v.Set(key, expanded)
			}
		}
	}
}

// overrideEmptyConfig applies the flat environment variables the service was
// historically deployed with. They win over YAML when set.
func overrideEmptyConfig(cfg *Config) {
	if val := os.Getenv("USE_LOCAL_MOCKS"); val != "" {
		cfg.Generation.UseLocal = strings.EqualFold(val, "true")
	}
	if val := os.Getenv("AWS_REGION"); val != "" {
		cfg.AWS.Region = val
	}
	if val := os.Getenv("BEDROCK_MODEL_ID"); val != "" {
		cfg.Generation.Bedrock.ModelID = val
	}
	if val := os.Getenv("VECTOR_DB_TYPE"); val != "" {
		switch strings.ToLower(val) {
		case "opensearch", ProviderElasticsearch:
			cfg.Retrieval.Provider = ProviderElasticsearch
		default:
			cfg.Retrieval.Provider = strings.ToLower(val)
		}
	}
	if val := os.Getenv("OPENSEARCH_ENDPOINT"); val != "" {
		cfg.Database.Elasticsearch.URL = val
	}
	if val := os.Getenv("OPENSEARCH_INDEX"); val != "" {
		cfg.Retrieval.Index = val
	}

	if cfg.Generation.OpenAI.APIKey == "" {
		cfg.Generation.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.Generation.Gemini.APIKey == "" {
		cfg.Generation.Gemini.APIKey = os.Getenv("GEMINI_API_KEY")
	}

	if val := os.Getenv("PORT"); val != "" {
		if _, err := strconv.Atoi(val); err == nil {
			cfg.Server.Address = ":" + val
		}
	}

	if cfg.Database.Postgres.User == "" {
		cfg.Database.Postgres.User = os.Getenv("DB_USER")
	}
	if cfg.Database.Postgres.Password == "" {
		cfg.Database.Postgres.Password = os.Getenv("DB_PASSWORD")
	}
}

// applyDefaults resolves provider selection and fills zero values.
func applyDefaults(cfg *Config) {
	if cfg.Generation.Provider == "" {
		if cfg.Generation.UseLocal {
			cfg.Generation.Provider = ProviderLocal
		} else {
			cfg.Generation.Provider = ProviderBedrock
		}
	}
	if cfg.Retrieval.Provider == "" {
		if cfg.Generation.UseLocal {
			cfg.Retrieval.Provider = ProviderLocal
		} else {
			cfg.Retrieval.Provider = ProviderElasticsearch
		}
	}
	cfg.Generation.Provider = strings.ToLower(cfg.Generation.Provider)
	cfg.Retrieval.Provider = strings.ToLower(cfg.Retrieval.Provider)

	if cfg.Retrieval.TopK <= 0 {
		cfg.Retrieval.TopK = 3
	}
	if cfg.Generation.MaxTokens <= 0 {
		cfg.Generation.MaxTokens = 4000
	}

	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 10
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 30000
	}

	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 25
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}
	if cfg.Database.Elasticsearch.URL == "" && len(cfg.Database.Elasticsearch.Addresses) > 0 {
		cfg.Database.Elasticsearch.URL = cfg.Database.Elasticsearch.Addresses[0]
	}

	for key, worker := range cfg.Workers {
		if worker.MaxJobsActive == 0 {
			worker.MaxJobsActive = 5
		}
		if worker.Timeout == 0 {
			worker.Timeout = 120000
		}
		cfg.Workers[key] = worker
	}
}

// validateConfig checks only what the selected providers and enabled
// features need.
func validateConfig(cfg *Config) error {
	switch cfg.Generation.Provider {
	case ProviderLocal:
	case ProviderBedrock:
		if cfg.Generation.Bedrock.ModelID == "" {
			return fmt.Errorf("generation.bedrock.model_id is required")
		}
		if cfg.AWS.Region == "" {
			return fmt.Errorf("aws.region is required")
		}
	case ProviderOpenAI:
		if cfg.Generation.OpenAI.APIKey == "" {
			return fmt.Errorf("generation.openai.api_key is required")
		}
	case ProviderGemini:
		if cfg.Generation.Gemini.APIKey == "" {
			return fmt.Errorf("generation.gemini.api_key is required")
		}
	default:
		return fmt.Errorf("unknown generation.provider %q", cfg.Generation.Provider)
	}

	switch cfg.Retrieval.Provider {
	case ProviderLocal:
	case ProviderElasticsearch:
		if len(cfg.Database.Elasticsearch.GetAddresses()) == 0 {
			return fmt.Errorf("database.elasticsearch.addresses or url is required")
		}
		if cfg.Retrieval.Index == "" {
			return fmt.Errorf("retrieval.index is required")
		}
	default:
		return fmt.Errorf("unknown retrieval.provider %q", cfg.Retrieval.Provider)
	}

	if cfg.Retrieval.Cache.Enabled && cfg.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required when retrieval.cache.enabled")
	}

	if cfg.History.Enabled {
		if cfg.Database.Postgres.Host == "" {
			return fmt.Errorf("database.postgres.host is required")
		}
		if cfg.Database.Postgres.Database == "" {
			return fmt.Errorf("database.postgres.database is required")
		}
		if cfg.Database.Postgres.User == "" {
			return fmt.Errorf("database.postgres.user is required")
		}
	}

	if cfg.AWS.SNS.Enabled && cfg.AWS.SNS.TopicARN == "" {
		return fmt.Errorf("aws.sns.topic_arn is required when aws.sns.enabled")
	}

	if cfg.Camunda.Enabled && cfg.Camunda.BrokerAddress == "" {
		return fmt.Errorf("camunda.broker_address is required")
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetWorkerConfig retrieves worker-specific configuration with fallback to defaults
func GetWorkerConfig(cfg *Config, workerName string) WorkerConfig {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker
	}
	return WorkerConfig{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       120000,
		MaxRetries:    0,
	}
}

// IsWorkerEnabled checks if a specific worker is enabled
func IsWorkerEnabled(cfg *Config, workerName string) bool {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker.Enabled
	}
	return true
}
