package retrieval

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"content-creator/internal/common/config"
	"content-creator/internal/common/logger"
)

func TestNew_Local(t *testing.T) {
	cfg := &config.Config{}
	cfg.Retrieval.Provider = config.ProviderLocal

	r, err := New(cfg, nil, nil, logger.NewNoOpLogger())
	require.NoError(t, err)
	assert.IsType(t, &Local{}, r)
}

func TestNew_WrapsCache(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &config.Config{}
	cfg.Retrieval.Provider = config.ProviderLocal
	cfg.Retrieval.Cache.Enabled = true
	cfg.Retrieval.Cache.TTL = 1000

	r, err := New(cfg, nil, redis.NewClient(&redis.Options{Addr: mr.Addr()}), logger.NewNoOpLogger())
	require.NoError(t, err)
	assert.IsType(t, &Cached{}, r)
}

func TestNew_Errors(t *testing.T) {
	cfg := &config.Config{}
	cfg.Retrieval.Provider = config.ProviderElasticsearch
	_, err := New(cfg, nil, nil, logger.NewNoOpLogger())
	assert.Error(t, err)

	cfg.Retrieval.Provider = "chroma"
	_, err = New(cfg, nil, nil, logger.NewNoOpLogger())
	assert.Error(t, err)
}
