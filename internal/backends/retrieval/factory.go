package retrieval

import (
	"fmt"

	"github.com/redis/go-redis/v9"

	"content-creator/internal/common/config"
	"content-creator/internal/common/database"
	"content-creator/internal/common/logger"
)

// New selects the retriever named by cfg.Retrieval.Provider and wraps it in
// the Redis cache when enabled. es and rdb may be nil when their provider is
// not selected.
func New(cfg *config.Config, es *database.ElasticsearchClient, rdb redis.Cmdable, log logger.Logger) (Retriever, error) {
	var r Retriever
	switch cfg.Retrieval.Provider {
	case config.ProviderLocal:
		r = NewLocal(nil)
	case config.ProviderElasticsearch:
		if es == nil {
			return nil, fmt.Errorf("elasticsearch retrieval selected but no client configured")
		}
		r = NewElasticsearch(es.Client, cfg.Retrieval.Index)
	default:
		return nil, fmt.Errorf("unknown retrieval provider %q", cfg.Retrieval.Provider)
	}

	if cfg.Retrieval.Cache.Enabled {
		if rdb == nil {
			return nil, fmt.Errorf("retrieval cache enabled but no redis client configured")
		}
		r = NewCached(r, rdb, config.GetDuration(cfg.Retrieval.Cache.TTL), log)
	}
	return r, nil
}
