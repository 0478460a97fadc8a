package retrieval

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"content-creator/internal/common/logger"
	"content-creator/internal/common/metrics"
)

// Cached stores search results in Redis. Cache failures are logged and the
// inner retriever is used instead; they never fail a search.
type Cached struct {
	inner  Retriever
	client redis.Cmdable
	ttl    time.Duration
	logger logger.Logger
}

func NewCached(inner Retriever, client redis.Cmdable, ttl time.Duration, log logger.Logger) *Cached {
	return &Cached{
		inner:  inner,
		client: client,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "retrieval-cache"}),
	}
}

func (c *Cached) Name() string { return c.inner.Name() + "+cache" }

func (c *Cached) Search(ctx context.Context, query string, topK int) ([]string, error) {
	key := cacheKey(c.inner.Name(), query, topK)

	raw, err := c.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		var snippets []string
		if jsonErr := json.Unmarshal([]byte(raw), &snippets); jsonErr == nil {
			metrics.RetrievalCache.WithLabelValues("hit").Inc()
			return snippets, nil
		}
		metrics.RetrievalCache.WithLabelValues("error").Inc()
	case errors.Is(err, redis.Nil):
		metrics.RetrievalCache.WithLabelValues("miss").Inc()
	default:
		metrics.RetrievalCache.WithLabelValues("error").Inc()
		c.logger.Warn("cache lookup failed", map[string]interface{}{"error": err.Error()})
	}

	snippets, err := c.inner.Search(ctx, query, topK)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(snippets); err == nil {
		if err := c.client.Set(ctx, key, encoded, c.ttl).Err(); err != nil {
			c.logger.Warn("cache store failed", map[string]interface{}{"error": err.Error()})
		}
	}
	return snippets, nil
}

func cacheKey(backend, query string, topK int) string {
	sum := sha256.Sum256([]byte(query))
	return fmt.Sprintf("retrieval:%s:%d:%s", backend, topK, hex.EncodeToString(sum[:]))
}
