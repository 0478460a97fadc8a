package retrieval

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"content-creator/internal/common/logger"
)

type countingRetriever struct {
	calls int
	out   []string
	err   error
}

func (c *countingRetriever) Name() string { return "counting" }

func (c *countingRetriever) Search(ctx context.Context, query string, topK int) ([]string, error) {
	c.calls++
	return c.out, c.err
}

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestCached_MissThenHit(t *testing.T) {
	mr, client := setupRedis(t)
	inner := &countingRetriever{out: []string{"a", "b"}}
	cached := NewCached(inner, client, time.Minute, logger.NewTestLogger(t))

	got, err := cached.Search(context.Background(), "query", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)

	got, err = cached.Search(context.Background(), "query", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)
	assert.Equal(t, 1, inner.calls)

	key := cacheKey("counting", "query", 3)
	assert.True(t, mr.Exists(key))
	assert.Equal(t, time.Minute, mr.TTL(key))

	mr.FastForward(2 * time.Minute)
	_, err = cached.Search(context.Background(), "query", 3)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestCached_InnerErrorIsNotCached(t *testing.T) {
	mr, client := setupRedis(t)
	inner := &countingRetriever{err: errors.New("search down")}
	cached := NewCached(inner, client, time.Minute, logger.NewTestLogger(t))

	_, err := cached.Search(context.Background(), "query", 3)
	assert.EqualError(t, err, "search down")
	assert.False(t, mr.Exists(cacheKey("counting", "query", 3)))
}

func TestCached_RedisFailureFallsThrough(t *testing.T) {
	db, mock := redismock.NewClientMock()
	key := cacheKey("counting", "query", 3)
	mock.ExpectGet(key).SetErr(errors.New("connection reset"))
	mock.ExpectSet(key, []byte(`["a"]`), time.Minute).SetErr(errors.New("connection reset"))

	inner := &countingRetriever{out: []string{"a"}}
	got, err := NewCached(inner, db, time.Minute, logger.NewTestLogger(t)).Search(context.Background(), "query", 3)

	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, got)
	assert.Equal(t, 1, inner.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCached_CorruptEntryFallsThrough(t *testing.T) {
	mr, client := setupRedis(t)
	key := cacheKey("counting", "query", 3)
	require.NoError(t, mr.Set(key, "not-json"))

	inner := &countingRetriever{out: []string{"fresh"}}
	got, err := NewCached(inner, client, time.Minute, logger.NewTestLogger(t)).Search(context.Background(), "query", 3)

	require.NoError(t, err)
	assert.Equal(t, []string{"fresh"}, got)
	assert.Equal(t, 1, inner.calls)
}

func TestCacheKey_DistinguishesTopK(t *testing.T) {
	assert.NotEqual(t, cacheKey("local", "q", 3), cacheKey("local", "q", 5))
	assert.Equal(t, "local+cache", NewCached(NewLocal(nil), nil, time.Second, logger.NewNoOpLogger()).Name())
}
