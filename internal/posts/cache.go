package posts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	allPostsKey  = "posts:all"
	postTTL      = 5 * time.Minute
	postsListTTL = 2 * time.Minute

	// genTTL outlives any read that could still be in flight
	genTTL = 24 * time.Hour
)

func postKey(id int64) string {
	return fmt.Sprintf("post:%d", id)
}

func genKey(key string) string {
	return key + ":gen"
}

// Cache stores serialized posts. A miss is (nil, false, nil).
//
// Every key carries an invalidation generation. Readers take the generation
// before loading from the database and store with SetIfVersion, so a copy
// loaded before an Invalidate is never written back after it.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Version(ctx context.Context, key string) (int64, error)
	// SetIfVersion reports false when key was invalidated since version was read
	SetIfVersion(ctx context.Context, key string, version int64, value []byte, ttl time.Duration) (bool, error)
	Invalidate(ctx context.Context, keys ...string) error
}

type redisCache struct {
	client *redis.Client
}

// NewRedisCache wraps a Redis client
func NewRedisCache(client *redis.Client) Cache {
	return &redisCache{client: client}
}

// setIfVersion compares the generation and writes in one round trip so an
// Invalidate cannot land between the two.
var setIfVersion = redis.NewScript(`
local gen = redis.call('GET', KEYS[2])
if (gen or '0') ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`)

func (c *redisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (c *redisCache) Version(ctx context.Context, key string) (int64, error) {
	v, err := c.client.Get(ctx, genKey(key)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

func (c *redisCache) SetIfVersion(ctx context.Context, key string, version int64, value []byte, ttl time.Duration) (bool, error) {
	stored, err := setIfVersion.Run(ctx, c.client,
		[]string{key, genKey(key)},
		strconv.FormatInt(version, 10), value, ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, err
	}
	return stored == 1, nil
}

func (c *redisCache) Invalidate(ctx context.Context, keys ...string) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, key := range keys {
			pipe.Incr(ctx, genKey(key))
			pipe.Expire(ctx, genKey(key), genTTL)
		}
		pipe.Del(ctx, keys...)
		return nil
	})
	return err
}

// nopCache never hits. Used when Redis is unavailable.
type nopCache struct{}

func (nopCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (nopCache) Version(context.Context, string) (int64, error)    { return 0, nil }
func (nopCache) SetIfVersion(context.Context, string, int64, []byte, time.Duration) (bool, error) {
	return false, nil
}
func (nopCache) Invalidate(context.Context, ...string) error { return nil }

func logCacheError(op, key string, err error) {
	slog.Warn("Post cache error", "op", op, "key", key, "error", err)
}
