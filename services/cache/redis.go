package cachesvc

import (
	"context"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/report"
)

const (
	keyPrefix     = "darasa:reports:"
	generationKey = keyPrefix + "generation"
)

// RedisCache keys entries under a generation counter. Invalidate bumps the counter,
// orphaning older entries until their TTL expires.
type RedisCache struct {
	client *redis.Client
}

var _ report.Cache = (*RedisCache)(nil)

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// NewRedisClient connects to the configured Redis server.
func NewRedisClient(ctx context.Context, conf core.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     conf.Address,
		Password: conf.Password,
		DB:       conf.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrapf(err, "pinging redis at %s", conf.Address)
	}
	return client, nil
}

func (c *RedisCache) Generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return gen, errors.Wrap(err, "getting cache generation")
}

func (c *RedisCache) entryKey(gen int64, key string) string {
	return keyPrefix + strconv.FormatInt(gen, 10) + ":" + key
}

func (c *RedisCache) Get(ctx context.Context, gen int64, key string) ([]byte, bool, error) {
	val, err := c.client.Get(ctx, c.entryKey(gen, key)).Bytes()
	switch {
	case err == redis.Nil:
		return nil, false, nil
	case err != nil:
		return nil, false, errors.Wrapf(err, "getting %s", key)
	}
	return val, true, nil
}

// Set writes under gen even when it is no longer current; such entries are orphaned until their TTL expires.
func (c *RedisCache) Set(ctx context.Context, gen int64, key string, value []byte, ttl time.Duration) error {
	return errors.Wrapf(c.client.Set(ctx, c.entryKey(gen, key), value, ttl).Err(), "setting %s", key)
}

func (c *RedisCache) Invalidate(ctx context.Context) error {
	return errors.Wrap(c.client.Incr(ctx, generationKey).Err(), "bumping cache generation")
}
