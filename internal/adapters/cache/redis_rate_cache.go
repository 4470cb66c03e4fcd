package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRateCache stores exchange rates in Redis so repeated conversions for
// the same currency pair skip the remote rate service. Entries expire so a
// stale rate cannot survive a rate change for long.
type RedisRateCache struct {
	Client *redis.Client
	TTL    time.Duration
}

const defaultRateTTL = 6 * time.Hour

func NewRedisRateCache(client *redis.Client, ttl time.Duration) *RedisRateCache {
	if ttl <= 0 {
		ttl = defaultRateTTL
	}
	return &RedisRateCache{Client: client, TTL: ttl}
}

func rateKey(source, target string) string {
	return "rate:" + source + ":" + target
}

// Get returns the cached rate and whether it was present.
func (c *RedisRateCache) Get(ctx context.Context, source, target string) (float64, bool, error) {
	if c.Client == nil {
		return 0, false, errors.New("rate cache: redis client is nil")
	}

	val, err := c.Client.Get(ctx, rateKey(source, target)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("get rate cache %s->%s: %w", source, target, err)
	}

	rate, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, false, fmt.Errorf("get rate cache %s->%s: parse %q: %w", source, target, val, err)
	}

	return rate, true, nil
}

// Put stores a rate for the currency pair.
func (c *RedisRateCache) Put(ctx context.Context, source, target string, rate float64) error {
	if c.Client == nil {
		return errors.New("rate cache: redis client is nil")
	}

	val := strconv.FormatFloat(rate, 'f', -1, 64)
	if err := c.Client.Set(ctx, rateKey(source, target), val, c.TTL).Err(); err != nil {
		return fmt.Errorf("put rate cache %s->%s: %w", source, target, err)
	}

	return nil
}
