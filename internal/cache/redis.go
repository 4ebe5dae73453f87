package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/srepho/allyanonimiser-go/internal/entity"
)

// SharedCache is an optional Redis-backed result cache for server
// deployments where several instances analyze overlapping content. It is a
// read-through layer over the same composite keys the in-process cache uses;
// lookups that fail for any reason behave as misses, so enabling it never
// changes results.
type SharedCache struct {
	client *redis.Client
	config *RedisConfig
	logger *zap.Logger
	stats  *sharedStats
}

type sharedStats struct {
	hits   int64
	misses int64
}

// RedisConfig configures the shared cache connection.
type RedisConfig struct {
	RedisURL       string        `mapstructure:"redis_url"`
	KeyPrefix      string        `mapstructure:"key_prefix"`
	DefaultTTL     time.Duration `mapstructure:"default_ttl"`
	MaxConnections int           `mapstructure:"max_connections"`
	MinIdleConns   int           `mapstructure:"min_idle_conns"`
}

// SharedStats reports shared cache counters.
type SharedStats struct {
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	HitRate   float64 `json:"hit_rate"`
	TotalKeys int64   `json:"total_keys"`
}

type cachedResult struct {
	Entities []entity.Entity `json:"entities"`
	CachedAt time.Time       `json:"cached_at"`
}

// NewSharedCache connects to Redis and verifies the connection.
func NewSharedCache(config *RedisConfig, logger *zap.Logger) (*SharedCache, error) {
	opts, err := redis.ParseURL(config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opts.PoolSize = config.MaxConnections
	opts.MinIdleConns = config.MinIdleConns

	client := redis.NewClient(opts)

	sc := &SharedCache{
		client: client,
		config: config,
		logger: logger,
		stats:  &sharedStats{},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Shared result cache initialized",
		zap.String("redis_url", maskRedisURL(config.RedisURL)),
		zap.Duration("default_ttl", config.DefaultTTL))

	return sc, nil
}

// Get looks up a cached result by composite key. Any failure is a miss.
func (sc *SharedCache) Get(ctx context.Context, key string) ([]entity.Entity, bool) {
	data, err := sc.client.Get(ctx, sc.redisKey(key)).Result()
	if err == redis.Nil {
		sc.stats.misses++
		return nil, false
	} else if err != nil {
		sc.logger.Error("Shared cache lookup failed", zap.Error(err))
		sc.stats.misses++
		return nil, false
	}

	var cached cachedResult
	if err := json.Unmarshal([]byte(data), &cached); err != nil {
		sc.logger.Error("Failed to unmarshal cached result", zap.Error(err))
		sc.client.Del(ctx, sc.redisKey(key))
		sc.stats.misses++
		return nil, false
	}

	sc.stats.hits++
	return cached.Entities, true
}

// Put stores a result with the configured TTL.
func (sc *SharedCache) Put(ctx context.Context, key string, entities []entity.Entity) error {
	data, err := json.Marshal(cachedResult{Entities: entities, CachedAt: time.Now()})
	if err != nil {
		return fmt.Errorf("failed to marshal result for caching: %w", err)
	}
	if err := sc.client.Set(ctx, sc.redisKey(key), data, sc.config.DefaultTTL).Err(); err != nil {
		sc.logger.Error("Failed to cache result", zap.Error(err))
		return fmt.Errorf("failed to cache result: %w", err)
	}
	return nil
}

// Stats returns shared cache counters plus the key count in Redis.
func (sc *SharedCache) Stats(ctx context.Context) SharedStats {
	stats := SharedStats{
		Hits:   sc.stats.hits,
		Misses: sc.stats.misses,
	}
	total := stats.Hits + stats.Misses
	if total > 0 {
		stats.HitRate = float64(stats.Hits) / float64(total)
	}
	if keys, err := sc.client.DBSize(ctx).Result(); err == nil {
		stats.TotalKeys = keys
	}
	return stats
}

// Clear removes every key under this cache's prefix and returns how many
// were deleted.
func (sc *SharedCache) Clear(ctx context.Context) (int, error) {
	pattern := sc.config.KeyPrefix + ":*"

	iter := sc.client.Scan(ctx, 0, pattern, 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("failed to scan cache keys: %w", err)
	}
	if len(keys) == 0 {
		return 0, nil
	}

	batchSize := 100
	for i := 0; i < len(keys); i += batchSize {
		end := i + batchSize
		if end > len(keys) {
			end = len(keys)
		}
		if err := sc.client.Del(ctx, keys[i:end]...).Err(); err != nil {
			sc.logger.Error("Failed to delete cache keys", zap.Error(err))
			return 0, fmt.Errorf("failed to delete cache keys: %w", err)
		}
	}

	sc.logger.Info("Shared cache cleared", zap.Int("deleted_keys", len(keys)))
	return len(keys), nil
}

// Close closes the Redis connection.
func (sc *SharedCache) Close() error {
	if sc.client != nil {
		return sc.client.Close()
	}
	return nil
}

// redisKey hashes the composite key; the raw key can embed analyzed text and
// must never reach Redis verbatim.
func (sc *SharedCache) redisKey(key string) string {
	return fmt.Sprintf("%s:res:%016x", sc.config.KeyPrefix, xxhash.Sum64String(key))
}

// maskRedisURL masks sensitive information in Redis URL for logging
func maskRedisURL(url string) string {
	if strings.Contains(url, "@") {
		parts := strings.Split(url, "@")
		if len(parts) >= 2 {
			userPart := parts[0]
			if strings.Contains(userPart, ":") {
				userParts := strings.Split(userPart, ":")
				if len(userParts) >= 3 {
					userParts[len(userParts)-1] = "***"
					parts[0] = strings.Join(userParts, ":")
				}
			}
			return strings.Join(parts, "@")
		}
	}
	return url
}
