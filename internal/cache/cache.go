// Package cache memoises prediction responses per model version and
// dataset snapshot.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/unitematch/unitematch-api/internal/names"
)

const keyPrefix = "unitematch"

var lookups = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "unitematch_prediction_cache_lookups_total",
	Help: "Prediction cache lookups by result",
}, []string{"result"})

// ErrMiss is returned by KV.Get when the key is absent.
var ErrMiss = errors.New("cache miss")

// KV is the subset of Redis the cache needs.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
}

// RedisKV implements KV with go-redis.
type RedisKV struct {
	client *redis.Client
}

func NewRedisKV(client *redis.Client) *RedisKV {
	return &RedisKV{client: client}
}

func (r *RedisKV) Get(ctx context.Context, key string) (string, error) {
	v, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrMiss
	}
	return v, err
}

func (r *RedisKV) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

// PredictionCache stores JSON-encodable prediction results.
type PredictionCache interface {
	// Get decodes a cached value into dst and reports whether it was found.
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any) error
}

// Key builds a cache key. The roster keeps its order since responses list
// entities in roster order.
func Key(kind, modelVersion, fingerprint string, roster []string) string {
	canon := make([]string, len(roster))
	for i, n := range roster {
		canon[i] = names.Normalize(n)
	}
	return strings.Join([]string{keyPrefix, kind, modelVersion, fingerprint, strings.Join(canon, ",")}, ":")
}

// JSONCache stores values as JSON strings in a KV with a fixed TTL.
type JSONCache struct {
	kv     KV
	ttl    time.Duration
	logger *zap.SugaredLogger
}

func NewJSONCache(kv KV, ttl time.Duration, logger *zap.Logger) *JSONCache {
	return &JSONCache{kv: kv, ttl: ttl, logger: logger.Sugar()}
}

// NewRedisCache is a JSONCache backed by Redis.
func NewRedisCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *JSONCache {
	return NewJSONCache(NewRedisKV(client), ttl, logger)
}

func (c *JSONCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	raw, err := c.kv.Get(ctx, key)
	if errors.Is(err, ErrMiss) {
		lookups.WithLabelValues("miss").Inc()
		return false, nil
	}
	if err != nil {
		lookups.WithLabelValues("error").Inc()
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		lookups.WithLabelValues("error").Inc()
		c.logger.Warnw("Discarding undecodable cache entry", "key", key, "error", err)
		return false, nil
	}
	lookups.WithLabelValues("hit").Inc()
	return true, nil
}

func (c *JSONCache) Set(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.kv.Set(ctx, key, string(raw), c.ttl)
}

// NoopCache never stores anything.
type NoopCache struct{}

func (NoopCache) Get(context.Context, string, any) (bool, error) { return false, nil }
func (NoopCache) Set(context.Context, string, any) error         { return nil }
