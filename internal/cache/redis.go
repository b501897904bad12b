package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fortuna/victoria/internal/engine"
)

// How long a cached standings table stays valid without invalidation.
const standingsTTL = 5 * time.Minute

// RedisCache handles caching and fast state storage
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a new Redis cache connection
func NewRedisCache(redisURL string) (*RedisCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisCache{
		client: client,
	}, nil
}

// Close closes the Redis connection
func (rc *RedisCache) Close() error {
	return rc.client.Close()
}

// Client returns the underlying Redis client
func (rc *RedisCache) Client() *redis.Client {
	return rc.client
}

// HealthCheck pings Redis to verify connection
func (rc *RedisCache) HealthCheck(ctx context.Context) error {
	return rc.client.Ping(ctx).Err()
}

func standingsKey(seasonCode string, division int) string {
	return fmt.Sprintf("standings:%s:%d", seasonCode, division)
}

// GetStandings returns a cached standings table. A miss or a decode
// problem both read as a miss; the caller recomputes.
func (rc *RedisCache) GetStandings(ctx context.Context, seasonCode string, division int) ([]engine.StandingsRow, bool) {
	raw, err := rc.client.Get(ctx, standingsKey(seasonCode, division)).Result()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		log.Printf("standings cache read: %v", err)
		return nil, false
	}

	var rows []engine.StandingsRow
	if err := json.Unmarshal([]byte(raw), &rows); err != nil {
		log.Printf("standings cache decode: %v", err)
		return nil, false
	}
	return rows, true
}

// SetStandings caches a standings table. Cache write failures are
// logged and swallowed; the source of truth is Postgres.
func (rc *RedisCache) SetStandings(ctx context.Context, seasonCode string, division int, rows []engine.StandingsRow) {
	data, err := json.Marshal(rows)
	if err != nil {
		log.Printf("standings cache encode: %v", err)
		return
	}
	if err := rc.client.Set(ctx, standingsKey(seasonCode, division), data, standingsTTL).Err(); err != nil {
		log.Printf("standings cache write: %v", err)
	}
}

// InvalidateSeason drops every cached table of a season.
func (rc *RedisCache) InvalidateSeason(ctx context.Context, seasonCode string) {
	keys := []string{
		standingsKey(seasonCode, 1),
		standingsKey(seasonCode, 2),
	}
	if err := rc.client.Del(ctx, keys...).Err(); err != nil {
		log.Printf("standings cache invalidate: %v", err)
	}
}
