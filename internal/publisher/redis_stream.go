package publisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fortuna/victoria/internal/service"
	"github.com/fortuna/victoria/internal/store"
)

// Stream names consumed by downstream projections.
const (
	matchStream      = "league.matches.resolved"
	nationCallStream = "league.nation_calls"
	seasonStream     = "league.seasons.transitioned"
)

// RedisStreamPublisher publishes league events to Redis streams
type RedisStreamPublisher struct {
	client *redis.Client
}

// NewRedisStreamPublisher creates a new Redis stream publisher from existing client
func NewRedisStreamPublisher(client *redis.Client) *RedisStreamPublisher {
	return &RedisStreamPublisher{
		client: client,
	}
}

// PublishMatchResolved publishes a resolved match to the stream
func (rsp *RedisStreamPublisher) PublishMatchResolved(ctx context.Context, summary *service.MatchSummary) error {
	return rsp.publish(ctx, matchStream, summary)
}

// PublishNationCall publishes a call-up event to the stream
func (rsp *RedisStreamPublisher) PublishNationCall(ctx context.Context, call *store.NationCall) error {
	return rsp.publish(ctx, nationCallStream, call)
}

// PublishSeasonTransitioned publishes a season rollover to the stream
func (rsp *RedisStreamPublisher) PublishSeasonTransitioned(ctx context.Context, result *service.TransitionResult) error {
	return rsp.publish(ctx, seasonStream, result)
}

func (rsp *RedisStreamPublisher) publish(ctx context.Context, stream string, event interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return rsp.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{
			"data":      string(data),
			"timestamp": time.Now().Unix(),
		},
	}).Err()
}
