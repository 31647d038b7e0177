package notifier

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
)

const redisChannelPrefix = "restaurant:events:"

type redisPublisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisPublisher sends events to redis pub/sub, once on the per-event channel
// and once on the catch-all channel.
type RedisPublisher struct {
	client redisPublisher
}

func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

func RedisChannel(eventName string) string {
	return redisChannelPrefix + eventName
}

func (p *RedisPublisher) Publish(ctx context.Context, event Event) error {
	eventJSON, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "failed to marshal event")
	}

	if err := p.client.Publish(ctx, RedisChannel(event.Name), eventJSON).Err(); err != nil {
		return errors.Wrap(err, fmt.Sprintf("failed to publish %s", event.Name))
	}
	if err := p.client.Publish(ctx, RedisChannel("all"), eventJSON).Err(); err != nil {
		return errors.Wrap(err, "failed to publish to all channel")
	}
	return nil
}
