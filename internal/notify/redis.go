package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Lllllllleong/resumeflow/internal/models"
	"github.com/redis/go-redis/v9"
)

// RedisPublisher publishes notifications on Redis pub/sub channels.
type RedisPublisher struct {
	client redis.UniversalClient
}

// NewRedisPublisher connects to addr and verifies the connection.
func NewRedisPublisher(ctx context.Context, addr string) (*RedisPublisher, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return &RedisPublisher{client: client}, nil
}

// NewRedisPublisherFromClient wraps an existing client.
func NewRedisPublisherFromClient(client redis.UniversalClient) *RedisPublisher {
	return &RedisPublisher{client: client}
}

// Publish sends a JSON encoded models.Notification on the channel named topic.
func (p *RedisPublisher) Publish(ctx context.Context, topic, subject, body string) error {
	payload, err := json.Marshal(models.Notification{Subject: subject, Body: body})
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}
	if err := p.client.Publish(ctx, topic, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish to channel %s: %w", topic, err)
	}
	return nil
}

func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
