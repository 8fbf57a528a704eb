package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChannel struct {
	declared   []string
	published  []amqp.Publishing
	exchanges  []string
	keys       []string
	declareErr error
	publishErr error
}

func (f *fakeChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	if f.declareErr != nil {
		return f.declareErr
	}
	f.declared = append(f.declared, name+":"+kind)
	return nil
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.exchanges = append(f.exchanges, exchange)
	f.keys = append(f.keys, key)
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeChannel) Close() error { return nil }

func TestRabbitMQPublisher_Publish(t *testing.T) {
	ch := &fakeChannel{}
	p := &RabbitMQPublisher{channel: ch, declared: make(map[string]bool)}

	require.NoError(t, p.Publish(context.Background(), "resumes", "New Resume Processed: Jane", "body one"))
	require.NoError(t, p.Publish(context.Background(), "resumes", "New Resume Processed: John", "body two"))

	assert.Equal(t, []string{"resumes:topic"}, ch.declared, "exchange is declared once")
	assert.Equal(t, []string{"resumes", "resumes"}, ch.exchanges)
	assert.Equal(t, []string{RoutingKey, RoutingKey}, ch.keys)
	require.Len(t, ch.published, 2)
	assert.Equal(t, "New Resume Processed: Jane", ch.published[0].Headers["subject"])
	assert.Equal(t, []byte("body one"), ch.published[0].Body)
	assert.Equal(t, amqp.Persistent, ch.published[0].DeliveryMode)
}

func TestRabbitMQPublisher_Errors(t *testing.T) {
	t.Run("declare failure", func(t *testing.T) {
		p := &RabbitMQPublisher{channel: &fakeChannel{declareErr: errors.New("denied")}, declared: make(map[string]bool)}
		err := p.Publish(context.Background(), "resumes", "s", "b")
		assert.ErrorContains(t, err, "failed to declare exchange resumes")
	})

	t.Run("publish failure", func(t *testing.T) {
		p := &RabbitMQPublisher{channel: &fakeChannel{publishErr: amqp.ErrClosed}, declared: make(map[string]bool)}
		err := p.Publish(context.Background(), "resumes", "s", "b")
		assert.ErrorIs(t, err, amqp.ErrClosed)
	})
}

func TestRedisPublisher_Unreachable(t *testing.T) {
	ctx := context.Background()

	_, err := NewRedisPublisher(ctx, "127.0.0.1:1")
	assert.ErrorContains(t, err, "failed to connect to Redis")

	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 200 * time.Millisecond, MaxRetries: -1})
	p := NewRedisPublisherFromClient(client)
	defer p.Close()
	err = p.Publish(ctx, "resumes", "subject", "body")
	assert.ErrorContains(t, err, "failed to publish to channel resumes")
}
