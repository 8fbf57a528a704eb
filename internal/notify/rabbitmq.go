// Package notify publishes processed-resume notifications to subscribers.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// RoutingKey is attached to every notification published to RabbitMQ.
const RoutingKey = "resume.processed"

// amqpChannel is the subset of *amqp.Channel the publisher uses.
type amqpChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitMQPublisher publishes notifications to topic exchanges. It is safe for
// concurrent use.
type RabbitMQPublisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	channel  amqpChannel
	declared map[string]bool
}

// NewRabbitMQPublisher dials the broker, retrying a bounded number of times.
func NewRabbitMQPublisher(url string) (*RabbitMQPublisher, error) {
	conn, err := connectWithRetry(url, 5, 2*time.Second)
	if err != nil {
		return nil, err
	}
	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	return &RabbitMQPublisher{conn: conn, channel: channel, declared: make(map[string]bool)}, nil
}

func connectWithRetry(url string, maxRetries int, delay time.Duration) (*amqp.Connection, error) {
	var err error
	for i := 0; i < maxRetries; i++ {
		var conn *amqp.Connection
		conn, err = amqp.Dial(url)
		if err == nil {
			slog.Info("Connected to RabbitMQ.")
			return conn, nil
		}
		slog.Warn("Failed to connect to RabbitMQ, will retry.", "attempt", i+1, "maxRetries", maxRetries, "error", err)
		if i < maxRetries-1 {
			time.Sleep(delay)
		}
	}
	return nil, fmt.Errorf("failed to connect to RabbitMQ after %d attempts: %w", maxRetries, err)
}

// Publish sends body to the exchange named topic. The exchange is declared
// durable on first use.
func (p *RabbitMQPublisher) Publish(ctx context.Context, topic, subject, body string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.declared[topic] {
		if err := p.channel.ExchangeDeclare(topic, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
			return fmt.Errorf("failed to declare exchange %s: %w", topic, err)
		}
		p.declared[topic] = true
	}

	err := p.channel.PublishWithContext(ctx, topic, RoutingKey, false, false, amqp.Publishing{
		ContentType:  "text/plain",
		Headers:      amqp.Table{"subject": subject},
		Body:         []byte(body),
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to publish to exchange %s: %w", topic, err)
	}
	return nil
}

// Close closes the channel and the connection.
func (p *RabbitMQPublisher) Close() error {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
