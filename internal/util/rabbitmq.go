package util

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/kamruz-zzaman/portfolio-v2/internal/config"

	amqp "github.com/rabbitmq/amqp091-go"
)

// RabbitMQClient owns one connection and one channel for publishing and
// consuming.
type RabbitMQClient struct {
	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
}

func NewRabbitMQClient(cfg *config.Config) (*RabbitMQClient, error) {
	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open RabbitMQ channel: %w", err)
	}

	return &RabbitMQClient{conn: conn, channel: ch}, nil
}

// GetChannel returns the shared channel, or nil when closed.
func (r *RabbitMQClient) GetChannel() *amqp.Channel {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.channel == nil || r.channel.IsClosed() {
		return nil
	}
	return r.channel
}

// DeclareDirect declares a durable direct exchange with one bound durable queue.
func (r *RabbitMQClient) DeclareDirect(exchange, queue, routingKey string) error {
	ch := r.GetChannel()
	if ch == nil {
		return errors.New("rabbitmq channel closed")
	}

	if err := ch.ExchangeDeclare(exchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", queue, err)
	}
	if err := ch.QueueBind(queue, routingKey, exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue %s: %w", queue, err)
	}
	return nil
}

// Publish sends a persistent JSON message.
func (r *RabbitMQClient) Publish(ctx context.Context, exchange, routingKey string, body []byte) error {
	ch := r.GetChannel()
	if ch == nil {
		return errors.New("rabbitmq channel closed")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return ch.PublishWithContext(ctx, exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
}

// Close closes the channel and the connection
func (r *RabbitMQClient) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.channel != nil {
		r.channel.Close()
		r.channel = nil
	}
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}
