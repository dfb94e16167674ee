package amqp

//go:generate go run go.uber.org/mock/mockgen -source=./amqp.go -destination=./mocks/amqp_mock.go -package=mocks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"guesthouse/config"
	"guesthouse/shared/constant"

	amqp091 "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

const publishTimeout = 5 * time.Second

var ErrNotConnected = errors.New("amqp broker is not connected")

// Handler processes one delivery body. A returned error requeues the delivery.
type Handler func(ctx context.Context, body []byte) error

type Client interface {
	Publish(ctx context.Context, value any) error
	Consume(ctx context.Context, handler Handler) error
	Close() error
}

type clientImpl struct {
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	exchange string
	queue    string
}

// New dials the broker and declares the direct exchange and its bound queue.
// A broker that is missing or unreachable yields a client whose calls return ErrNotConnected.
func New(cfg *config.Config) Client {
	client := &clientImpl{
		exchange: cfg.AMQP.Exchange,
		queue:    cfg.AMQP.Queue,
	}

	if cfg.AMQP.URL == "" {
		log.Warn().Msg("AMQP url is empty, low stock alerts are disabled")

		return client
	}

	conn, err := amqp091.Dial(cfg.AMQP.URL)
	if err != nil {
		log.Error().Err(err).Msg("Failed to connect to AMQP broker")

		return client
	}

	channel, err := conn.Channel()
	if err != nil {
		log.Error().Err(err).Msg("Failed to open AMQP channel")

		_ = conn.Close()

		return client
	}

	client.conn = conn
	client.channel = channel

	if err := client.setup(); err != nil {
		log.Error().Err(err).Msg("Failed to declare AMQP topology")

		_ = client.Close()
		client.conn, client.channel = nil, nil

		return client
	}

	log.Info().Str("exchange", client.exchange).Str("queue", client.queue).Msg("Connected to AMQP broker")

	return client
}

func (c *clientImpl) setup() error {
	if err := c.channel.ExchangeDeclare(c.exchange, amqp091.ExchangeDirect, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	if _, err := c.channel.QueueDeclare(c.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	if err := c.channel.QueueBind(c.queue, c.queue, c.exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	return nil
}

func (c *clientImpl) Publish(ctx context.Context, value any) error {
	if c.channel == nil {
		return ErrNotConnected
	}

	body, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal amqp message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = c.channel.PublishWithContext(ctx, c.exchange, c.queue, false, false, amqp091.Publishing{
		ContentType:  constant.ContentTypeJSON,
		DeliveryMode: amqp091.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish amqp message: %w", err)
	}

	log.Info().Str("exchange", c.exchange).Str("queue", c.queue).Msg("Published AMQP message")

	return nil
}

// Consume blocks until ctx is done or the delivery channel closes.
func (c *clientImpl) Consume(ctx context.Context, handler Handler) error {
	if c.channel == nil {
		return ErrNotConnected
	}

	deliveries, err := c.channel.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	log.Info().Str("queue", c.queue).Msg("Started consuming AMQP messages")

	for {
		select {
		case <-ctx.Done():
			return nil
		case delivery, ok := <-deliveries:
			if !ok {
				return errors.New("amqp delivery channel closed")
			}

			if err := handler(ctx, delivery.Body); err != nil {
				log.Error().Err(err).Str("queue", c.queue).Msg("Failed to handle AMQP message")

				_ = delivery.Nack(false, true)

				continue
			}

			_ = delivery.Ack(false)
		}
	}
}

func (c *clientImpl) Close() error {
	if c.channel != nil {
		_ = c.channel.Close()
	}

	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			return fmt.Errorf("failed to close amqp connection: %w", err)
		}
	}

	return nil
}
