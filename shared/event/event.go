// Package event publishes domain changes so the worker can react to them.
package event

//go:generate go run go.uber.org/mock/mockgen -source=./event.go -destination=./mocks/event_mock.go -package=mocks

import (
	"context"
	"fmt"
	"time"

	"guesthouse/config"
	"guesthouse/infras/kafka"
	"guesthouse/infras/otel"
	"guesthouse/shared/constant"

	"github.com/rs/zerolog/log"
)

const (
	TypeBookingCreated  = "booking.created"
	TypeBookingUpdated  = "booking.updated"
	TypeBookingDeleted  = "booking.deleted"
	TypePaymentCreated  = "payment.created"
	TypePaymentUpdated  = "payment.updated"
	TypePaymentDeleted  = "payment.deleted"
	TypeLaundryCreated  = "laundry.created"
	TypeLaundryUpdated  = "laundry.updated"
	TypeLaundryDeleted  = "laundry.deleted"
	TypeInventoryMoved  = "inventory.moved"
	TypeAttendanceScan  = "attendance.scanned"
	TypeReferenceChange = "reference.changed"
)

type Event struct {
	Type       string    `json:"type"`
	EntityID   string    `json:"entity_id"`
	Actor      string    `json:"actor"`
	OccurredAt time.Time `json:"occurred_at"`
}

func New(eventType, entityID, actor string) Event {
	return Event{
		Type:       eventType,
		EntityID:   entityID,
		Actor:      actor,
		OccurredAt: time.Now().UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, events ...Event) error
}

type kafkaPublisher struct {
	client kafka.Client
	topic  string
	otel   otel.Otel
}

type noopPublisher struct{}

// NewPublisher returns a Kafka backed publisher, or a no-op one when no brokers are configured.
func NewPublisher(cfg *config.Config, client kafka.Client, otel otel.Otel) Publisher {
	if len(cfg.Kafka.Brokers) == 0 {
		log.Warn().Msg("no kafka brokers configured, domain events are disabled")

		return noopPublisher{}
	}

	return &kafkaPublisher{
		client: client,
		topic:  cfg.Kafka.Topic,
		otel:   otel,
	}
}

func (p *kafkaPublisher) Publish(ctx context.Context, events ...Event) (err error) {
	ctx, scope := p.otel.NewScope(ctx, constant.OtelEventScopeName, constant.OtelEventScopeName+".Publish")
	defer scope.End()
	defer scope.TraceIfError(err)

	messages := make([]kafka.Message, len(events))
	for i, evt := range events {
		messages[i] = kafka.Message{Key: evt.EntityID, Value: evt}
	}

	if err = p.client.SendMessages(ctx, p.topic, messages...); err != nil {
		return fmt.Errorf("failed to publish events: %w", err)
	}

	return nil
}

func (noopPublisher) Publish(_ context.Context, _ ...Event) error {
	return nil
}

// PublishAsync sends events after the response path has moved on; failures are only logged.
func PublishAsync(ctx context.Context, publisher Publisher, events ...Event) {
	go func() {
		c := context.WithoutCancel(ctx)

		if err := publisher.Publish(c, events...); err != nil {
			log.Error().Err(err).Msg("failed to publish domain events")
		}
	}()
}
