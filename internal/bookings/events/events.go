// Package events announces booking lifecycle changes to other services.
package events

import (
	"context"
	"strconv"
	"time"

	"sharedcal/pkg/kafka"
	"sharedcal/pkg/middleware"
	"sharedcal/pkg/model"
)

const (
	TypeCreated    = "booking.created"
	TypeCheckedIn  = "booking.checked_in"
	TypeCheckedOut = "booking.checked_out"
	TypeDeleted    = "booking.deleted"

	SchemaVersion = "1"
)

type Publisher interface {
	Publish(ctx context.Context, event model.BookingEvent) error
	Close() error
}

// New returns an event for b stamped with at.
func New(eventType string, b model.Booking, at time.Time) model.BookingEvent {
	return model.BookingEvent{
		Type:       eventType,
		Booking:    b,
		OccurredAt: at.UTC(),
	}
}

type kafkaPublisher struct {
	producer *kafka.Producer
	source   string
	timeout  time.Duration
}

// NewKafkaPublisher publishes events keyed by booking id so every event of
// one booking lands on the same partition.
func NewKafkaPublisher(producer *kafka.Producer, source string, timeout time.Duration) Publisher {
	return &kafkaPublisher{producer: producer, source: source, timeout: timeout}
}

func (p *kafkaPublisher) Publish(ctx context.Context, event model.BookingEvent) error {
	msg, err := kafka.NewMessage().
		WithKey(strconv.Itoa(event.Booking.ID)).
		WithValue(event).
		WithEventID("").
		WithEventType(event.Type).
		WithCorrelationID(middleware.RequestIDFromContext(ctx)).
		WithSchemaVersion(SchemaVersion).
		WithSource(p.source).
		WithTimestamp(event.OccurredAt).
		Build()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	return p.producer.Publish(ctx, msg)
}

func (p *kafkaPublisher) Close() error {
	return p.producer.Close()
}

type noopPublisher struct{}

// NewNoopPublisher drops every event. Used when events are disabled.
func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) Publish(ctx context.Context, event model.BookingEvent) error { return nil }

func (noopPublisher) Close() error { return nil }
