package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"sharedcal/pkg/kafka"
	"sharedcal/pkg/middleware"
	"sharedcal/pkg/model"

	kafkago "github.com/segmentio/kafka-go"
)

type captureWriter struct {
	msgs []kafkago.Message
}

func (w *captureWriter) WriteMessages(ctx context.Context, msgs ...kafkago.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *captureWriter) Close() error { return nil }

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &captureWriter{}
	producer := kafka.NewProducerWithWriters(w, nil, "booking-events", "")
	pub := NewKafkaPublisher(producer, "bookings", time.Second)

	b := model.Booking{
		ID:     12,
		Name:   "Alice",
		Date:   model.MustParseDate("2024-01-01"),
		Start:  model.MustParseClock("09:00"),
		End:    model.MustParseClock("10:00"),
		Status: model.StatusCheckedIn,
	}
	at := time.Date(2024, 1, 1, 9, 1, 0, 0, time.UTC)

	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-1")
	if err := pub.Publish(ctx, New(TypeCheckedIn, b, at)); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	if len(w.msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(w.msgs))
	}
	msg := w.msgs[0]
	if string(msg.Key) != "12" {
		t.Errorf("key = %q, want 12", msg.Key)
	}

	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	want := map[string]string{
		kafka.HeaderEventType:     TypeCheckedIn,
		kafka.HeaderSource:        "bookings",
		kafka.HeaderSchemaVersion: SchemaVersion,
		kafka.HeaderCorrelationID: "req-1",
	}
	for k, v := range want {
		if headers[k] != v {
			t.Errorf("header %s = %q, want %q", k, headers[k], v)
		}
	}

	var event model.BookingEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		t.Fatalf("payload is not a booking event: %v", err)
	}
	if event.Type != TypeCheckedIn || event.Booking.ID != 12 || !event.OccurredAt.Equal(at) {
		t.Errorf("unexpected payload %+v", event)
	}
}

func TestNoopPublisher(t *testing.T) {
	pub := NewNoopPublisher()
	if err := pub.Publish(context.Background(), model.BookingEvent{}); err != nil {
		t.Errorf("Publish() error = %v", err)
	}
	if err := pub.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
