// Package stream publishes booking lifecycle records for downstream
// consumers. Publishing is best effort: a broker outage never fails a
// booking that already committed.
package stream

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/eventhive/ticketing-api/internal/model"
	"github.com/twmb/franz-go/pkg/kgo"
)

// TopicBookingCreated carries one record per committed booking.
const TopicBookingCreated = "bookings.created"

// BookingEvent is the wire payload for a committed booking.
type BookingEvent struct {
	SchemaVersion int       `json:"schema_version"`
	BookingID     string    `json:"booking_id"`
	UserID        string    `json:"user_id"`
	EventID       string    `json:"event_id"`
	Tickets       int       `json:"tickets"`
	TotalPrice    string    `json:"total_price"`
	Discount      int       `json:"discount"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

// Kafka publishes booking records to a Kafka cluster.
type Kafka struct {
	client *kgo.Client
}

// NewKafka connects a producer to the given brokers.
func NewKafka(brokers []string, clientID string) (*Kafka, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ClientID(clientID),
	)
	if err != nil {
		return nil, err
	}
	return &Kafka{client: client}, nil
}

// BookingCreated produces one record keyed by event id, so records for the
// same event stay ordered within a partition.
func (k *Kafka) BookingCreated(ctx context.Context, b model.Booking) {
	payload, err := json.Marshal(BookingEvent{
		SchemaVersion: 1,
		BookingID:     b.ID,
		UserID:        b.UserID,
		EventID:       b.EventID,
		Tickets:       b.Tickets,
		TotalPrice:    b.TotalPrice.String(),
		Discount:      b.DiscountPercent,
		Status:        b.Status,
		CreatedAt:     b.CreatedAt,
	})
	if err != nil {
		slog.Error("marshal booking event", "booking_id", b.ID, "error", err)
		return
	}
	record := &kgo.Record{
		Topic: TopicBookingCreated,
		Key:   []byte(b.EventID),
		Value: payload,
	}
	k.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil {
			slog.Error("publish booking created", "booking_id", b.ID, "error", err)
		}
	})
}

// Close flushes and shuts down the producer.
func (k *Kafka) Close() {
	k.client.Close()
}

// Noop drops records; used when streaming is disabled.
type Noop struct{}

// BookingCreated implements the publisher interface and does nothing.
func (Noop) BookingCreated(context.Context, model.Booking) {}
