// Package events publishes booking state changes after they are committed.
package events

import (
	"context"
	"fmt"
	"time"

	"roombook/pkg/kafka"
	"roombook/pkg/logger"
	"roombook/pkg/model"
)

const (
	ReservationCreated      = "reservation.created"
	ReservationUpdated      = "reservation.updated"
	ReservationCancelled    = "reservation.cancelled"
	ReservationPaid         = "reservation.paid"
	RoomAvailabilityChanged = "room.availability_changed"

	SchemaVersion = "1"
	Source        = "roombook"
)

type Event struct {
	Type           string             `json:"type"`
	RoomID         string             `json:"room_id"`
	PreviousRoomID string             `json:"previous_room_id,omitempty"`
	Reservation    *model.Reservation `json:"reservation,omitempty"`
	Available      *bool              `json:"available,omitempty"`
	OccurredAt     time.Time          `json:"occurred_at"`
}

// RoomIDs lists every room whose availability the event may affect.
func (e Event) RoomIDs() []string {
	if e.PreviousRoomID != "" && e.PreviousRoomID != e.RoomID {
		return []string{e.RoomID, e.PreviousRoomID}
	}
	return []string{e.RoomID}
}

func NewReservationEvent(eventType string, r *model.Reservation, previousRoomID string, at time.Time) Event {
	snapshot := *r
	return Event{
		Type:           eventType,
		RoomID:         r.RoomID,
		PreviousRoomID: previousRoomID,
		Reservation:    &snapshot,
		OccurredAt:     at.UTC(),
	}
}

func NewAvailabilityEvent(roomID string, available bool, at time.Time) Event {
	return Event{
		Type:       RoomAvailabilityChanged,
		RoomID:     roomID,
		Available:  &available,
		OccurredAt: at.UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, events ...Event) error
}

type kafkaPublisher struct {
	producer *kafka.Producer
}

// NewKafkaPublisher keys every message by room id so events for one room stay ordered.
func NewKafkaPublisher(producer *kafka.Producer) Publisher {
	return &kafkaPublisher{producer: producer}
}

func (p *kafkaPublisher) Publish(ctx context.Context, events ...Event) error {
	for _, e := range events {
		msg, err := Encode(e)
		if err != nil {
			return err
		}
		if err := p.producer.Publish(ctx, msg); err != nil {
			return fmt.Errorf("failed to publish %s event: %w", e.Type, err)
		}
	}
	return nil
}

func Encode(e Event) (kafka.Message, error) {
	return kafka.NewMessage().
		WithKey(e.RoomID).
		WithEventType(e.Type).
		WithSchemaVersion(SchemaVersion).
		WithSource(Source).
		WithTimestamp(e.OccurredAt).
		WithValue(e).
		Build()
}

func Decode(msg kafka.Message) (Event, error) {
	var e Event
	if err := msg.DecodeValue(&e); err != nil {
		return Event{}, kafka.NewPermanentError("deserialization failed", err)
	}
	if e.RoomID == "" {
		return Event{}, kafka.NewPermanentError("event has no room id", kafka.ErrInvalidMessage)
	}
	return e, nil
}

type noopPublisher struct{}

func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) Publish(context.Context, ...Event) error {
	return nil
}

type loggingPublisher struct {
	next Publisher
	log  *logger.Logger
}

// BestEffort wraps a publisher so failures are logged and swallowed. The
// state change is already committed when events go out.
func BestEffort(next Publisher, log *logger.Logger) Publisher {
	return &loggingPublisher{next: next, log: log}
}

func (p *loggingPublisher) Publish(ctx context.Context, events ...Event) error {
	if err := p.next.Publish(ctx, events...); err != nil {
		p.log.Warn("Failed to publish booking events",
			"count", len(events),
			"error", err,
		)
	}
	return nil
}
