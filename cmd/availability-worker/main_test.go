package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"roombook/internal/events"
	"roombook/pkg/kafka"
	"roombook/pkg/logger"
	"roombook/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type refreshRecorder struct {
	rooms []string
	err   error
}

func (r *refreshRecorder) CreateBooking(context.Context, *model.Reservation) (*model.Reservation, error) {
	return nil, nil
}

func (r *refreshRecorder) UpdateBooking(context.Context, string, *model.ReservationUpdate) (*model.Reservation, error) {
	return nil, nil
}

func (r *refreshRecorder) CancelBooking(context.Context, string) error { return nil }

func (r *refreshRecorder) MarkPaid(context.Context, string) (*model.Reservation, error) {
	return nil, nil
}

func (r *refreshRecorder) RefreshAvailability(_ context.Context, roomID string) (bool, error) {
	r.rooms = append(r.rooms, roomID)
	return true, r.err
}

func (r *refreshRecorder) RefreshAll(context.Context) (int, error) { return 0, nil }

func TestRefreshHandler_RefreshesEveryTouchedRoom(t *testing.T) {
	rec := &refreshRecorder{}
	handler := refreshHandler(rec, logger.Discard())

	res := &model.Reservation{ID: "r1", RoomID: "room-b", CustomerName: "Ada"}
	msg, err := events.Encode(events.NewReservationEvent(events.ReservationUpdated, res, "room-a", time.Now()))
	require.NoError(t, err)

	require.NoError(t, handler(context.Background(), msg))
	assert.Equal(t, []string{"room-b", "room-a"}, rec.rooms)
}

func TestRefreshHandler_PropagatesRefreshError(t *testing.T) {
	rec := &refreshRecorder{err: errors.New("store down")}
	handler := refreshHandler(rec, logger.Discard())

	msg, err := events.Encode(events.NewAvailabilityEvent("room-a", false, time.Now()))
	require.NoError(t, err)

	assert.Error(t, handler(context.Background(), msg))
}

func TestRefreshHandler_RejectsUndecodableMessage(t *testing.T) {
	rec := &refreshRecorder{}
	handler := refreshHandler(rec, logger.Discard())

	err := handler(context.Background(), kafka.Message{Value: []byte("not json")})
	var kerr *kafka.KafkaError
	require.ErrorAs(t, err, &kerr)
	assert.True(t, kerr.IsPermanent())
	assert.Empty(t, rec.rooms)
}
