package service

import (
	"context"
	"testing"
	"time"

	"roombook/internal/locking"
	resrepository "roombook/internal/reservations/repository"
	"roombook/internal/rooms/repository"
	"roombook/internal/rooms/validator"
	"roombook/pkg/config"
	apperrors "roombook/pkg/errors"
	"roombook/pkg/logger"
	"roombook/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 6, 15, 9, 30, 0, 0, time.UTC)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type fixture struct {
	svc          RoomService
	rooms        repository.RoomRepository
	reservations resrepository.ReservationRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg := &config.Config{Log: logger.Discard(), Location: time.UTC}
	rooms := repository.NewMemoryRoomRepository()
	reservations := resrepository.NewMemoryReservationRepository()
	guard := locking.NewGuard(locking.NewMemoryLocker(), time.Second, cfg.Log)

	svc := NewRoomService(rooms, reservations, guard, validator.NewRoomValidator(cfg.Log), cfg)
	svc.(*roomService).now = func() time.Time { return fixedNow }

	return &fixture{svc: svc, rooms: rooms, reservations: reservations}
}

func (f *fixture) createRoom(t *testing.T, number string) *model.Room {
	t.Helper()
	room := &model.Room{RoomNumber: number, Category: "Deluxe", PricePerNight: 120}
	require.NoError(t, f.svc.Create(context.Background(), room))
	return room
}

func TestRoomService_CreateMarksAvailable(t *testing.T) {
	f := newFixture(t)
	room := &model.Room{RoomNumber: " 10 1 ", Category: "  Deluxe ", PricePerNight: 99.999, Available: false}

	require.NoError(t, f.svc.Create(context.Background(), room))

	assert.NotEmpty(t, room.ID)
	assert.True(t, room.Available)
	assert.Equal(t, "101", room.RoomNumber)
	assert.Equal(t, "deluxe", room.Category)
	assert.Equal(t, 100.0, room.PricePerNight)

	stored, err := f.svc.GetByNumber(context.Background(), "101")
	require.NoError(t, err)
	assert.Equal(t, room.ID, stored.ID)
}

func TestRoomService_CreateValidation(t *testing.T) {
	f := newFixture(t)

	err := f.svc.Create(context.Background(), &model.Room{RoomNumber: "", Category: "x", PricePerNight: -1})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
}

func TestRoomService_DuplicateNumberIsConflict(t *testing.T) {
	f := newFixture(t)
	f.createRoom(t, "101")

	err := f.svc.Create(context.Background(), &model.Room{RoomNumber: "101", Category: "suite", PricePerNight: 300})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))
}

func TestRoomService_UpdateToTakenNumberIsConflict(t *testing.T) {
	f := newFixture(t)
	f.createRoom(t, "101")
	second := f.createRoom(t, "102")

	_, err := f.svc.Update(context.Background(), second.ID, &model.RoomUpdate{RoomNumber: "101"})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))

	price := 150.0
	updated, err := f.svc.Update(context.Background(), second.ID, &model.RoomUpdate{PricePerNight: &price})
	require.NoError(t, err)
	assert.Equal(t, "102", updated.RoomNumber)
	assert.Equal(t, 150.0, updated.PricePerNight)
}

func TestRoomService_UpdateEmptyIsValidationError(t *testing.T) {
	f := newFixture(t)
	room := f.createRoom(t, "101")

	_, err := f.svc.Update(context.Background(), room.ID, &model.RoomUpdate{})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
}

func TestRoomService_DeleteBlockedByActiveReservation(t *testing.T) {
	f := newFixture(t)
	room := f.createRoom(t, "101")

	// checks out today, still active
	require.NoError(t, f.reservations.Create(context.Background(), &model.Reservation{
		CustomerName: "Alice",
		RoomID:       room.ID,
		CheckIn:      day(2024, 6, 10),
		CheckOut:     day(2024, 6, 15),
	}))

	err := f.svc.Delete(context.Background(), room.ID)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))

	_, err = f.svc.GetByID(context.Background(), room.ID)
	assert.NoError(t, err, "room must survive a refused delete")
}

func TestRoomService_DeleteAllowedWithPastReservations(t *testing.T) {
	f := newFixture(t)
	room := f.createRoom(t, "101")

	require.NoError(t, f.reservations.Create(context.Background(), &model.Reservation{
		CustomerName: "Bob",
		RoomID:       room.ID,
		CheckIn:      day(2024, 6, 1),
		CheckOut:     day(2024, 6, 14),
	}))

	require.NoError(t, f.svc.Delete(context.Background(), room.ID))

	_, err := f.svc.GetByID(context.Background(), room.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestRoomService_NotFoundAndInvalidID(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.GetByID(context.Background(), "65a1b2c3d4e5f60718293a4b")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	_, err = f.svc.GetByID(context.Background(), "not-an-id")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput))

	err = f.svc.Delete(context.Background(), "65a1b2c3d4e5f60718293a4b")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	_, err = f.svc.GetByNumber(context.Background(), "999")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestRoomService_ListingAndCounts(t *testing.T) {
	f := newFixture(t)
	f.createRoom(t, "103")
	f.createRoom(t, "101")
	busy := f.createRoom(t, "102")

	_, err := f.rooms.SetAvailability(context.Background(), busy.ID, false)
	require.NoError(t, err)

	rooms, total, err := f.svc.GetAll(context.Background(), 2, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, rooms, 2)
	assert.Equal(t, "101", rooms[0].RoomNumber)
	assert.Equal(t, "102", rooms[1].RoomNumber)

	available, err := f.svc.GetAvailable(context.Background())
	require.NoError(t, err)
	assert.Len(t, available, 2)

	byCategory, err := f.svc.GetByCategory(context.Background(), "DELUXE")
	require.NoError(t, err)
	assert.Len(t, byCategory, 3)

	counts, err := f.svc.Counts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &model.RoomCounts{Total: 3, Available: 2}, counts)
}
