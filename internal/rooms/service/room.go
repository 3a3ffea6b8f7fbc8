package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"roombook/internal/locking"
	roomserrors "roombook/internal/rooms/errors"
	"roombook/internal/rooms/repository"
	"roombook/internal/rooms/validator"
	"roombook/pkg/config"
	apperrors "roombook/pkg/errors"
	"roombook/pkg/interval"
	"roombook/pkg/model"
	"roombook/pkg/sanitizer"
)

// RoomService is the caller-facing room registry. The availability flag is
// read-only here: only the booking engine writes it.
type RoomService interface {
	Create(ctx context.Context, room *model.Room) error
	GetByID(ctx context.Context, id string) (*model.Room, error)
	GetByNumber(ctx context.Context, roomNumber string) (*model.Room, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Room, int64, error)
	GetAvailable(ctx context.Context) ([]*model.Room, error)
	GetByCategory(ctx context.Context, category string) ([]*model.Room, error)
	Update(ctx context.Context, id string, updates *model.RoomUpdate) (*model.Room, error)
	Delete(ctx context.Context, id string) error
	Counts(ctx context.Context) (*model.RoomCounts, error)
}

// ActiveReservationCounter reports reservations of a room whose check-out is on or after ref.
type ActiveReservationCounter interface {
	CountActiveByRoom(ctx context.Context, roomID string, ref time.Time) (int64, error)
}

type roomService struct {
	repo         repository.RoomRepository
	reservations ActiveReservationCounter
	guard        *locking.Guard
	validator    *validator.RoomValidator
	cfg          *config.Config
	now          func() time.Time
}

func NewRoomService(
	repo repository.RoomRepository,
	reservations ActiveReservationCounter,
	guard *locking.Guard,
	validator *validator.RoomValidator,
	cfg *config.Config,
) RoomService {
	return &roomService{
		repo:         repo,
		reservations: reservations,
		guard:        guard,
		validator:    validator,
		cfg:          cfg,
		now:          time.Now,
	}
}

func (s *roomService) sanitize(room *model.Room) {
	room.RoomNumber = sanitizer.SanitizeRoomNumber(room.RoomNumber)
	room.Category = sanitizer.SanitizeCategory(room.Category)
	room.PricePerNight = sanitizer.SanitizePrice(room.PricePerNight)
}

func (s *roomService) sanitizeUpdate(updates *model.RoomUpdate) {
	updates.RoomNumber = sanitizer.SanitizeRoomNumber(updates.RoomNumber)
	updates.Category = sanitizer.SanitizeCategory(updates.Category)
	if updates.PricePerNight != nil {
		price := sanitizer.SanitizePrice(*updates.PricePerNight)
		updates.PricePerNight = &price
	}
}

func (s *roomService) Create(ctx context.Context, room *model.Room) error {
	s.sanitize(room)
	room.ID = ""
	// a new room has no reservations
	room.Available = true

	if err := s.validator.Validate(room); err != nil {
		s.cfg.Log.Warn("Room validation failed",
			"room_number", room.RoomNumber,
			"error", err,
		)
		return apperrors.Validation("Room validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if err := s.repo.Create(ctx, room); err != nil {
		if errors.Is(err, roomserrors.ErrDuplicateRoomNumber) {
			return apperrors.Conflict(fmt.Sprintf("Room number %s already exists", room.RoomNumber))
		}
		s.cfg.Log.Error("Failed to create room",
			"room_number", room.RoomNumber,
			"error", err,
		)
		return apperrors.Internal("Failed to create room", err)
	}

	s.cfg.Log.Info("Room created successfully",
		"id", room.ID,
		"room_number", room.RoomNumber,
		"category", room.Category,
	)

	return nil
}

func (s *roomService) GetByID(ctx context.Context, id string) (*model.Room, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Room ID cannot be empty")
	}

	room, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.lookupError(err, id, "Failed to retrieve room")
	}

	return room, nil
}

func (s *roomService) lookupError(err error, id string, internalMsg string) error {
	switch {
	case errors.Is(err, roomserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Room", id)
	case errors.Is(err, roomserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid room ID format")
	default:
		s.cfg.Log.Error(internalMsg,
			"id", id,
			"error", err,
		)
		return apperrors.Internal(internalMsg, err)
	}
}

func (s *roomService) GetByNumber(ctx context.Context, roomNumber string) (*model.Room, error) {
	roomNumber = sanitizer.SanitizeRoomNumber(roomNumber)
	if roomNumber == "" {
		return nil, apperrors.InvalidInput("Room number cannot be empty")
	}

	room, err := s.repo.FindByNumber(ctx, roomNumber)
	if err != nil {
		if errors.Is(err, roomserrors.ErrNotFound) {
			return nil, apperrors.NotFound(fmt.Sprintf("Room number %s", roomNumber))
		}
		s.cfg.Log.Error("Failed to get room by number",
			"room_number", roomNumber,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to retrieve room", err)
	}

	return room, nil
}

func (s *roomService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Room, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var rooms []*model.Room
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.Count(ctx)
		if err != nil {
			s.cfg.Log.Error("Failed to count rooms", "error", err)
			errCount = apperrors.Internal("Failed to count rooms", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		rooms, err = s.repo.FindAll(ctx, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to get all rooms",
				"limit", limit,
				"offset", offset,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to retrieve rooms", err)
		}
	}()
	wg.Wait()

	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return rooms, count, nil
}

func (s *roomService) GetAvailable(ctx context.Context) ([]*model.Room, error) {
	rooms, err := s.repo.FindAvailable(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to get available rooms", "error", err)
		return nil, apperrors.Internal("Failed to retrieve available rooms", err)
	}
	return rooms, nil
}

func (s *roomService) GetByCategory(ctx context.Context, category string) ([]*model.Room, error) {
	category = sanitizer.SanitizeCategory(category)
	if category == "" {
		return nil, apperrors.InvalidInput("Category cannot be empty")
	}

	rooms, err := s.repo.FindByCategory(ctx, category)
	if err != nil {
		s.cfg.Log.Error("Failed to get rooms by category",
			"category", category,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to retrieve rooms", err)
	}
	return rooms, nil
}

func (s *roomService) Update(ctx context.Context, id string, updates *model.RoomUpdate) (*model.Room, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Room ID cannot be empty")
	}

	s.sanitizeUpdate(updates)
	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Room update validation failed",
			"id", id,
			"error", err,
		)
		return nil, apperrors.Validation("Room update validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.lookupError(err, id, "Failed to check room existence")
	}

	merged := mergeRoomUpdates(existing, updates)
	if err := s.repo.Update(ctx, id, merged); err != nil {
		switch {
		case errors.Is(err, roomserrors.ErrDuplicateRoomNumber):
			return nil, apperrors.Conflict(fmt.Sprintf("Room number %s already exists", merged.RoomNumber))
		case errors.Is(err, roomserrors.ErrNotFound):
			return nil, apperrors.NotFoundWithID("Room", id)
		}
		s.cfg.Log.Error("Failed to update room",
			"id", id,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to update room", err)
	}

	s.cfg.Log.Info("Room updated successfully",
		"id", id,
		"room_number", merged.RoomNumber,
	)

	return merged, nil
}

func mergeRoomUpdates(existing *model.Room, updates *model.RoomUpdate) *model.Room {
	merged := *existing
	if updates.RoomNumber != "" {
		merged.RoomNumber = updates.RoomNumber
	}
	if updates.Category != "" {
		merged.Category = updates.Category
	}
	if updates.PricePerNight != nil {
		merged.PricePerNight = *updates.PricePerNight
	}
	return &merged
}

// Delete refuses to remove a room that still has reservations checking out
// today or later. It holds the room lock so no booking can slip in between
// the check and the delete.
func (s *roomService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Room ID cannot be empty")
	}

	release, err := s.guard.Lock(ctx, id)
	if err != nil {
		return locking.ToAppError(err)
	}
	defer release()

	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return s.lookupError(err, id, "Failed to check room existence")
	}

	today := interval.Today(s.now(), s.cfg.Location)
	active, err := s.reservations.CountActiveByRoom(ctx, id, today)
	if err != nil {
		s.cfg.Log.Error("Failed to count active reservations",
			"room_id", id,
			"error", err,
		)
		return apperrors.Internal("Failed to check room reservations", err)
	}
	if active > 0 {
		s.cfg.Log.Warn("Refusing to delete room with active reservations",
			"id", id,
			"active_reservations", active,
		)
		return apperrors.Conflict(fmt.Sprintf("Room has %d active reservation(s) and cannot be deleted", active)).
			WithDetails(map[string]any{"active_reservations": active})
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return s.lookupError(err, id, "Failed to delete room")
	}

	s.cfg.Log.Info("Room deleted successfully", "id", id)
	return nil
}

func (s *roomService) Counts(ctx context.Context) (*model.RoomCounts, error) {
	total, err := s.repo.Count(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to count rooms", "error", err)
		return nil, apperrors.Internal("Failed to count rooms", err)
	}

	available, err := s.repo.CountAvailable(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to count available rooms", "error", err)
		return nil, apperrors.Internal("Failed to count available rooms", err)
	}

	return &model.RoomCounts{Total: total, Available: available}, nil
}
