package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"roombook/internal/events"
	"roombook/internal/locking"
	reservationserrors "roombook/internal/reservations/errors"
	"roombook/internal/reservations/repository"
	"roombook/internal/reservations/validator"
	roomserrors "roombook/internal/rooms/errors"
	roomrepository "roombook/internal/rooms/repository"
	"roombook/pkg/config"
	mongotx "roombook/pkg/db/mongo"
	apperrors "roombook/pkg/errors"
	"roombook/pkg/interval"
	"roombook/pkg/model"
	"roombook/pkg/sanitizer"
)

// maxRelockAttempts bounds how often a writer re-locks when the reservation
// moved to another room between the unlocked read and lock acquisition.
const maxRelockAttempts = 3

// BookingService accepts, changes and cancels reservations. Every write that
// depends on a room's reservation set runs under that room's lock, so the
// read, the overlap decision and the write are one critical section.
type BookingService interface {
	CreateBooking(ctx context.Context, reservation *model.Reservation) (*model.Reservation, error)
	UpdateBooking(ctx context.Context, id string, updates *model.ReservationUpdate) (*model.Reservation, error)
	CancelBooking(ctx context.Context, id string) error
	MarkPaid(ctx context.Context, id string) (*model.Reservation, error)

	// RefreshAvailability recomputes one room's flag. The flag depends on the
	// current date, so it must be refreshed even without writes.
	RefreshAvailability(ctx context.Context, roomID string) (bool, error)
	RefreshAll(ctx context.Context) (int, error)
}

type bookingEngine struct {
	reservations repository.ReservationRepository
	rooms        roomrepository.RoomRepository
	tx           mongotx.TransactionManager
	guard        *locking.Guard
	validator    *validator.ReservationValidator
	publisher    events.Publisher
	cfg          *config.Config
	now          func() time.Time
}

func NewBookingEngine(
	reservations repository.ReservationRepository,
	rooms roomrepository.RoomRepository,
	guard *locking.Guard,
	validator *validator.ReservationValidator,
	publisher events.Publisher,
	cfg *config.Config,
	opts ...Option,
) BookingService {
	s := applyOptions(opts)
	return &bookingEngine{
		reservations: reservations,
		rooms:        rooms,
		tx:           reservations,
		guard:        guard,
		validator:    validator,
		publisher:    publisher,
		cfg:          cfg,
		now:          s.now,
	}
}

func (e *bookingEngine) today() time.Time {
	return interval.Today(e.now(), e.cfg.Location)
}

func normalize(r *model.Reservation) {
	r.CustomerName = sanitizer.SanitizeCustomerName(r.CustomerName)
	r.CheckIn = interval.Day(r.CheckIn)
	r.CheckOut = interval.Day(r.CheckOut)
}

func (e *bookingEngine) CreateBooking(ctx context.Context, reservation *model.Reservation) (*model.Reservation, error) {
	res := *reservation
	res.ID = ""
	normalize(&res)

	if err := e.validator.Validate(&res); err != nil {
		e.cfg.Log.Warn("Reservation validation failed",
			"room_id", res.RoomID,
			"customer_name", res.CustomerName,
			"error", err,
		)
		return nil, apperrors.Validation("Reservation validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	release, err := e.guard.Lock(ctx, res.RoomID)
	if err != nil {
		return nil, locking.ToAppError(err)
	}
	defer release()

	today := e.today()
	var available bool
	var changed bool

	err = e.tx.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		if err := e.requireRoom(txCtx, res.RoomID); err != nil {
			return err
		}

		existing, err := e.reservations.FindByRoom(txCtx, res.RoomID)
		if err != nil {
			return fmt.Errorf("failed to list reservations for room: %w", err)
		}
		if err := checkConflict(existing, &res, ""); err != nil {
			return err
		}

		if err := e.reservations.Create(txCtx, &res); err != nil {
			return fmt.Errorf("failed to create reservation: %w", err)
		}

		available, changed, err = e.recompute(txCtx, res.RoomID, today)
		return err
	})
	if err != nil {
		return nil, e.writeError(err, "Failed to create reservation", "room_id", res.RoomID)
	}

	e.cfg.Log.Info("Reservation created successfully",
		"id", res.ID,
		"room_id", res.RoomID,
		"check_in", res.CheckIn.Format(interval.DateLayout),
		"check_out", res.CheckOut.Format(interval.DateLayout),
		"room_available", available,
	)

	evts := []events.Event{events.NewReservationEvent(events.ReservationCreated, &res, "", e.now())}
	if changed {
		evts = append(evts, events.NewAvailabilityEvent(res.RoomID, available, e.now()))
	}
	e.publish(ctx, evts...)

	return &res, nil
}

func (e *bookingEngine) UpdateBooking(ctx context.Context, id string, updates *model.ReservationUpdate) (*model.Reservation, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Reservation ID cannot be empty")
	}

	updates.CustomerName = sanitizer.SanitizeCustomerName(updates.CustomerName)
	if err := e.validator.ValidateUpdate(updates); err != nil {
		e.cfg.Log.Warn("Reservation update validation failed",
			"id", id,
			"error", err,
		)
		return nil, apperrors.Validation("Reservation update validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	current, release, err := e.lockReservation(ctx, id, updates.RoomID)
	if err != nil {
		return nil, err
	}
	defer release()

	merged := updates.Apply(*current)
	normalize(&merged)

	if err := e.validator.Validate(&merged); err != nil {
		e.cfg.Log.Warn("Updated reservation is invalid",
			"id", id,
			"error", err,
		)
		return nil, apperrors.Validation("Reservation validation failed", map[string]any{
			"error": err.Error(),
		})
	}
	if current.Paid && !merged.Paid {
		return nil, apperrors.Validation("A paid reservation cannot be marked unpaid", map[string]any{
			"id": id,
		})
	}

	today := e.today()
	affected := []string{merged.RoomID}
	if current.RoomID != merged.RoomID {
		affected = append(affected, current.RoomID)
	}
	availability := make(map[string]bool, len(affected))
	var changedRooms []string

	err = e.tx.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		changedRooms = changedRooms[:0]

		if err := e.requireRoom(txCtx, merged.RoomID); err != nil {
			return err
		}

		siblings, err := e.reservations.FindByRoom(txCtx, merged.RoomID)
		if err != nil {
			return fmt.Errorf("failed to list reservations for room: %w", err)
		}
		if err := checkConflict(siblings, &merged, id); err != nil {
			return err
		}

		if err := e.reservations.Update(txCtx, id, &merged); err != nil {
			return fmt.Errorf("failed to update reservation: %w", err)
		}

		for _, roomID := range affected {
			available, changed, err := e.recompute(txCtx, roomID, today)
			if err != nil {
				return err
			}
			availability[roomID] = available
			if changed {
				changedRooms = append(changedRooms, roomID)
			}
		}
		return nil
	})
	if err != nil {
		return nil, e.writeError(err, "Failed to update reservation", "id", id)
	}

	e.cfg.Log.Info("Reservation updated successfully",
		"id", id,
		"room_id", merged.RoomID,
		"previous_room_id", current.RoomID,
		"check_in", merged.CheckIn.Format(interval.DateLayout),
		"check_out", merged.CheckOut.Format(interval.DateLayout),
	)

	previousRoom := ""
	if current.RoomID != merged.RoomID {
		previousRoom = current.RoomID
	}
	evts := []events.Event{events.NewReservationEvent(events.ReservationUpdated, &merged, previousRoom, e.now())}
	if !current.Paid && merged.Paid {
		evts = append(evts, events.NewReservationEvent(events.ReservationPaid, &merged, "", e.now()))
	}
	for _, roomID := range changedRooms {
		evts = append(evts, events.NewAvailabilityEvent(roomID, availability[roomID], e.now()))
	}
	e.publish(ctx, evts...)

	return &merged, nil
}

func (e *bookingEngine) CancelBooking(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Reservation ID cannot be empty")
	}

	current, release, err := e.lockReservation(ctx, id, "")
	if err != nil {
		return err
	}
	defer release()

	today := e.today()
	var available, changed bool

	err = e.tx.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		if err := e.reservations.Delete(txCtx, id); err != nil {
			return err
		}

		var err error
		available, changed, err = e.recompute(txCtx, current.RoomID, today)
		if errors.Is(err, roomserrors.ErrNotFound) {
			// reservation outlived its room; nothing to recompute
			return nil
		}
		return err
	})
	if err != nil {
		return e.writeError(err, "Failed to cancel reservation", "id", id)
	}

	e.cfg.Log.Info("Reservation cancelled successfully",
		"id", id,
		"room_id", current.RoomID,
		"room_available", available,
	)

	evts := []events.Event{events.NewReservationEvent(events.ReservationCancelled, current, "", e.now())}
	if changed {
		evts = append(evts, events.NewAvailabilityEvent(current.RoomID, available, e.now()))
	}
	e.publish(ctx, evts...)

	return nil
}

func (e *bookingEngine) MarkPaid(ctx context.Context, id string) (*model.Reservation, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Reservation ID cannot be empty")
	}

	current, release, err := e.lockReservation(ctx, id, "")
	if err != nil {
		return nil, err
	}
	defer release()

	if current.Paid {
		e.cfg.Log.Warn("Reservation already paid", "id", id)
		return nil, apperrors.Validation("Reservation is already paid", map[string]any{
			"id": id,
		})
	}

	paid := *current
	paid.Paid = true
	if err := e.reservations.Update(ctx, id, &paid); err != nil {
		return nil, e.writeError(err, "Failed to mark reservation as paid", "id", id)
	}

	e.cfg.Log.Info("Reservation marked as paid", "id", id, "room_id", paid.RoomID)
	e.publish(ctx, events.NewReservationEvent(events.ReservationPaid, &paid, "", e.now()))

	return &paid, nil
}

func (e *bookingEngine) RefreshAvailability(ctx context.Context, roomID string) (bool, error) {
	if roomID == "" {
		return false, apperrors.InvalidInput("Room ID cannot be empty")
	}

	release, err := e.guard.Lock(ctx, roomID)
	if err != nil {
		return false, locking.ToAppError(err)
	}
	defer release()

	today := e.today()
	var available, changed bool

	err = e.tx.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		var err error
		available, changed, err = e.recompute(txCtx, roomID, today)
		return err
	})
	if err != nil {
		return false, e.writeError(err, "Failed to refresh room availability", "room_id", roomID)
	}

	if changed {
		e.cfg.Log.Info("Room availability changed",
			"room_id", roomID,
			"available", available,
			"date", today.Format(interval.DateLayout),
		)
		e.publish(ctx, events.NewAvailabilityEvent(roomID, available, e.now()))
	}

	return available, nil
}

// RefreshAll recomputes every room and returns how many flags changed.
// Rooms deleted while the sweep runs are skipped.
func (e *bookingEngine) RefreshAll(ctx context.Context) (int, error) {
	ids, err := e.rooms.FindAllIDs(ctx)
	if err != nil {
		e.cfg.Log.Error("Failed to list rooms for availability sweep", "error", err)
		return 0, apperrors.Internal("Failed to list rooms", err)
	}

	var errs []error
	changed := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}

		before, err := e.rooms.FindByID(ctx, id)
		if errors.Is(err, roomserrors.ErrNotFound) {
			continue
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("room %s: %w", id, err))
			continue
		}

		available, err := e.RefreshAvailability(ctx, id)
		if err != nil {
			if apperrors.HasCode(err, apperrors.CodeNotFound) {
				continue
			}
			errs = append(errs, fmt.Errorf("room %s: %w", id, err))
			continue
		}
		if available != before.Available {
			changed++
		}
	}

	e.cfg.Log.Info("Availability sweep finished",
		"rooms", len(ids),
		"changed", changed,
		"failed", len(errs),
	)

	return changed, errors.Join(errs...)
}

// lockReservation reads a reservation, locks its room (plus extraRoom, if
// set) and re-reads it under the lock. If another writer moved it to a
// different room in between, the locks are dropped and the cycle repeats.
func (e *bookingEngine) lockReservation(ctx context.Context, id string, extraRoom string) (*model.Reservation, func(), error) {
	observed, err := e.findReservation(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	for attempt := 0; attempt < maxRelockAttempts; attempt++ {
		release, err := e.guard.Lock(ctx, observed.RoomID, extraRoom)
		if err != nil {
			return nil, nil, locking.ToAppError(err)
		}

		current, err := e.findReservation(ctx, id)
		if err != nil {
			release()
			return nil, nil, err
		}
		if current.RoomID == observed.RoomID {
			return current, release, nil
		}

		release()
		observed = current
	}

	e.cfg.Log.Warn("Reservation kept moving between rooms while locking",
		"id", id,
		"attempts", maxRelockAttempts,
	)
	return nil, nil, apperrors.Busy("Reservation is being modified concurrently, please retry", nil)
}

func (e *bookingEngine) findReservation(ctx context.Context, id string) (*model.Reservation, error) {
	res, err := e.reservations.FindByID(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, reservationserrors.ErrNotFound):
			return nil, apperrors.NotFoundWithID("Reservation", id)
		case errors.Is(err, reservationserrors.ErrInvalidID):
			return nil, apperrors.InvalidInput("Invalid reservation ID format")
		}
		e.cfg.Log.Error("Failed to get reservation", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve reservation", err)
	}
	return res, nil
}

func (e *bookingEngine) requireRoom(ctx context.Context, roomID string) error {
	if _, err := e.rooms.FindByID(ctx, roomID); err != nil {
		switch {
		case errors.Is(err, roomserrors.ErrNotFound):
			return apperrors.NotFoundWithID("Room", roomID)
		case errors.Is(err, roomserrors.ErrInvalidID):
			return apperrors.InvalidInput("Invalid room ID format")
		}
		return fmt.Errorf("failed to find room: %w", err)
	}
	return nil
}

// recompute derives the flag from the stored reservations and writes it.
func (e *bookingEngine) recompute(ctx context.Context, roomID string, today time.Time) (available bool, changed bool, err error) {
	reservations, err := e.reservations.FindByRoom(ctx, roomID)
	if err != nil {
		return false, false, fmt.Errorf("failed to list reservations for room: %w", err)
	}

	available = AvailableOn(reservations, today)
	changed, err = e.rooms.SetAvailability(ctx, roomID, available)
	if err != nil {
		if errors.Is(err, roomserrors.ErrNotFound) {
			return false, false, err
		}
		return false, false, fmt.Errorf("failed to set room availability: %w", err)
	}
	return available, changed, nil
}

// AvailableOn reports whether no reservation covers day, i.e. none has
// check-in <= day < check-out.
func AvailableOn(reservations []*model.Reservation, day time.Time) bool {
	for _, r := range reservations {
		if (interval.Range{Start: r.CheckIn, End: r.CheckOut}).Covers(day) {
			return false
		}
	}
	return true
}

// checkConflict rejects candidate if it overlaps any reservation other than excludeID.
func checkConflict(existing []*model.Reservation, candidate *model.Reservation, excludeID string) error {
	for _, r := range existing {
		if excludeID != "" && r.ID == excludeID {
			continue
		}
		if interval.Overlaps(r.CheckIn, r.CheckOut, candidate.CheckIn, candidate.CheckOut) {
			return apperrors.Conflict("Room is already reserved for the requested dates").
				WithDetails(map[string]any{
					"conflicting_reservation_id": r.ID,
					"check_in":                   r.CheckIn.Format(interval.DateLayout),
					"check_out":                  r.CheckOut.Format(interval.DateLayout),
				})
		}
	}
	return nil
}

func (e *bookingEngine) writeError(err error, msg string, attrs ...any) error {
	switch {
	case apperrors.IsAppError(err):
		return err
	case errors.Is(err, reservationserrors.ErrNotFound):
		return apperrors.NotFound("Reservation")
	case errors.Is(err, roomserrors.ErrNotFound):
		return apperrors.NotFound("Room")
	}

	e.cfg.Log.Error(msg, append(attrs, "error", err)...)
	return apperrors.Internal(msg, err)
}

func (e *bookingEngine) publish(ctx context.Context, evts ...events.Event) {
	if err := e.publisher.Publish(context.WithoutCancel(ctx), evts...); err != nil {
		e.cfg.Log.Warn("Failed to publish booking events",
			"count", len(evts),
			"error", err,
		)
	}
}
