package service

import (
	"context"
	"errors"
	"time"

	reservationserrors "roombook/internal/reservations/errors"
	"roombook/internal/reservations/repository"
	"roombook/pkg/config"
	apperrors "roombook/pkg/errors"
	"roombook/pkg/interval"
	"roombook/pkg/model"
	"roombook/pkg/sanitizer"

	"golang.org/x/sync/errgroup"
)

// ReservationQueries are the read-only reservation lookups. None of them take locks.
type ReservationQueries interface {
	GetByID(ctx context.Context, id string) (*model.Reservation, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Reservation, int64, error)
	GetByRoom(ctx context.Context, roomID string) ([]*model.Reservation, error)
	GetByCustomer(ctx context.Context, name string) ([]*model.Reservation, error)
	// GetByDateRange matches reservations whose check-in falls in [start, end].
	GetByDateRange(ctx context.Context, start, end time.Time) ([]*model.Reservation, error)
	Count(ctx context.Context) (int64, error)
	// CountActive counts reservations checking out today or later.
	CountActive(ctx context.Context) (int64, error)
}

type reservationQueries struct {
	repo repository.ReservationRepository
	cfg  *config.Config
	now  func() time.Time
}

func NewReservationQueries(repo repository.ReservationRepository, cfg *config.Config, opts ...Option) ReservationQueries {
	s := applyOptions(opts)
	return &reservationQueries{
		repo: repo,
		cfg:  cfg,
		now:  s.now,
	}
}

func (q *reservationQueries) GetByID(ctx context.Context, id string) (*model.Reservation, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Reservation ID cannot be empty")
	}

	res, err := q.repo.FindByID(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, reservationserrors.ErrNotFound):
			return nil, apperrors.NotFoundWithID("Reservation", id)
		case errors.Is(err, reservationserrors.ErrInvalidID):
			return nil, apperrors.InvalidInput("Invalid reservation ID format")
		}
		q.cfg.Log.Error("Failed to get reservation", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve reservation", err)
	}

	return res, nil
}

func (q *reservationQueries) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Reservation, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var reservations []*model.Reservation

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		count, err = q.repo.Count(gctx)
		if err != nil {
			q.cfg.Log.Error("Failed to count reservations", "error", err)
			return apperrors.Internal("Failed to count reservations", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		reservations, err = q.repo.FindAll(gctx, limit, offset)
		if err != nil {
			q.cfg.Log.Error("Failed to get all reservations",
				"limit", limit,
				"offset", offset,
				"error", err,
			)
			return apperrors.Internal("Failed to retrieve reservations", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	return reservations, count, nil
}

func (q *reservationQueries) GetByRoom(ctx context.Context, roomID string) ([]*model.Reservation, error) {
	if roomID == "" {
		return nil, apperrors.InvalidInput("Room ID cannot be empty")
	}

	reservations, err := q.repo.FindByRoom(ctx, roomID)
	if err != nil {
		q.cfg.Log.Error("Failed to get reservations by room",
			"room_id", roomID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to retrieve reservations", err)
	}
	return reservations, nil
}

func (q *reservationQueries) GetByCustomer(ctx context.Context, name string) ([]*model.Reservation, error) {
	name = sanitizer.SanitizeCustomerName(name)
	if name == "" {
		return nil, apperrors.InvalidInput("Customer name cannot be empty")
	}

	reservations, err := q.repo.FindByCustomer(ctx, name, true)
	if err != nil {
		q.cfg.Log.Error("Failed to get reservations by customer",
			"customer_name", name,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to retrieve reservations", err)
	}
	return reservations, nil
}

func (q *reservationQueries) GetByDateRange(ctx context.Context, start, end time.Time) ([]*model.Reservation, error) {
	start, end = interval.Day(start), interval.Day(end)
	if end.Before(start) {
		return nil, apperrors.Validation("Start date must not be after end date", map[string]any{
			"start": start.Format(interval.DateLayout),
			"end":   end.Format(interval.DateLayout),
		})
	}

	reservations, err := q.repo.FindByCheckInRange(ctx, start, end)
	if err != nil {
		q.cfg.Log.Error("Failed to get reservations by date range",
			"start", start.Format(interval.DateLayout),
			"end", end.Format(interval.DateLayout),
			"error", err,
		)
		return nil, apperrors.Internal("Failed to retrieve reservations", err)
	}
	return reservations, nil
}

func (q *reservationQueries) Count(ctx context.Context) (int64, error) {
	count, err := q.repo.Count(ctx)
	if err != nil {
		q.cfg.Log.Error("Failed to count reservations", "error", err)
		return 0, apperrors.Internal("Failed to count reservations", err)
	}
	return count, nil
}

func (q *reservationQueries) CountActive(ctx context.Context) (int64, error) {
	today := interval.Today(q.now(), q.cfg.Location)
	count, err := q.repo.CountActive(ctx, today)
	if err != nil {
		q.cfg.Log.Error("Failed to count active reservations", "error", err)
		return 0, apperrors.Internal("Failed to count active reservations", err)
	}
	return count, nil
}
