package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	reservationserrors "roombook/internal/reservations/errors"
	mongotx "roombook/pkg/db/mongo"
	"roombook/pkg/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type memoryReservationRepository struct {
	mu           sync.RWMutex
	reservations map[string]model.Reservation
	byRoom       map[string]map[string]struct{}
	txManager    mongotx.TransactionManager
}

// NewMemoryReservationRepository returns a process-local store with a per-room index.
func NewMemoryReservationRepository() ReservationRepository {
	return &memoryReservationRepository{
		reservations: make(map[string]model.Reservation),
		byRoom:       make(map[string]map[string]struct{}),
		txManager:    mongotx.NewNoopTransactionManager(),
	}
}

func (r *memoryReservationRepository) Create(_ context.Context, reservation *model.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	reservation.ID = primitive.NewObjectID().Hex()
	reservation.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	r.reservations[reservation.ID] = *reservation
	r.index(reservation.RoomID, reservation.ID)
	return nil
}

func (r *memoryReservationRepository) index(roomID, id string) {
	ids, ok := r.byRoom[roomID]
	if !ok {
		ids = make(map[string]struct{})
		r.byRoom[roomID] = ids
	}
	ids[id] = struct{}{}
}

func (r *memoryReservationRepository) unindex(roomID, id string) {
	ids := r.byRoom[roomID]
	delete(ids, id)
	if len(ids) == 0 {
		delete(r.byRoom, roomID)
	}
}

func (r *memoryReservationRepository) FindByID(_ context.Context, id string) (*model.Reservation, error) {
	if !primitive.IsValidObjectID(id) {
		return nil, reservationserrors.ErrInvalidID
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	reservation, ok := r.reservations[id]
	if !ok {
		return nil, reservationserrors.ErrNotFound
	}
	return &reservation, nil
}

func (r *memoryReservationRepository) FindAll(_ context.Context, limit int, offset int64) ([]*model.Reservation, error) {
	all := r.filter(func(model.Reservation) bool { return true })
	if offset >= int64(len(all)) {
		return []*model.Reservation{}, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (r *memoryReservationRepository) FindByRoom(_ context.Context, roomID string) ([]*model.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reservations := []*model.Reservation{}
	for id := range r.byRoom[roomID] {
		reservation := r.reservations[id]
		reservations = append(reservations, &reservation)
	}
	sortByCheckIn(reservations)
	return reservations, nil
}

func (r *memoryReservationRepository) FindByCustomer(_ context.Context, name string, caseInsensitive bool) ([]*model.Reservation, error) {
	return r.filter(func(res model.Reservation) bool {
		if caseInsensitive {
			return strings.EqualFold(res.CustomerName, name)
		}
		return res.CustomerName == name
	}), nil
}

func (r *memoryReservationRepository) FindByCheckInRange(_ context.Context, start, end time.Time) ([]*model.Reservation, error) {
	return r.filter(func(res model.Reservation) bool {
		return !res.CheckIn.Before(start) && !res.CheckIn.After(end)
	}), nil
}

func (r *memoryReservationRepository) filter(keep func(model.Reservation) bool) []*model.Reservation {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reservations := []*model.Reservation{}
	for _, res := range r.reservations {
		if keep(res) {
			res := res
			reservations = append(reservations, &res)
		}
	}
	sortByCheckIn(reservations)
	return reservations
}

func sortByCheckIn(reservations []*model.Reservation) {
	sort.Slice(reservations, func(i, j int) bool {
		if reservations[i].CheckIn.Equal(reservations[j].CheckIn) {
			return reservations[i].ID < reservations[j].ID
		}
		return reservations[i].CheckIn.Before(reservations[j].CheckIn)
	})
}

func (r *memoryReservationRepository) Update(_ context.Context, id string, reservation *model.Reservation) error {
	if !primitive.IsValidObjectID(id) {
		return reservationserrors.ErrInvalidID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.reservations[id]
	if !ok {
		return reservationserrors.ErrNotFound
	}

	reservation.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
	updated := existing
	updated.CustomerName = reservation.CustomerName
	updated.RoomID = reservation.RoomID
	updated.CheckIn = reservation.CheckIn
	updated.CheckOut = reservation.CheckOut
	updated.Paid = reservation.Paid
	updated.UpdatedAt = reservation.UpdatedAt

	if existing.RoomID != updated.RoomID {
		r.unindex(existing.RoomID, id)
		r.index(updated.RoomID, id)
	}
	r.reservations[id] = updated
	return nil
}

func (r *memoryReservationRepository) Delete(_ context.Context, id string) error {
	if !primitive.IsValidObjectID(id) {
		return reservationserrors.ErrInvalidID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.reservations[id]
	if !ok {
		return reservationserrors.ErrNotFound
	}
	delete(r.reservations, id)
	r.unindex(existing.RoomID, id)
	return nil
}

func (r *memoryReservationRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.reservations)), nil
}

func (r *memoryReservationRepository) CountActive(_ context.Context, ref time.Time) (int64, error) {
	active := r.filter(func(res model.Reservation) bool { return !res.CheckOut.Before(ref) })
	return int64(len(active)), nil
}

func (r *memoryReservationRepository) CountActiveByRoom(ctx context.Context, roomID string, ref time.Time) (int64, error) {
	reservations, _ := r.FindByRoom(ctx, roomID)
	var n int64
	for _, res := range reservations {
		if !res.CheckOut.Before(ref) {
			n++
		}
	}
	return n, nil
}

func (r *memoryReservationRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
