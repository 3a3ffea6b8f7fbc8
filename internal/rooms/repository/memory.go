package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	roomserrors "roombook/internal/rooms/errors"
	mongotx "roombook/pkg/db/mongo"
	"roombook/pkg/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type memoryRoomRepository struct {
	mu        sync.RWMutex
	rooms     map[string]model.Room
	byNumber  map[string]string
	txManager mongotx.TransactionManager
}

// NewMemoryRoomRepository returns a process-local store. Ids are ObjectID hex
// strings so handlers and validators behave the same as with Mongo.
func NewMemoryRoomRepository() RoomRepository {
	return &memoryRoomRepository{
		rooms:     make(map[string]model.Room),
		byNumber:  make(map[string]string),
		txManager: mongotx.NewNoopTransactionManager(),
	}
}

func (r *memoryRoomRepository) Create(_ context.Context, room *model.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byNumber[room.RoomNumber]; exists {
		return roomserrors.ErrDuplicateRoomNumber
	}

	room.ID = primitive.NewObjectID().Hex()
	room.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	r.rooms[room.ID] = *room
	r.byNumber[room.RoomNumber] = room.ID
	return nil
}

func (r *memoryRoomRepository) FindByID(_ context.Context, id string) (*model.Room, error) {
	if !primitive.IsValidObjectID(id) {
		return nil, roomserrors.ErrInvalidID
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[id]
	if !ok {
		return nil, roomserrors.ErrNotFound
	}
	return &room, nil
}

func (r *memoryRoomRepository) FindByNumber(_ context.Context, roomNumber string) (*model.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byNumber[roomNumber]
	if !ok {
		return nil, roomserrors.ErrNotFound
	}
	room := r.rooms[id]
	return &room, nil
}

func (r *memoryRoomRepository) FindAll(_ context.Context, limit int, offset int64) ([]*model.Room, error) {
	all := r.filter(func(model.Room) bool { return true })
	if offset >= int64(len(all)) {
		return []*model.Room{}, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (r *memoryRoomRepository) FindAvailable(_ context.Context) ([]*model.Room, error) {
	return r.filter(func(room model.Room) bool { return room.Available }), nil
}

func (r *memoryRoomRepository) FindByCategory(_ context.Context, category string) ([]*model.Room, error) {
	return r.filter(func(room model.Room) bool { return room.Category == category }), nil
}

func (r *memoryRoomRepository) filter(keep func(model.Room) bool) []*model.Room {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rooms := []*model.Room{}
	for _, room := range r.rooms {
		if keep(room) {
			room := room
			rooms = append(rooms, &room)
		}
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].RoomNumber < rooms[j].RoomNumber })
	return rooms
}

func (r *memoryRoomRepository) FindAllIDs(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.rooms))
	for id := range r.rooms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *memoryRoomRepository) Update(_ context.Context, id string, room *model.Room) error {
	if !primitive.IsValidObjectID(id) {
		return roomserrors.ErrInvalidID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.rooms[id]
	if !ok {
		return roomserrors.ErrNotFound
	}
	if owner, taken := r.byNumber[room.RoomNumber]; taken && owner != id {
		return roomserrors.ErrDuplicateRoomNumber
	}

	delete(r.byNumber, existing.RoomNumber)
	existing.RoomNumber = room.RoomNumber
	existing.Category = room.Category
	existing.PricePerNight = room.PricePerNight
	r.rooms[id] = existing
	r.byNumber[existing.RoomNumber] = id
	return nil
}

func (r *memoryRoomRepository) SetAvailability(_ context.Context, id string, available bool) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[id]
	if !ok {
		return false, roomserrors.ErrNotFound
	}
	changed := room.Available != available
	room.Available = available
	r.rooms[id] = room
	return changed, nil
}

func (r *memoryRoomRepository) Delete(_ context.Context, id string) error {
	if !primitive.IsValidObjectID(id) {
		return roomserrors.ErrInvalidID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[id]
	if !ok {
		return roomserrors.ErrNotFound
	}
	delete(r.rooms, id)
	delete(r.byNumber, room.RoomNumber)
	return nil
}

func (r *memoryRoomRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.rooms)), nil
}

func (r *memoryRoomRepository) CountAvailable(ctx context.Context) (int64, error) {
	available, _ := r.FindAvailable(ctx)
	return int64(len(available)), nil
}

func (r *memoryRoomRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
