package locking

import (
	"context"
	"fmt"
	"time"

	"roombook/pkg/model"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	LockCollectionName = "Room_locks"
	lockIDPrefix       = "room_lock_"
)

// MongoLocker holds one advisory document per locked room. Inserting a second
// document with the same _id fails with a duplicate key error while the lock
// is held. Leases carry an expiry so a crashed holder cannot block a room forever.
type MongoLocker struct {
	collection    *mongo.Collection
	ttl           time.Duration
	retryInterval time.Duration
	now           func() time.Time
}

func NewMongoLocker(db *mongo.Database, ttl, retryInterval time.Duration) *MongoLocker {
	return &MongoLocker{
		collection:    db.Collection(LockCollectionName),
		ttl:           ttl,
		retryInterval: retryInterval,
		now:           time.Now,
	}
}

func LockID(roomID string) string {
	return lockIDPrefix + roomID
}

func (l *MongoLocker) Acquire(ctx context.Context, roomID string) (Lease, error) {
	lockID := LockID(roomID)
	owner := uuid.NewString()

	for {
		now := l.now().UTC()
		lock := model.RoomLock{
			ID:        lockID,
			Owner:     owner,
			ExpiresAt: now.Add(l.ttl),
			CreatedAt: now,
		}

		_, err := l.collection.InsertOne(ctx, lock)
		if err == nil {
			return &mongoLease{collection: l.collection, id: lockID, owner: owner}, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("failed to insert room lock: %w", err)
		}

		// The TTL index removes expired leases eventually; take over sooner.
		res, err := l.collection.DeleteOne(ctx, bson.M{
			"_id":        lockID,
			"expires_at": bson.M{"$lt": now},
		})
		if err == nil && res.DeletedCount > 0 {
			continue
		}

		if err := waitOrDone(ctx, l.retryInterval); err != nil {
			return nil, err
		}
	}
}

type mongoLease struct {
	collection *mongo.Collection
	id         string
	owner      string
}

// Release deletes the lock only if this lease still owns it.
func (m *mongoLease) Release(ctx context.Context) error {
	_, err := m.collection.DeleteOne(ctx, bson.M{"_id": m.id, "owner": m.owner})
	if err != nil {
		return fmt.Errorf("failed to delete room lock: %w", err)
	}
	return nil
}
