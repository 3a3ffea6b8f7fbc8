package model

import "time"

// RoomLock is the advisory lock document guarding writes to one room.
// A unique _id per room makes a second insert fail while the lock is held.
type RoomLock struct {
	ID        string    `bson:"_id" json:"id"`
	Owner     string    `bson:"owner" json:"owner"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
