package model

import "time"

type Room struct {
	ID            string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	RoomNumber    string    `json:"room_number" bson:"room_number" validate:"required,min=1,max=20,printascii"`
	Category      string    `json:"category" bson:"category" validate:"required,min=2,max=50"`
	PricePerNight float64   `json:"price_per_night" bson:"price_per_night" validate:"gte=0"`
	Available     bool      `json:"available" bson:"available"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// RoomUpdate carries the caller-editable room fields. Availability is owned
// by the booking engine and cannot be set here.
type RoomUpdate struct {
	RoomNumber    string   `json:"room_number,omitempty" validate:"omitempty,min=1,max=20,printascii"`
	Category      string   `json:"category,omitempty" validate:"omitempty,min=2,max=50"`
	PricePerNight *float64 `json:"price_per_night,omitempty" validate:"omitempty,gte=0"`
}

func (u *RoomUpdate) IsEmpty() bool {
	return u.RoomNumber == "" && u.Category == "" && u.PricePerNight == nil
}

type RoomCounts struct {
	Total     int64 `json:"total"`
	Available int64 `json:"available"`
}
