package model

import "time"

type Reservation struct {
	ID           string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	CustomerName string    `json:"customer_name" bson:"customer_name" validate:"required,min=2,max=100"`
	RoomID       string    `json:"room_id" bson:"room_id" validate:"required,mongodb"`
	CheckIn      time.Time `json:"check_in" bson:"check_in_date" validate:"required"`
	CheckOut     time.Time `json:"check_out" bson:"check_out_date" validate:"required,gtfield=CheckIn"`
	Paid         bool      `json:"paid" bson:"paid"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt    time.Time `json:"updated_at,omitempty" bson:"updated_at,omitempty" validate:"omitempty"`
}

type ReservationUpdate struct {
	CustomerName string     `json:"customer_name,omitempty" validate:"omitempty,min=2,max=100"`
	RoomID       string     `json:"room_id,omitempty" validate:"omitempty,mongodb"`
	CheckIn      *time.Time `json:"check_in,omitempty" validate:"omitempty"`
	CheckOut     *time.Time `json:"check_out,omitempty" validate:"omitempty"`
	Paid         *bool      `json:"paid,omitempty" validate:"omitempty"`
}

func (u *ReservationUpdate) IsEmpty() bool {
	return u.CustomerName == "" && u.RoomID == "" && u.CheckIn == nil && u.CheckOut == nil && u.Paid == nil
}

// Apply returns a copy of r with the non-empty fields of u applied.
func (u *ReservationUpdate) Apply(r Reservation) Reservation {
	if u.CustomerName != "" {
		r.CustomerName = u.CustomerName
	}
	if u.RoomID != "" {
		r.RoomID = u.RoomID
	}
	if u.CheckIn != nil {
		r.CheckIn = *u.CheckIn
	}
	if u.CheckOut != nil {
		r.CheckOut = *u.CheckOut
	}
	if u.Paid != nil {
		r.Paid = *u.Paid
	}
	return r
}
