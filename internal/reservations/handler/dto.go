package handler

import (
	"time"

	apperrors "roombook/pkg/errors"
	"roombook/pkg/interval"
	"roombook/pkg/model"
)

// Dates travel as YYYY-MM-DD strings in both directions.

type createReservationRequest struct {
	CustomerName string `json:"customer_name"`
	RoomID       string `json:"room_id"`
	CheckIn      string `json:"check_in"`
	CheckOut     string `json:"check_out"`
}

func (req createReservationRequest) toModel() (*model.Reservation, error) {
	checkIn, err := parseField("check_in", req.CheckIn)
	if err != nil {
		return nil, err
	}
	checkOut, err := parseField("check_out", req.CheckOut)
	if err != nil {
		return nil, err
	}
	return &model.Reservation{
		CustomerName: req.CustomerName,
		RoomID:       req.RoomID,
		CheckIn:      checkIn,
		CheckOut:     checkOut,
	}, nil
}

type updateReservationRequest struct {
	CustomerName string  `json:"customer_name,omitempty"`
	RoomID       string  `json:"room_id,omitempty"`
	CheckIn      *string `json:"check_in,omitempty"`
	CheckOut     *string `json:"check_out,omitempty"`
	Paid         *bool   `json:"paid,omitempty"`
}

func (req updateReservationRequest) toModel() (*model.ReservationUpdate, error) {
	update := &model.ReservationUpdate{
		CustomerName: req.CustomerName,
		RoomID:       req.RoomID,
		Paid:         req.Paid,
	}
	if req.CheckIn != nil {
		d, err := parseField("check_in", *req.CheckIn)
		if err != nil {
			return nil, err
		}
		update.CheckIn = &d
	}
	if req.CheckOut != nil {
		d, err := parseField("check_out", *req.CheckOut)
		if err != nil {
			return nil, err
		}
		update.CheckOut = &d
	}
	return update, nil
}

func parseField(field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, apperrors.Validation(field+" is required", map[string]any{"field": field})
	}
	d, err := interval.ParseDate(value)
	if err != nil {
		return time.Time{}, apperrors.Validation(field+" must be a date in "+interval.DateLayout+" format", map[string]any{
			"field": field,
			"value": value,
		})
	}
	return d, nil
}

type reservationResponse struct {
	ID           string    `json:"id"`
	CustomerName string    `json:"customer_name"`
	RoomID       string    `json:"room_id"`
	CheckIn      string    `json:"check_in"`
	CheckOut     string    `json:"check_out"`
	Nights       int       `json:"nights"`
	Paid         bool      `json:"paid"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at,omitempty"`
}

func toResponse(r *model.Reservation) reservationResponse {
	return reservationResponse{
		ID:           r.ID,
		CustomerName: r.CustomerName,
		RoomID:       r.RoomID,
		CheckIn:      r.CheckIn.Format(interval.DateLayout),
		CheckOut:     r.CheckOut.Format(interval.DateLayout),
		Nights:       interval.Range{Start: r.CheckIn, End: r.CheckOut}.Nights(),
		Paid:         r.Paid,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func toResponses(list []*model.Reservation) []reservationResponse {
	out := make([]reservationResponse, 0, len(list))
	for _, r := range list {
		out = append(out, toResponse(r))
	}
	return out
}

type countResponse struct {
	Count int64 `json:"count"`
}
