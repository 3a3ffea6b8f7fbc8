package validator

import (
	"errors"
	"testing"
	"time"

	"roombook/pkg/logger"
	"roombook/pkg/model"
)

const roomID = "507f1f77bcf86cd799439011"

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestReservationValidator_Validate(t *testing.T) {
	validator := NewReservationValidator(logger.Discard())

	tests := []struct {
		name      string
		res       *model.Reservation
		wantError bool
		wantField string
	}{
		{
			name:      "valid reservation",
			res:       &model.Reservation{CustomerName: "Ada Lovelace", RoomID: roomID, CheckIn: date(2024, 1, 1), CheckOut: date(2024, 1, 5)},
			wantError: false,
		},
		{
			name:      "zero nights",
			res:       &model.Reservation{CustomerName: "Ada Lovelace", RoomID: roomID, CheckIn: date(2024, 1, 1), CheckOut: date(2024, 1, 1)},
			wantError: true,
			wantField: "check_out",
		},
		{
			name:      "inverted dates",
			res:       &model.Reservation{CustomerName: "Ada Lovelace", RoomID: roomID, CheckIn: date(2024, 1, 5), CheckOut: date(2024, 1, 1)},
			wantError: true,
			wantField: "check_out",
		},
		{
			name:      "bad room id",
			res:       &model.Reservation{CustomerName: "Ada Lovelace", RoomID: "101", CheckIn: date(2024, 1, 1), CheckOut: date(2024, 1, 5)},
			wantError: true,
			wantField: "room_id",
		},
		{
			name:      "missing customer",
			res:       &model.Reservation{RoomID: roomID, CheckIn: date(2024, 1, 1), CheckOut: date(2024, 1, 5)},
			wantError: true,
			wantField: "customer_name",
		},
		{
			name: "same day different hours",
			res: &model.Reservation{
				CustomerName: "Ada Lovelace",
				RoomID:       roomID,
				CheckIn:      time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
				CheckOut:     time.Date(2024, 1, 1, 18, 0, 0, 0, time.UTC),
			},
			wantError: true,
			wantField: "check_out",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.Validate(tt.res)
			if (err != nil) != tt.wantError {
				t.Fatalf("Validate() error = %v, wantError %v", err, tt.wantError)
			}
			if err == nil {
				return
			}
			var verrs ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("expected ValidationErrors, got %T", err)
			}
			if verrs[0].Field != tt.wantField {
				t.Errorf("expected field %q, got %q", tt.wantField, verrs[0].Field)
			}
		})
	}
}

func TestReservationValidator_ValidateUpdate(t *testing.T) {
	validator := NewReservationValidator(logger.Discard())

	if err := validator.ValidateUpdate(&model.ReservationUpdate{}); err == nil {
		t.Error("expected empty update to be rejected")
	}

	in, out := date(2024, 1, 5), date(2024, 1, 2)
	if err := validator.ValidateUpdate(&model.ReservationUpdate{CheckIn: &in, CheckOut: &out}); err == nil {
		t.Error("expected inverted dates to be rejected")
	}

	// a lone check_out is validated against the stored check_in by the engine
	if err := validator.ValidateUpdate(&model.ReservationUpdate{CheckOut: &out}); err != nil {
		t.Errorf("expected lone check_out to pass, got %v", err)
	}

	if err := validator.ValidateUpdate(&model.ReservationUpdate{RoomID: "nope"}); err == nil {
		t.Error("expected invalid room id to be rejected")
	}
}
