package validator

import (
	"errors"
	"strings"
	"testing"

	"roombook/pkg/logger"
	"roombook/pkg/model"
)

func TestRoomValidator_Validate(t *testing.T) {
	validator := NewRoomValidator(logger.Discard())

	tests := []struct {
		name      string
		room      *model.Room
		wantError bool
		wantField string
	}{
		{
			name:      "valid room",
			room:      &model.Room{RoomNumber: "101", Category: "deluxe", PricePerNight: 150},
			wantError: false,
		},
		{
			name:      "missing room number",
			room:      &model.Room{Category: "deluxe", PricePerNight: 150},
			wantError: true,
			wantField: "room_number",
		},
		{
			name:      "category too short",
			room:      &model.Room{RoomNumber: "101", Category: "x"},
			wantError: true,
			wantField: "category",
		},
		{
			name:      "negative price",
			room:      &model.Room{RoomNumber: "101", Category: "deluxe", PricePerNight: -10},
			wantError: true,
			wantField: "price_per_night",
		},
		{
			name:      "non ascii room number",
			room:      &model.Room{RoomNumber: "١٠١", Category: "deluxe"},
			wantError: true,
			wantField: "room_number",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.Validate(tt.room)
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

func TestRoomValidator_ValidateUpdate(t *testing.T) {
	validator := NewRoomValidator(logger.Discard())

	err := validator.ValidateUpdate(&model.RoomUpdate{})
	if err == nil || !strings.Contains(err.Error(), "at least one") {
		t.Errorf("expected empty update to be rejected, got %v", err)
	}

	price := -1.0
	if err := validator.ValidateUpdate(&model.RoomUpdate{PricePerNight: &price}); err == nil {
		t.Error("expected negative price to be rejected")
	}

	if err := validator.ValidateUpdate(&model.RoomUpdate{Category: "suite"}); err != nil {
		t.Errorf("expected category-only update to pass, got %v", err)
	}
}
