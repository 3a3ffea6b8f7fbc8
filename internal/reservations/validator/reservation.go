package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"roombook/pkg/interval"
	"roombook/pkg/logger"
	"roombook/pkg/model"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

var errDateOrder = ValidationErrors{
	ValidationError{
		Field:   "check_out",
		Message: "check_out must be after check_in",
	},
}

type ReservationValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewReservationValidator(log *logger.Logger) *ReservationValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	log.Info("Reservation validator initialized successfully")

	return &ReservationValidator{
		validate: v,
		logger:   log,
	}
}

// Validate checks a complete reservation, including that it spans at least one night.
func (v *ReservationValidator) Validate(reservation *model.Reservation) error {
	if err := v.check(reservation); err != nil {
		return err
	}

	if _, err := interval.New(reservation.CheckIn, reservation.CheckOut); err != nil {
		return errDateOrder
	}

	return nil
}

// ValidateUpdate checks the patch in isolation. The merged reservation is
// validated again by the booking engine.
func (v *ReservationValidator) ValidateUpdate(update *model.ReservationUpdate) error {
	if update.IsEmpty() {
		return ValidationErrors{
			ValidationError{
				Field:   "body",
				Message: "at least one field must be provided",
			},
		}
	}

	if err := v.check(update); err != nil {
		return err
	}

	if update.CheckIn != nil && update.CheckOut != nil {
		if _, err := interval.New(*update.CheckIn, *update.CheckOut); err != nil {
			return errDateOrder
		}
	}

	return nil
}

func (v *ReservationValidator) check(s any) error {
	if err := v.validate.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *ReservationValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s characters", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "gtfield":
			message = "check_out must be after check_in"
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
