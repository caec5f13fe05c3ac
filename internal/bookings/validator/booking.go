package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	bookingserrors "sharedcal/internal/bookings/errors"
	"sharedcal/pkg/logger"
	"sharedcal/pkg/model"

	"github.com/go-playground/validator/v10"
)

const (
	tagISODate = "isodate"
	tagClock   = "clock"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

func (v ValidationError) Unwrap() error {
	return v.Err
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

func (v ValidationErrors) Unwrap() []error {
	errs := make([]error, len(v))
	for i, err := range v {
		errs[i] = err
	}
	return errs
}

// Details renders the errors as a field to message map for API responses.
func (v ValidationErrors) Details() map[string]any {
	details := make(map[string]any, len(v))
	for _, err := range v {
		details[err.Field] = err.Message
	}
	return details
}

type BookingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	if err := v.RegisterValidation(tagISODate, validateISODate); err != nil {
		log.Fatal("Failed to register 'isodate' validator", "error", err)
	}
	if err := v.RegisterValidation(tagClock, validateClock); err != nil {
		log.Fatal("Failed to register 'clock' validator", "error", err)
	}

	log.Info("Booking validator initialized successfully")

	return &BookingValidator{
		validate: v,
		logger:   log,
	}
}

func validateISODate(fl validator.FieldLevel) bool {
	_, err := model.ParseDate(fl.Field().String())
	return err == nil
}

func validateClock(fl validator.FieldLevel) bool {
	_, err := model.ParseClock(fl.Field().String())
	return err == nil
}

// Validate checks req and returns the booking it describes, without id or
// status. The holder name must already be resolved into req.Name.
func (v *BookingValidator) Validate(req *model.BookingRequest) (model.Booking, error) {
	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return model.Booking{}, v.translateValidationErrors(validationErrs)
		}
		return model.Booking{}, err
	}

	date, err := model.ParseDate(req.Date)
	if err != nil {
		return model.Booking{}, ValidationErrors{{Field: "date", Message: err.Error()}}
	}
	start, err := model.ParseClock(req.Start)
	if err != nil {
		return model.Booking{}, ValidationErrors{{Field: "start", Message: err.Error()}}
	}
	end, err := model.ParseClock(req.End)
	if err != nil {
		return model.Booking{}, ValidationErrors{{Field: "end", Message: err.Error()}}
	}

	if !end.After(start) {
		return model.Booking{}, ValidationErrors{
			ValidationError{
				Field:   "end",
				Message: "end must be after start",
				Err:     bookingserrors.ErrInvalidTimeRange,
			},
		}
	}

	return model.Booking{
		Name:    req.Name,
		Purpose: req.Purpose,
		Date:    date,
		Start:   start,
		End:     end,
	}, nil
}

func (v *BookingValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param())
		case tagISODate:
			message = fmt.Sprintf("%s must be a date in YYYY-MM-DD format", err.Field())
		case tagClock:
			message = fmt.Sprintf("%s must be a time in HH:MM or HH:MM:SS format", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
