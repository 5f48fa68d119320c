package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/iliyamo/travel-booking/internal/i18n"
	"github.com/iliyamo/travel-booking/internal/model"
)

// Validator adapts go-playground/validator to echo.Validator.
type Validator struct{ v *validator.Validate }

// NewValidator registers the domain tags: lang (supported language code),
// role, service_type, booking_status and payment_status.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("lang", func(fl validator.FieldLevel) bool {
		_, ok := i18n.Parse(fl.Field().String())
		return ok
	})
	_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		_, ok := model.ParseRole(fl.Field().String())
		return ok
	})
	_ = v.RegisterValidation("service_type", func(fl validator.FieldLevel) bool {
		_, ok := model.ParseServiceType(fl.Field().String())
		return ok
	})
	_ = v.RegisterValidation("booking_status", func(fl validator.FieldLevel) bool {
		_, ok := model.ParseBookingStatus(fl.Field().String())
		return ok
	})
	_ = v.RegisterValidation("payment_status", func(fl validator.FieldLevel) bool {
		_, ok := model.ParsePaymentStatus(fl.Field().String())
		return ok
	})
	return &Validator{v: v}
}

// Validate implements echo.Validator. Failures come back as one readable
// message wrapping service.ErrValidation.
func (cv *Validator) Validate(i any) error {
	err := cv.v.Struct(i)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%v: %w", err, errValidation)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: %s=%s", field, fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s: %s", field, fe.Tag()))
		}
	}
	return fmt.Errorf("%s: %w", strings.Join(msgs, "; "), errValidation)
}
