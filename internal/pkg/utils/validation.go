package utils

import (
	"hospital-service/internal/pkg/constvars"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(jsonFieldName)
	validate.RegisterValidation("clock_time", validateClockTime)
	validate.RegisterValidation("payment_method", validatePaymentMethod)
	validate.RegisterValidation("appointment_status", validateAppointmentStatus)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return field.Name
	}
	return name
}

func validateClockTime(fl validator.FieldLevel) bool {
	_, err := ParseClock(fl.Field().String())
	return err == nil
}

func validatePaymentMethod(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case constvars.PaymentMethodMpesa,
		constvars.PaymentMethodCash,
		constvars.PaymentMethodCard,
		constvars.PaymentMethodInsurance:
		return true
	}
	return false
}

func validateAppointmentStatus(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case constvars.AppointmentStatusPendingPayment,
		constvars.AppointmentStatusScheduled,
		constvars.AppointmentStatusCompleted,
		constvars.AppointmentStatusCancelled:
		return true
	}
	return false
}
