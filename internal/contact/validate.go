package contact

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	mustRegister(v, "present", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	mustRegister(v, "phonedigits", func(fl validator.FieldLevel) bool {
		return IsValidPhone(fl.Field().String())
	})
	mustRegister(v, "looseemail", func(fl validator.FieldLevel) bool {
		return IsValidEmail(fl.Field().String())
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

// fieldErrors maps struct fields to the sentinel reported for them.
var fieldErrors = map[string]error{
	"Name":  ErrNameRequired,
	"Phone": ErrInvalidPhone,
	"Email": ErrInvalidEmail,
}

// Validate checks name, phone and email in that order and returns the
// sentinel for the first field that fails.
func Validate(c Contact) error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		if sentinel, ok := fieldErrors[verrs[0].StructField()]; ok {
			return sentinel
		}
	}
	return errors.Join(ErrValidation, err)
}

// ValidatePhone returns ErrInvalidPhone unless phone has enough digits.
func ValidatePhone(phone string) error {
	if err := validate.Var(phone, "phonedigits"); err != nil {
		return ErrInvalidPhone
	}
	return nil
}

// ValidateEmail returns ErrInvalidEmail for a non-blank malformed address.
func ValidateEmail(email string) error {
	if err := validate.Var(email, "looseemail"); err != nil {
		return ErrInvalidEmail
	}
	return nil
}
