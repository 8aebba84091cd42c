package testdrives

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var phoneRegex = regexp.MustCompile(`^\+?[0-9][0-9 ()\-]{5,20}$`)

// FieldError ошибка валидации одного поля
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// FieldErrors набор ошибок валидации
type FieldErrors []FieldError

func (e FieldErrors) Error() string {
	messages := make([]string, 0, len(e))
	for _, fe := range e {
		messages = append(messages, fe.Error())
	}
	return strings.Join(messages, "; ")
}

// Validator проверяет входные модели сервиса по тегам validate
type Validator struct {
	validate *validator.Validate
}

// NewValidator создает валидатор с правилом phone и именами полей из json-тегов
func NewValidator() *Validator {
	v := validator.New()

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	// Ошибка возможна только при пустом имени тега
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phoneRegex.MatchString(fl.Field().String())
	})

	return &Validator{validate: v}
}

// Validate возвращает FieldErrors, завёрнутые в ErrValidation
func (v *Validator) Validate(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return fmt.Errorf("%w: %s", ErrValidation, translate(validationErrs).Error())
}

func translate(errs validator.ValidationErrors) FieldErrors {
	out := make(FieldErrors, 0, len(errs))
	for _, err := range errs {
		var message string
		switch err.Tag() {
		case "required":
			message = "is required"
		case "max":
			message = fmt.Sprintf("must be at most %s characters", err.Param())
		case "gt":
			message = fmt.Sprintf("must be greater than %s", err.Param())
		case "email":
			message = "must be a valid email"
		case "phone":
			message = "must be a valid phone number"
		default:
			message = fmt.Sprintf("failed on %s", err.Tag())
		}
		out = append(out, FieldError{Field: err.Field(), Message: message})
	}
	return out
}
