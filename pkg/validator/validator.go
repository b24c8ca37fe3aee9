package validator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var lrnPattern = regexp.MustCompile(`^\d{12}$`)

// IsLRN reports whether s is a 12-digit learner reference number.
func IsLRN(s string) bool {
	return lrnPattern.MatchString(s)
}

// Register adds the custom tags used by request DTOs to gin's validator.
func Register() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	return v.RegisterValidation("lrn", func(fl validator.FieldLevel) bool {
		return IsLRN(fl.Field().String())
	})
}

func FormatValidationError(err error) string {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		var messages []string
		for _, fieldError := range validationErrors {
			message := getFieldErrorMessage(fieldError)
			messages = append(messages, message)
		}
		return strings.Join(messages, "; ")
	}
	return err.Error()
}

func getFieldErrorMessage(fe validator.FieldError) string {
	field := getFieldName(fe.Field())

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "min":
		if fe.Type().String() == "string" {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Type().String() == "string" {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "eqfield":
		return fmt.Sprintf("%s does not match", field)
	case "lrn":
		return fmt.Sprintf("%s must be exactly 12 digits", field)
	case "datetime":
		return fmt.Sprintf("%s must use the format %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func getFieldName(field string) string {
	fieldNames := map[string]string{
		"Email":           "Email",
		"Password":        "Password",
		"ConfirmPassword": "Password confirmation",
		"NewPassword":     "New password",
		"LRN":             "LRN",
		"FirstName":       "First name",
		"LastName":        "Last name",
		"IncidentDate":    "Incident date",
		"OtherLocation":   "Other location",
		"AdminKey":        "Admin key",
	}

	if name, ok := fieldNames[field]; ok {
		return name
	}
	return field
}
