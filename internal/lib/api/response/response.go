package response

import (
	"errors"
	"fmt"
	"github.com/go-playground/validator/v10"
)

type Response struct {
	Status string            `json:"status"`
	Error  string            `json:"error,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

const (
	StatusOK    = "OK"
	StatusError = "Error"
)

func OK() Response {
	return Response{
		Status: StatusOK,
	}
}

func Error(msg string) Response {
	return Response{
		Status: StatusError,
		Error:  msg,
	}
}

// Invalid reports field level validation messages.
func Invalid(fields map[string]string) Response {
	return Response{
		Status: StatusError,
		Error:  "validation failed",
		Fields: fields,
	}
}

// ValidationError converts validator errors of a request struct into field messages
// keyed by the json name of the field.
func ValidationError(err error) Response {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return Error("invalid request")
	}

	return Invalid(FieldMessages(errs))
}

func FieldMessages(errs validator.ValidationErrors) map[string]string {
	fields := make(map[string]string, len(errs))

	for _, err := range errs {
		field := err.Field()

		switch err.ActualTag() {
		case "required":
			fields[field] = fmt.Sprintf("field %s is a required field", field)
		case "max":
			fields[field] = fmt.Sprintf("field %s must be at most %s characters", field, err.Param())
		case "min":
			fields[field] = fmt.Sprintf("field %s must be at least %s characters", field, err.Param())
		case "url":
			fields[field] = fmt.Sprintf("field %s is not a valid URL", field)
		default:
			fields[field] = fmt.Sprintf("field %s is not valid", field)
		}
	}

	return fields
}
