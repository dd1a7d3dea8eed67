package weather

import (
	"errors"
	"fmt"
)

// SchemaValidationError means the backend answered but the answer broke the contract.
type SchemaValidationError struct {
	City string
	Err  error
}

func (e *SchemaValidationError) Error() string {
	return fmt.Sprintf("schema validation failed for city %q: %v", e.City, e.Err)
}

func (e *SchemaValidationError) Unwrap() error {
	return e.Err
}

// ExecutionError covers every other failure, e.g. the backend being unreachable.
type ExecutionError struct {
	City string
	Err  error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("weather query failed for city %q: %v", e.City, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// ErrorKind names the taxonomy bucket of err, for logs and telemetry.
func ErrorKind(err error) string {
	var validation *SchemaValidationError
	var execution *ExecutionError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &validation):
		return "SchemaValidationError"
	case errors.As(err, &execution):
		return "ExecutionError"
	}
	return "ExecutionError"
}
