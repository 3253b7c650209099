package domain

import "fmt"

// ErrorKind classifies an error so transport layers can render a precise message.
type ErrorKind string

const (
	KindValidation             ErrorKind = "VALIDATION"
	KindNotFound               ErrorKind = "NOT_FOUND"
	KindConflict               ErrorKind = "CONFLICT"
	KindForbidden              ErrorKind = "FORBIDDEN"
	KindVehicleUnavailable     ErrorKind = "VEHICLE_UNAVAILABLE"
	KindIllegalTransition      ErrorKind = "ILLEGAL_TRANSITION"
	KindUnauthorizedAction     ErrorKind = "UNAUTHORIZED_ACTION"
	KindIllegalState           ErrorKind = "ILLEGAL_STATE"
	KindAlreadyRated           ErrorKind = "ALREADY_RATED"
	KindConcurrentModification ErrorKind = "CONCURRENT_MODIFICATION"
	KindDuplicateID            ErrorKind = "DUPLICATE_ID"
)

// Kinded is implemented by every error the service surfaces to callers.
type Kinded interface {
	error
	Kind() ErrorKind
}

// AppError is a generic kinded error for cases that carry no extra context.
type AppError struct {
	kind    ErrorKind
	Message string
}

func (e *AppError) Error() string   { return e.Message }
func (e *AppError) Kind() ErrorKind { return e.kind }

// NewValidationError returns a validation error with the given message.
func NewValidationError(msg string) *AppError {
	return &AppError{kind: KindValidation, Message: msg}
}

// NewNotFoundError returns a not-found error for the named entity.
func NewNotFoundError(entity, id string) *AppError {
	return &AppError{kind: KindNotFound, Message: fmt.Sprintf("%s not found: %s", entity, id)}
}

// NewConflictError returns a conflict error, used for optimistic locking failures.
func NewConflictError(msg string) *AppError {
	return &AppError{kind: KindConflict, Message: msg}
}

// NewForbiddenError returns a forbidden error.
func NewForbiddenError(msg string) *AppError {
	return &AppError{kind: KindForbidden, Message: msg}
}
