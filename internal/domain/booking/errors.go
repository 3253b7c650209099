package booking

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/Kilat-Pet-Delivery/service-rental/internal/platform/domain"
)

// ValidationError reports malformed input and names the offending field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}
func (e *ValidationError) Kind() domain.ErrorKind { return domain.KindValidation }

// FieldName returns the request field that failed validation.
func (e *ValidationError) FieldName() string { return e.Field }

func newValidationError(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Message: msg}
}

// VehicleUnavailableError is returned when booking a vehicle that is not
// accepting requests.
type VehicleUnavailableError struct {
	VehicleID uuid.UUID
}

func (e *VehicleUnavailableError) Error() string {
	return fmt.Sprintf("vehicle %s is not available", e.VehicleID)
}
func (e *VehicleUnavailableError) Kind() domain.ErrorKind { return domain.KindVehicleUnavailable }

// IllegalTransitionError is returned when an action is not defined for the
// booking's current status.
type IllegalTransitionError struct {
	From   Status
	Action Action
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("cannot %s a booking that is %s", e.Action, e.From)
}
func (e *IllegalTransitionError) Kind() domain.ErrorKind { return domain.KindIllegalTransition }

// UnauthorizedActionError is returned when the actor may not perform the action.
type UnauthorizedActionError struct {
	Action Action
	Role   Role
	Reason string
}

func (e *UnauthorizedActionError) Error() string {
	return fmt.Sprintf("%s may not %s: %s", e.Role, e.Action, e.Reason)
}
func (e *UnauthorizedActionError) Kind() domain.ErrorKind { return domain.KindUnauthorizedAction }

// NotFoundError is returned when no booking has the given id.
type NotFoundError struct {
	ID uuid.UUID
}

func (e *NotFoundError) Error() string          { return fmt.Sprintf("booking not found: %s", e.ID) }
func (e *NotFoundError) Kind() domain.ErrorKind { return domain.KindNotFound }

// IllegalStateError is returned when a non-transition operation is attempted
// in a status that does not allow it.
type IllegalStateError struct {
	Status    Status
	Operation string
}

func (e *IllegalStateError) Error() string {
	return fmt.Sprintf("cannot %s while booking is %s", e.Operation, e.Status)
}
func (e *IllegalStateError) Kind() domain.ErrorKind { return domain.KindIllegalState }

// AlreadyRatedError is returned on a second feedback submission.
type AlreadyRatedError struct {
	ID uuid.UUID
}

func (e *AlreadyRatedError) Error() string {
	return fmt.Sprintf("booking %s already has feedback", e.ID)
}
func (e *AlreadyRatedError) Kind() domain.ErrorKind { return domain.KindAlreadyRated }

// ConcurrentModificationError is returned when another mutation of the same
// booking is in flight. Callers should reload and retry.
type ConcurrentModificationError struct {
	ID uuid.UUID
}

func (e *ConcurrentModificationError) Error() string {
	return fmt.Sprintf("booking %s is being modified concurrently", e.ID)
}
func (e *ConcurrentModificationError) Kind() domain.ErrorKind {
	return domain.KindConcurrentModification
}

// DuplicateIDError is returned when inserting a booking whose id already exists.
type DuplicateIDError struct {
	ID uuid.UUID
}

func (e *DuplicateIDError) Error() string          { return fmt.Sprintf("booking %s already exists", e.ID) }
func (e *DuplicateIDError) Kind() domain.ErrorKind { return domain.KindDuplicateID }

// InvalidRateError is returned by the pricing calculator for a rate that is not
// positive or too large to price.
type InvalidRateError struct {
	RateCents int64
}

func (e *InvalidRateError) Error() string {
	return fmt.Sprintf("hourly rate must be between 1 and %d cents, got %d", MaxRateCents, e.RateCents)
}
func (e *InvalidRateError) Kind() domain.ErrorKind { return domain.KindValidation }

// InvalidDurationError is returned by the pricing calculator for a duration
// outside the bookable range.
type InvalidDurationError struct {
	Hours int
}

func (e *InvalidDurationError) Error() string {
	return fmt.Sprintf("duration must be between %d and %d hours, got %d", MinDurationHours, MaxDurationHours, e.Hours)
}
func (e *InvalidDurationError) Kind() domain.ErrorKind { return domain.KindValidation }
