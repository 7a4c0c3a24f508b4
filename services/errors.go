package services

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks bad input shape or range.
	ErrValidation = errors.New("validation error")
	// ErrInvalidTier marks an hour count that matches no package tier.
	ErrInvalidTier = errors.New("unsupported hour tier")
	// ErrInvalidTransition marks an operation attempted from the wrong status.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrScheduleConflict marks a lesson slot that overlaps the instructor's agenda.
	ErrScheduleConflict = errors.New("schedule conflict")
	ErrNotFound         = errors.New("not found")
	// ErrUnknownInstructor is returned when a package names a missing instructor.
	ErrUnknownInstructor = errors.New("unknown instructor")
	// ErrUnauthorizedActor marks the wrong party attempting an operation.
	ErrUnauthorizedActor = errors.New("actor not allowed")
	ErrReviewNotAllowed  = errors.New("review not allowed")
	// ErrPersistence wraps every failure of the backing store.
	ErrPersistence = errors.New("persistence failure")

	ErrAlreadyExists      = errors.New("already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrPaymentProvider marks a failure reported by the external processor.
	ErrPaymentProvider = errors.New("payment provider failure")
)

var messages = []struct {
	err error
	msg string
}{
	{ErrInvalidTier, "Choose one of the available hour packages."},
	{ErrInvalidTransition, "This action is not available in the current status."},
	{ErrScheduleConflict, "The instructor already has a lesson at this time. Pick another slot."},
	{ErrUnknownInstructor, "Instructor not found."},
	{ErrNotFound, "Resource not found."},
	{ErrUnauthorizedActor, "You are not allowed to perform this action."},
	{ErrReviewNotAllowed, "This package cannot be reviewed."},
	{ErrAlreadyExists, "Resource already exists."},
	{ErrInvalidCredentials, "Invalid email or password."},
	{ErrPaymentProvider, "The payment provider is unavailable, please try again."},
	{ErrPersistence, "Temporary failure, please try again."},
}

// Message returns the short text shown to users for err. Validation errors
// carry their own detail; anything unrecognised gets a generic message.
func Message(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrValidation) {
		return err.Error()
	}
	for _, m := range messages {
		if errors.Is(err, m.err) {
			return m.msg
		}
	}
	return "Something went wrong."
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// storeErr tags err as a persistence failure unless it already belongs to
// the domain taxonomy.
func storeErr(err error) error {
	if err == nil {
		return nil
	}
	for _, known := range []error{ErrNotFound, ErrAlreadyExists, ErrPersistence} {
		if errors.Is(err, known) {
			return err
		}
	}
	return fmt.Errorf("%w: %w", ErrPersistence, err)
}
