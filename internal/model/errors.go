package model

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput matches every InvalidInputError.
	ErrInvalidInput = errors.New("invalid input")
	// ErrBatchLimitExceeded matches every BatchLimitExceededError.
	ErrBatchLimitExceeded = errors.New("batch limit exceeded")
	// ErrNotFound is returned when a record id does not exist for the owner.
	ErrNotFound = errors.New("record not found")
)

// InvalidInputError reports a caller-supplied value that violates a precondition.
// Nothing is written when it is returned.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	if e.Field == "" {
		return "invalid input: " + e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrInvalidInput) hold.
func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}

// InvalidRange builds the error returned for a start date after an end date.
func InvalidRange(start, end string) error {
	return &InvalidInputError{Field: "range", Reason: fmt.Sprintf("start %s is after end %s", start, end)}
}

// BatchLimitExceededError reports a write batch larger than the store accepts.
// It is returned before anything is written.
type BatchLimitExceededError struct {
	Requested int
	Limit     int
}

func (e *BatchLimitExceededError) Error() string {
	return fmt.Sprintf("batch of %d operations exceeds limit of %d", e.Requested, e.Limit)
}

// Is makes errors.Is(err, ErrBatchLimitExceeded) hold.
func (e *BatchLimitExceededError) Is(target error) bool {
	return target == ErrBatchLimitExceeded
}

// UnparsableDateError is returned by ParseDate. Aggregations treat it as
// "matches no period" and skip the record.
type UnparsableDateError struct {
	Value string
}

func (e *UnparsableDateError) Error() string {
	return fmt.Sprintf("unparsable date %q", e.Value)
}
