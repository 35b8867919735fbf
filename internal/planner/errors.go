package planner

import (
	"errors"
	"fmt"

	"github.com/waymark-dev/waymark/models"
)

// ValidationError reports caller-supplied input that violates a field
// constraint. Correct the input and retry; the store was not touched.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError reports a missing plan or step.
type NotFoundError struct {
	Kind string // "plan" or "step"
	ID   int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

// ConflictError reports a claim/release/complete precondition that failed
// because of the step's current state, including races with another
// actor. Status carries the state actually observed so the caller can
// distinguish "claimed by someone else" from "already done".
type ConflictError struct {
	StepID int64
	Status models.StepStatus
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("step %d is %s", e.StepID, e.Status)
}

// StorageError wraps a persistence failure unrelated to business rules.
// The enclosing transaction has been rolled back; no partial state is
// visible.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsConflict reports whether err is a ConflictError, returning it.
func IsConflict(err error) (*ConflictError, bool) {
	var ce *ConflictError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
