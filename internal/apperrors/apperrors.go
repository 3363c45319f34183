package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("resource not found")
	ErrInvariantViolation = errors.New("data invariant violated")

	// ErrConcurrentWriteLost means an optimistic update exhausted its retry
	// budget because the row kept changing underneath it. Transient.
	ErrConcurrentWriteLost = errors.New("concurrent write lost after retries")

	// ErrUnrepairableConflict means source data contradicts itself and no
	// automatic repair is safe. Manual resolution required.
	ErrUnrepairableConflict = errors.New("unrepairable conflict")

	ErrStoreUnavailable = errors.New("store unavailable")

	ErrInvalidRequest = errors.New("invalid request body")
	ErrValidation     = errors.New("validation failed")
)

// ActiveAssignmentInvariantError reports more than one assignment row
// holding the active status for a single service request. Writers must
// never allow this; the resolver detects and surfaces it instead of
// silently picking a row.
type ActiveAssignmentInvariantError struct {
	RequestID   int64
	ActiveCount int
}

func (e *ActiveAssignmentInvariantError) Error() string {
	return fmt.Sprintf("request %d has %d active assignments, expected at most one", e.RequestID, e.ActiveCount)
}
func (e *ActiveAssignmentInvariantError) Is(target error) bool { return target == ErrInvariantViolation }

// PhotoConflictError reports a driver whose stored photo reference and
// uploaded candidate files disagree. Neither side can be trusted over the
// other, so no write is performed.
type PhotoConflictError struct {
	DriverID     int64
	StoredRef    string
	CandidateRef string
}

func (e *PhotoConflictError) Error() string {
	return fmt.Sprintf("driver %d photo reference '%s' disagrees with uploaded candidate '%s'", e.DriverID, e.StoredRef, e.CandidateRef)
}
func (e *PhotoConflictError) Is(target error) bool { return target == ErrUnrepairableConflict }
