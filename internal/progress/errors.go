package progress

import (
	"errors"
	"fmt"
)

var (
	// ErrProgressNotFound means no progress row exists for the requested
	// entity/student, i.e. the student was never initialized for the course.
	ErrProgressNotFound = errors.New("progress record not found")

	// ErrSequenceViolation means the entity's predecessor is not COMPLETE.
	ErrSequenceViolation = errors.New("sequence violation")

	// ErrEmptyTree rejects initialization input with no modules, sections
	// or items to walk.
	ErrEmptyTree = errors.New("module tree is empty")
)

// SequenceViolationError carries the offending entity pair.
type SequenceViolationError struct {
	EntityID      string
	PredecessorID string
}

func (e *SequenceViolationError) Error() string {
	return fmt.Sprintf("sequence violation: %s requires %s to be COMPLETE", e.EntityID, e.PredecessorID)
}

func (e *SequenceViolationError) Unwrap() error { return ErrSequenceViolation }
