package journey

import (
	"errors"
	"fmt"
)

// ErrNotFoundOrUnauthorized is returned by Submit when no pending task with
// the given id belongs to the learner. It does not say which of the two
// conditions failed.
var ErrNotFoundOrUnauthorized = errors.New("task not found or not pending for this learner")

// errNonContiguous marks a schedule whose task numbers are not 1..N.
var errNonContiguous = errors.New("task numbers are not contiguous")

// ValidationError reports a request rejected before any store access.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// PriorTaskIncompleteError means the learner still has a pending task.
type PriorTaskIncompleteError struct {
	TaskNumber int
	TaskID     int64
}

func (e *PriorTaskIncompleteError) Error() string {
	return fmt.Sprintf("task %d is still pending; submit it before requesting the next one", e.TaskNumber)
}

// JourneyCompleteError means every task of the journey has been completed.
type JourneyCompleteError struct {
	Total int
}

func (e *JourneyCompleteError) Error() string {
	return fmt.Sprintf("all %d tasks completed", e.Total)
}

// SchedulingError wraps a failure to read, materialize or release the
// schedule.
type SchedulingError struct {
	Op  string
	Err error
}

func (e *SchedulingError) Error() string {
	return fmt.Sprintf("scheduling failed (%s): %v", e.Op, e.Err)
}

func (e *SchedulingError) Unwrap() error { return e.Err }
