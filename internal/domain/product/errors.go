package product

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates an id-targeted operation matched no row.
	ErrNotFound = errors.New("product not found")
	// ErrConstraintViolation matches any *ConstraintViolationError.
	ErrConstraintViolation = errors.New("product constraint violation")
	// ErrConnectionFailure matches any *ConnectionError.
	ErrConnectionFailure = errors.New("product store unavailable")
)

// ConstraintViolationError reports a write rejected by the store because of a
// type, null, check or uniqueness constraint.
type ConstraintViolationError struct {
	Code       string
	Constraint string
	Table      string
	Column     string
	Message    string
	Err        error
}

func (e *ConstraintViolationError) Error() string {
	if e.Constraint != "" {
		return fmt.Sprintf("constraint violation (%s) on %s: %s", e.Code, e.Constraint, e.Message)
	}
	return fmt.Sprintf("constraint violation (%s): %s", e.Code, e.Message)
}

func (e *ConstraintViolationError) Unwrap() error { return e.Err }

func (e *ConstraintViolationError) Is(target error) bool {
	return target == ErrConstraintViolation
}

// Unique reports whether the violation is a duplicate key.
func (e *ConstraintViolationError) Unique() bool {
	return e.Code == "23505"
}

// ConnectionError reports that the store was unreachable or the connection
// dropped mid-operation.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return "connection failure: " + e.Err.Error()
}

func (e *ConnectionError) Unwrap() error { return e.Err }

func (e *ConnectionError) Is(target error) bool {
	return target == ErrConnectionFailure
}
