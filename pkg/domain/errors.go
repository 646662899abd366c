package domain

import (
	"errors"
	"fmt"
)

// ErrSurfaceNotFound is returned when an operation targets a surface that was
// never started or has already been stopped.
var ErrSurfaceNotFound = errors.New("surface not found")

// ErrSurfaceAlreadyStarted is returned when StartSurface is called for an
// identifier that is still active.
var ErrSurfaceAlreadyStarted = errors.New("surface already started")

// ErrModuleUnknown is returned when a module name does not resolve against
// the configured catalog.
var ErrModuleUnknown = errors.New("module unknown")

// ErrModuleMismatch is returned when a props replacement names a different
// module than the surface was started with.
var ErrModuleMismatch = errors.New("module mismatch")

// ErrInstanceClosed is returned when a lifecycle call carries a nil or
// closed execution-context instance.
var ErrInstanceClosed = errors.New("execution context instance closed")

// Operation names used in errors, events and metrics labels.
const (
	OpStart    = "start"
	OpSetProps = "set_props"
	OpStop     = "stop"
)

// InvalidStateError reports a lifecycle precondition violation: an operation
// issued against a surface whose registry state does not permit it. Callers
// distinguish the cause via errors.Is against the wrapped sentinel.
type InvalidStateError struct {
	ID  SurfaceID
	Op  string
	Err error
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s surface %s: %v", e.Op, e.ID, e.Err)
}

func (e *InvalidStateError) Unwrap() error {
	return e.Err
}

// NewInvalidState builds an InvalidStateError around one of the sentinel
// violations above.
func NewInvalidState(op string, id SurfaceID, err error) *InvalidStateError {
	return &InvalidStateError{ID: id, Op: op, Err: err}
}
