package draft

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSession is returned when an action needs an open draft dialog.
	ErrNoSession = errors.New("no open draft")
	// ErrActionDisabled is returned when a submit action is triggered
	// while its enablement rule does not hold.
	ErrActionDisabled = errors.New("action is not enabled")
	// ErrIllegalTransition is returned for actions not reachable from the
	// current dialog phase.
	ErrIllegalTransition = errors.New("illegal draft transition")
)

// PersistenceError wraps any rejection from the persistence gateway. It is
// the only error kind surfaced to the user; it is never retried and never
// keeps the dialog open.
type PersistenceError struct {
	Op  string // create, update, delete, fetch
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
