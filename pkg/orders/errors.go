package orders

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRequest means the cart was malformed or empty.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrEmptyOrder means no cart entry survived validation with a
	// positive subtotal.
	ErrEmptyOrder = errors.New("total price cannot be zero")
)

// PersistenceError wraps a storage failure. The transaction it happened in
// has been rolled back by the time the caller sees it.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
