package filtered

import (
	"errors"
	"fmt"

	"github.com/erikrandall/csla/binding"
)

var (
	// ErrUnsupported matches every *UnsupportedError under errors.Is.
	ErrUnsupported = errors.New("filtered: operation not supported by source")

	// ErrIndexOutOfRange is returned for a view position outside [0, Len()).
	// It is the same value as binding.ErrIndexOutOfRange so that source and
	// view failures match alike.
	ErrIndexOutOfRange = binding.ErrIndexOutOfRange

	// ErrNoPendingItem is returned by CancelNewBlank when no element created
	// through AddNewBlank is pending.
	ErrNoPendingItem = errors.New("filtered: no pending new item")
)

// UnsupportedError reports an operation the source lacks the capability for.
type UnsupportedError struct {
	// Op names the requested operation ("find", "sort", "edit", ...).
	Op string
}

// Error implements the error interface.
func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("filtered: %s not supported by source", e.Op)
}

// Is makes errors.Is(err, ErrUnsupported) true.
func (e *UnsupportedError) Is(target error) bool {
	return target == ErrUnsupported
}

// InvariantError is an internal consistency fault of the view index: an
// entry pointing outside the source, a duplicate entry, or a repair with no
// active filter. It indicates a programming-contract violation, usually a
// source mutated without announcing it.
type InvariantError struct {
	Op     string
	Detail string
}

// Error implements the error interface.
func (e *InvariantError) Error() string {
	return fmt.Sprintf("filtered: invariant violated in %s: %s", e.Op, e.Detail)
}

// IsUnsupported reports whether err is an *UnsupportedError.
// Uses errors.As to handle wrapped errors.
func IsUnsupported(err error) bool {
	var ue *UnsupportedError
	return errors.As(err, &ue)
}

// IsInvariant reports whether err is an *InvariantError.
func IsInvariant(err error) bool {
	var ie *InvariantError
	return errors.As(err, &ie)
}

func unsupported(op string) error {
	return &UnsupportedError{Op: op}
}
