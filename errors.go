package rtkernel

import (
	"errors"
)

var (
	// ErrNilPort is returned by [New] if no [Port] was provided.
	ErrNilPort = errors.New(`rtkernel: nil port`)

	// ErrInvalidOption is returned (wrapped) by [New] if an [Option] was
	// given an out of range value.
	ErrInvalidOption = errors.New(`rtkernel: invalid option`)

	// ErrHalted is matched by [*HaltError], see [errors.Is].
	ErrHalted = errors.New(`rtkernel: kernel halted`)
)

// HaltError is the panic value raised when the kernel halts due to a
// programming error. The kernel must not be used after a halt.
type HaltError struct {
	// Reason is a short diagnostic, e.g. "recursive mutex lock".
	Reason string
}

// Error implements the error interface.
func (e *HaltError) Error() string {
	return `rtkernel: halted: ` + e.Reason
}

// Is allows errors.Is(err, ErrHalted).
func (e *HaltError) Is(target error) bool {
	return target == ErrHalted
}
