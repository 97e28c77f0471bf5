package hostport

import (
	"errors"
)

var (
	// ErrInvalidOption is wrapped by errors returned for invalid options.
	ErrInvalidOption = errors.New(`hostport: invalid option`)

	// ErrClosed is returned by operations on a closed port.
	ErrClosed = errors.New(`hostport: closed`)

	// ErrStarted is returned if Start is called more than once.
	ErrStarted = errors.New(`hostport: already started`)

	// ErrNotStarted is returned by Tick before Start.
	ErrNotStarted = errors.New(`hostport: not started`)

	// ErrIdleBudget is wrapped by the panic value raised when the virtual
	// idle budget is exhausted, see [WithMaxIdleTicks].
	ErrIdleBudget = errors.New(`hostport: idle tick budget exhausted`)
)
