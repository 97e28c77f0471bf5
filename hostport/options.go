package hostport

import (
	"fmt"
	"time"

	"github.com/joeycumines/logiface"
)

type (
	// Option configures a [Port].
	Option interface {
		applyPort(*portOptions) error
	}

	optionImpl struct {
		applyPortFunc func(*portOptions) error
	}

	portOptions struct {
		logger       *logiface.Logger[logiface.Event]
		tickNice     *int
		tickPeriod   time.Duration
		maxIdleTicks uint64
		virtual      bool
	}
)

func (x *optionImpl) applyPort(opts *portOptions) error {
	return x.applyPortFunc(opts)
}

// WithVirtualTime makes the port advance time only when the kernel is idle,
// one tick per WaitForInterrupt, on the idle thread. Runs are deterministic,
// and independent of the wall clock.
func WithVirtualTime(enabled bool) Option {
	return &optionImpl{func(opts *portOptions) error {
		opts.virtual = enabled
		return nil
	}}
}

// WithTickPeriod sets the wall-clock tick period, in real-time mode. The
// default is one millisecond.
func WithTickPeriod(d time.Duration) Option {
	return &optionImpl{func(opts *portOptions) error {
		if d <= 0 {
			return fmt.Errorf(`%w: tick period must be positive`, ErrInvalidOption)
		}
		opts.tickPeriod = d
		return nil
	}}
}

// WithMaxIdleTicks bounds the consecutive idle ticks in virtual mode. When
// exceeded, the idle thread panics with an error wrapping [ErrIdleBudget]:
// every thread is blocked on something that will never happen. Zero, the
// default, is unbounded.
func WithMaxIdleTicks(n uint64) Option {
	return &optionImpl{func(opts *portOptions) error {
		opts.maxIdleTicks = n
		return nil
	}}
}

// WithLogger sets the logger used for port diagnostics.
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return &optionImpl{func(opts *portOptions) error {
		opts.logger = logger
		return nil
	}}
}

// WithTickThreadPriority locks the real-time tick goroutine to an OS thread
// and sets that thread's nice value, where supported. Failure is logged,
// not returned.
func WithTickThreadPriority(nice int) Option {
	return &optionImpl{func(opts *portOptions) error {
		if nice < -20 || nice > 19 {
			return fmt.Errorf(`%w: nice value %d out of range`, ErrInvalidOption, nice)
		}
		opts.tickNice = &nice
		return nil
	}}
}

func resolveOptions(opts []Option) (*portOptions, error) {
	cfg := &portOptions{
		tickPeriod: time.Millisecond,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyPort(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
