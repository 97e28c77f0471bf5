package rtkernel

import (
	"fmt"

	"github.com/joeycumines/logiface"
)

// PriorityProtocol selects how mutexes alter the priority of their owners.
type PriorityProtocol uint8

const (
	// ProtocolInheritance boosts a mutex owner to the priority of its
	// highest priority waiter, transitively through chains of blocked
	// owners. This is the default.
	ProtocolInheritance PriorityProtocol = iota
	// ProtocolNone never alters priorities.
	ProtocolNone
	// ProtocolCeiling boosts a mutex owner to the ceiling set with
	// [Mutex.SetCeiling], while it holds the mutex.
	ProtocolCeiling
)

func (p PriorityProtocol) String() string {
	switch p {
	case ProtocolInheritance:
		return `inheritance`
	case ProtocolNone:
		return `none`
	case ProtocolCeiling:
		return `ceiling`
	default:
		return fmt.Sprintf(`PriorityProtocol(%d)`, uint8(p))
	}
}

// kernelOptions holds configuration options for Kernel creation.
type kernelOptions struct {
	logger       *logiface.Logger[logiface.Event]
	haltHook     func(reason string)
	idleHook     func()
	frequency    uint32
	quantum      uint32
	minStack     int
	traceSize    int
	initialTime  SysTime
	protocol     PriorityProtocol
	mainPriority Priority
	stats        bool
	stackFill    bool
}

// Option configures a Kernel instance.
type Option interface {
	applyKernel(*kernelOptions) error
}

// optionImpl implements Option.
type optionImpl struct {
	applyKernelFunc func(*kernelOptions) error
}

func (o *optionImpl) applyKernel(opts *kernelOptions) error {
	return o.applyKernelFunc(opts)
}

// WithLogger sets the logger. Defaults to nil, which disables logging.
// Context switches are logged at trace level, thread lifecycle at debug
// level, and halts at emergency level.
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return &optionImpl{func(opts *kernelOptions) error {
		opts.logger = logger
		return nil
	}}
}

// WithFrequency sets the tick rate the port is expected to deliver, used
// only for time conversions. Defaults to 1000 Hz.
func WithFrequency(hz uint32) Option {
	return &optionImpl{func(opts *kernelOptions) error {
		if hz == 0 {
			return fmt.Errorf(`%w: frequency must be non-zero`, ErrInvalidOption)
		}
		opts.frequency = hz
		return nil
	}}
}

// WithTimeQuantum enables round-robin scheduling among threads of equal
// priority, preempting a thread after it has run for the given number of
// ticks. Defaults to 0, disabled, meaning threads of equal priority only
// switch when one blocks or yields.
func WithTimeQuantum(ticks uint32) Option {
	return &optionImpl{func(opts *kernelOptions) error {
		opts.quantum = ticks
		return nil
	}}
}

// WithPriorityProtocol sets the mutex priority protocol. Defaults to
// [ProtocolInheritance].
func WithPriorityProtocol(p PriorityProtocol) Option {
	return &optionImpl{func(opts *kernelOptions) error {
		if p > ProtocolCeiling {
			return fmt.Errorf(`%w: unknown priority protocol %d`, ErrInvalidOption, p)
		}
		opts.protocol = p
		return nil
	}}
}

// WithHaltHook registers a function called with the reason, before the
// kernel panics with a [*HaltError].
func WithHaltHook(fn func(reason string)) Option {
	return &optionImpl{func(opts *kernelOptions) error {
		opts.haltHook = fn
		return nil
	}}
}

// WithIdleHook registers a function called by the idle thread each time
// before it waits for an interrupt. It must not block or call into the
// kernel.
func WithIdleHook(fn func()) Option {
	return &optionImpl{func(opts *kernelOptions) error {
		opts.idleHook = fn
		return nil
	}}
}

// WithStats enables collection of the statistics returned by
// [Kernel.Stats]. Measuring critical sections reads the wall clock on every
// gate transition.
func WithStats(enabled bool) Option {
	return &optionImpl{func(opts *kernelOptions) error {
		opts.stats = enabled
		return nil
	}}
}

// WithTrace enables a ring buffer of the most recent size scheduling
// events, see [Kernel.Trace]. Defaults to 0, disabled.
func WithTrace(size int) Option {
	return &optionImpl{func(opts *kernelOptions) error {
		if size < 0 {
			return fmt.Errorf(`%w: negative trace size`, ErrInvalidOption)
		}
		opts.traceSize = size
		return nil
	}}
}

// WithMinStackSize sets the minimum working area accepted by thread
// creation. Defaults to 0, accepting threads without a working area.
func WithMinStackSize(n int) Option {
	return &optionImpl{func(opts *kernelOptions) error {
		if n < 0 {
			return fmt.Errorf(`%w: negative stack size`, ErrInvalidOption)
		}
		opts.minStack = n
		return nil
	}}
}

// WithStackFill fills each new thread's working area with a pattern, so
// [Thread.StackUnused] can report how much was never touched.
func WithStackFill(enabled bool) Option {
	return &optionImpl{func(opts *kernelOptions) error {
		opts.stackFill = enabled
		return nil
	}}
}

// WithMainPriority sets the priority of the main thread. Defaults to
// [NormalPriority].
func WithMainPriority(p Priority) Option {
	return &optionImpl{func(opts *kernelOptions) error {
		if p < LowPriority {
			return fmt.Errorf(`%w: main priority %d is below LowPriority`, ErrInvalidOption, p)
		}
		opts.mainPriority = p
		return nil
	}}
}

// WithInitialTime sets the system time at startup. Defaults to 0.
func WithInitialTime(t SysTime) Option {
	return &optionImpl{func(opts *kernelOptions) error {
		opts.initialTime = t
		return nil
	}}
}

// resolveOptions applies Option instances to kernelOptions.
func resolveOptions(opts []Option) (*kernelOptions, error) {
	cfg := &kernelOptions{
		frequency:    1000,
		mainPriority: NormalPriority,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyKernel(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
