package rtkernel

type (
	// Port is the execution environment the kernel runs on. It supplies the
	// critical-section gate, context switching, and the tick.
	//
	// The kernel guarantees that only one thread runs at a time, and that
	// the gate is held across every Switch: the incoming thread resumes with
	// the gate held on its behalf, and releases it with the thread-context
	// Unlock.
	Port interface {
		// Lock acquires the gate from thread context.
		Lock()
		// Unlock releases the gate from thread context.
		Unlock()
		// LockFromISR acquires the gate from interrupt context.
		LockFromISR()
		// UnlockFromISR releases the gate from interrupt context.
		UnlockFromISR()

		// NewContext returns the execution context of a new thread, which
		// calls start when first switched to. If start is nil, the context
		// represents the calling goroutine, which is already running.
		NewContext(start func()) Context

		// Switch resumes next, then suspends prev until it is switched to
		// again. If exiting is true, prev never runs again, and Switch
		// returns to it immediately.
		Switch(next, prev Context, exiting bool)

		// WaitForInterrupt blocks the idle thread until an interrupt has
		// been handled.
		WaitForInterrupt()

		// Start begins delivering ticks, by calling tick from interrupt
		// context once per tick.
		Start(tick func()) error
	}

	// Context is a thread's execution context, opaque to the kernel.
	Context any
)
