package rtkernel

type (
	// Guard is the capability to call "S" and "I" functions from thread
	// context, returned by [Kernel.Lock].
	Guard struct {
		k      *Kernel
		locked bool
	}

	// ISRGuard is the capability to call "I" functions from interrupt
	// context, returned by [Kernel.LockFromISR]. No rescheduling function
	// accepts it.
	ISRGuard struct {
		k      *Kernel
		locked bool
	}

	// Locked is implemented by [*Guard] and [*ISRGuard].
	Locked interface {
		gate() (*Kernel, bool)
	}
)

var (
	_ Locked = (*Guard)(nil)
	_ Locked = (*ISRGuard)(nil)
)

func (g *Guard) gate() (*Kernel, bool) {
	if g == nil {
		return nil, false
	}
	return g.k, g.locked
}

func (g *ISRGuard) gate() (*Kernel, bool) {
	if g == nil {
		return nil, false
	}
	return g.k, g.locked
}

// Lock enters the critical section from thread context. It must not be
// nested.
func (k *Kernel) Lock() *Guard {
	if k.guard.locked {
		k.halt(`nested gate lock`)
	}
	k.port.Lock()
	k.guard.locked = true
	if k.stats != nil {
		k.stats.thread.begin()
	}
	return &k.guard
}

// Unlock leaves the critical section from thread context. Preemption
// requested by an interrupt happens here. It halts if a ready thread
// outranks the running one.
func (k *Kernel) Unlock(g *Guard) {
	k.checkS(g)
	if k.preemptPending {
		k.preemptPending = false
		if k.isPreemptionRequired() {
			k.doPreemption()
		}
	}
	if first := k.rlist.first(); first != nil && first.prio > k.current.prio {
		k.halt(`priority order violation`)
	}
	if k.stats != nil {
		k.stats.thread.end()
	}
	g.locked = false
	k.port.Unlock()
}

// Critical runs fn inside the critical section.
func (k *Kernel) Critical(fn func(g *Guard)) {
	g := k.Lock()
	fn(g)
	k.Unlock(g)
}

// LockFromISR enters the critical section from interrupt context.
func (k *Kernel) LockFromISR() *ISRGuard {
	k.port.LockFromISR()
	if k.isr.locked {
		k.halt(`nested ISR gate lock`)
	}
	k.isr.locked = true
	if k.stats != nil {
		k.stats.interrupts++
		k.stats.isr.begin()
	}
	k.trace.record(TraceEvent{Kind: TraceISREnter, Time: k.vt.systime})
	return &k.isr
}

// UnlockFromISR leaves the critical section from interrupt context. If a
// thread readied by the interrupt should preempt the running one, the
// switch is deferred until the running thread next releases the gate.
func (k *Kernel) UnlockFromISR(g *ISRGuard) {
	if g != &k.isr || !g.locked {
		k.halt(`invalid ISR guard`)
	}
	if k.isPreemptionRequired() {
		k.preemptPending = true
	}
	k.trace.record(TraceEvent{Kind: TraceISRLeave, Time: k.vt.systime})
	if k.stats != nil {
		k.stats.isr.end()
	}
	g.locked = false
	k.port.UnlockFromISR()
}

// ISR runs fn inside the critical section, from interrupt context.
func (k *Kernel) ISR(fn func(g *ISRGuard)) {
	g := k.LockFromISR()
	fn(g)
	k.UnlockFromISR(g)
}

// checkS halts unless g is this kernel's held thread-context guard.
func (k *Kernel) checkS(g *Guard) {
	if g != &k.guard || !g.locked {
		k.halt(`S-class call without the thread gate`)
	}
}

// checkI halts unless g is one of this kernel's held guards.
func (k *Kernel) checkI(g Locked) {
	if g == nil {
		k.halt(`I-class call without the gate`)
	}
	if gk, held := g.gate(); gk != k || !held {
		k.halt(`I-class call without the gate`)
	}
}
