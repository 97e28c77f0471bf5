package rtkernel

import (
	"github.com/joeycumines/logiface"
)

// stackFillPattern is written over working areas when WithStackFill is set.
const stackFillPattern = 0x55

type threadFlags uint8

const (
	flagModeMask threadFlags = 0x03
	// flagTerminate is set by Terminate
	flagTerminate threadFlags = 0x04
	// flagExiting is set by Exit, before unwinding the goroutine
	flagExiting threadFlags = 0x08
)

type (
	// ThreadFunc is a thread body. Its result is the exit code.
	ThreadFunc func(arg any) Msg

	// ThreadConfig describes a thread to create.
	ThreadConfig struct {
		// Func is the thread body, required.
		Func ThreadFunc

		// Arg is passed to Func.
		Arg any

		// Release is called once the thread is reclaimed, to return Stack
		// (and any other storage) to wherever Mode says it came from. It may
		// be called with the gate held, and must not call into the kernel.
		Release func(t *Thread)

		// Name is used for logging, tracing and [Kernel.FindThreadByName].
		Name string

		// Stack is the thread's working area. The kernel only tracks it.
		Stack []byte

		// Priority must be at least [LowPriority].
		Priority Priority

		// Mode records where Stack came from.
		Mode AllocMode
	}

	// Thread is a thread control block.
	Thread struct {
		k    *Kernel
		ctx  Context
		fn   ThreadFunc
		arg  any
		name string

		// wait queue or ready list linkage, see threadQueue
		next, prev *Thread
		queue      *threadQueue

		// registry linkage
		older, newer *Thread

		// blocking payload, the meaning of each depends on state
		wtobj   any
		sentmsg any

		// head of the chain of held mutexes, through Mutex.next
		mtxlist *Mutex

		release func(t *Thread)
		stack   []byte

		// threads blocked in Wait on this thread
		waiting threadQueue

		// threads blocked in Send to this thread
		msgqueue threadQueue
		// senders taken from msgqueue and not yet released
		msgtaken threadQueue

		timeout VirtualTimer

		refs     uint32
		ticks    uint32
		rdymsg   Msg
		exitcode Msg
		ewmask   EventMask
		epending EventMask
		prio     Priority
		realprio Priority
		state    ThreadState
		flags    threadFlags
	}
)

// Name returns the thread name.
func (t *Thread) Name() string { return t.name }

// Kernel returns the kernel the thread belongs to.
func (t *Thread) Kernel() *Kernel { return t.k }

// Mode returns the allocation mode of the thread's working area.
func (t *Thread) Mode() AllocMode { return AllocMode(t.flags & flagModeMask) }

// Stack returns the thread's working area.
func (t *Thread) Stack() []byte { return t.stack }

// State returns the current state.
func (t *Thread) State() ThreadState {
	g := t.k.Lock()
	s := t.state
	t.k.Unlock(g)
	return s
}

// StateI returns the current state.
func (t *Thread) StateI(g Locked) ThreadState {
	t.k.checkI(g)
	return t.state
}

// Priority returns the current, possibly boosted, priority.
func (t *Thread) Priority() Priority {
	g := t.k.Lock()
	p := t.prio
	t.k.Unlock(g)
	return p
}

// RealPriority returns the priority the thread would have without mutex
// boosting.
func (t *Thread) RealPriority() Priority {
	g := t.k.Lock()
	p := t.realprio
	t.k.Unlock(g)
	return p
}

// Refs returns the reference count.
func (t *Thread) Refs() uint32 {
	g := t.k.Lock()
	n := t.refs
	t.k.Unlock(g)
	return n
}

// ExitCode returns the exit code, valid once the thread is FINAL.
func (t *Thread) ExitCode() Msg {
	g := t.k.Lock()
	m := t.exitcode
	t.k.Unlock(g)
	return m
}

// StackUnused returns the number of leading bytes of the working area that
// still hold the fill pattern, or 0 without WithStackFill.
func (t *Thread) StackUnused() int {
	if !t.k.opts.stackFill {
		return 0
	}
	for i, b := range t.stack {
		if b != stackFillPattern {
			return i
		}
	}
	return len(t.stack)
}

func (k *Kernel) newThread(cfg ThreadConfig) *Thread {
	t := &Thread{
		k:        k,
		fn:       cfg.Func,
		arg:      cfg.Arg,
		name:     cfg.Name,
		release:  cfg.Release,
		stack:    cfg.Stack,
		refs:     1,
		ticks:    k.opts.quantum,
		prio:     cfg.Priority,
		realprio: cfg.Priority,
		state:    StateWtStart,
		flags:    threadFlags(cfg.Mode) & flagModeMask,
	}
	t.timeout.k = k
	return t
}

// CreateThreadSuspendedI creates a thread in the WTSTART state. It starts
// running after [Thread.StartI] (or Start, StartS).
func (k *Kernel) CreateThreadSuspendedI(g Locked, cfg ThreadConfig) *Thread {
	k.checkI(g)
	switch {
	case cfg.Func == nil:
		k.halt(`thread without a body`)
	case cfg.Priority < LowPriority:
		k.halt(`invalid thread priority`)
	case len(cfg.Stack) < k.opts.minStack:
		k.halt(`working area too small`)
	case cfg.Mode > AllocPool:
		k.halt(`invalid allocation mode`)
	}
	return k.createThreadI(cfg)
}

// createThreadI creates a thread without validating cfg, for the kernel's
// own threads.
func (k *Kernel) createThreadI(cfg ThreadConfig) *Thread {
	t := k.newThread(cfg)
	if k.opts.stackFill {
		for i := range t.stack {
			t.stack[i] = stackFillPattern
		}
	}
	k.registry.add(t)
	t.ctx = k.port.NewContext(func() { k.runThread(t) })
	k.logAt(logiface.LevelDebug, categoryThread).
		Str(`thread`, t.name).
		Int(`priority`, int(t.prio)).
		Str(`mode`, t.Mode().String()).
		Log(`thread created`)
	return t
}

// CreateThreadI creates a thread and readies it, without rescheduling.
func (k *Kernel) CreateThreadI(g Locked, cfg ThreadConfig) *Thread {
	t := k.CreateThreadSuspendedI(g, cfg)
	k.readyI(t, MsgOK)
	return t
}

// CreateThreadSuspended creates a thread in the WTSTART state.
func (k *Kernel) CreateThreadSuspended(cfg ThreadConfig) *Thread {
	g := k.Lock()
	t := k.CreateThreadSuspendedI(g, cfg)
	k.Unlock(g)
	return t
}

// CreateThread creates and starts a thread, switching to it immediately if
// it outranks the caller. The returned thread carries one reference, owned
// by the caller, see [Thread.Release] and [Thread.Wait].
func (k *Kernel) CreateThread(cfg ThreadConfig) *Thread {
	g := k.Lock()
	t := k.CreateThreadSuspendedI(g, cfg)
	k.wakeupS(t, MsgOK)
	k.Unlock(g)
	return t
}

// StartI readies a thread created suspended.
func (t *Thread) StartI(g Locked) {
	t.k.checkI(g)
	if t.state != StateWtStart {
		t.k.halt(`thread already started`)
	}
	t.k.readyI(t, MsgOK)
}

// StartS starts a thread created suspended, rescheduling.
func (t *Thread) StartS(g *Guard) {
	t.k.checkS(g)
	if t.state != StateWtStart {
		t.k.halt(`thread already started`)
	}
	t.k.wakeupS(t, MsgOK)
}

// Start starts a thread created suspended.
func (t *Thread) Start() {
	g := t.k.Lock()
	t.StartS(g)
	t.k.Unlock(g)
}

// Terminate asks the thread to exit. Termination is cooperative, see
// [Kernel.ShouldTerminate].
func (t *Thread) Terminate() {
	g := t.k.Lock()
	t.flags |= flagTerminate
	t.k.Unlock(g)
}

// ShouldTerminate reports whether [Thread.Terminate] was called on the
// running thread.
func (k *Kernel) ShouldTerminate() bool {
	g := k.Lock()
	v := k.current.flags&flagTerminate != 0
	k.Unlock(g)
	return v
}

// AddRef adds a reference to t, which must not yet be reclaimed.
func (t *Thread) AddRef() *Thread {
	g := t.k.Lock()
	if t.refs == 0 {
		t.k.halt(`reference to a released thread`)
	}
	t.refs++
	t.k.Unlock(g)
	return t
}

// Release drops a reference. The thread is reclaimed once it has no
// references and has exited.
func (t *Thread) Release() {
	k := t.k
	g := k.Lock()
	if t.refs == 0 {
		k.halt(`thread released too many times`)
	}
	t.refs--
	reclaim := t.refs == 0 && t.state == StateFinal
	if reclaim {
		k.registry.remove(t)
	}
	k.Unlock(g)
	if reclaim {
		k.reclaim(t)
	}
}

// Wait blocks until t exits, returning its exit code, and releases the
// caller's reference to t.
func (t *Thread) Wait() Msg {
	k := t.k
	g := k.Lock()
	if t == k.current {
		k.halt(`thread waiting on itself`)
	}
	if t.refs == 0 {
		k.halt(`waiting on a released thread`)
	}
	if t.state != StateFinal {
		k.current.wtobj = t
		t.waiting.pushBack(k.current)
		k.goSleepS(StateWtExit)
	}
	msg := t.exitcode
	k.Unlock(g)
	t.Release()
	return msg
}

// exitS terminates the running thread. On return the thread no longer owns
// the gate or the CPU, and must not touch the kernel again.
func (k *Kernel) exitS(g *Guard, msg Msg) {
	k.checkS(g)
	t := k.current
	t.exitcode = msg

	if t.mtxlist != nil {
		k.logAt(logiface.LevelWarning, categoryThread).
			Str(`thread`, t.name).
			Log(`thread exited holding mutexes`)
		k.releaseAllMutexesI(t)
	}
	for !t.waiting.isEmpty() {
		k.readyI(t.waiting.popFront(), MsgOK)
	}
	for !t.msgqueue.isEmpty() {
		k.readyI(t.msgqueue.popFront(), MsgReset)
	}
	for !t.msgtaken.isEmpty() {
		tp := t.msgtaken.popFront()
		tp.sentmsg = nil
		k.readyI(tp, MsgReset)
	}

	k.logAt(logiface.LevelDebug, categoryThread).
		Str(`thread`, t.name).
		Int64(`exit`, int64(msg)).
		Log(`thread exited`)

	t.state = StateFinal
	if t.refs == 0 {
		k.registry.remove(t)
		k.reclaim(t)
	}
	k.goSleepS(StateFinal)
}

// reclaim hands the storage of a thread with no references back to its
// owner.
func (k *Kernel) reclaim(t *Thread) {
	k.logAt(logiface.LevelDebug, categoryThread).
		Str(`thread`, t.name).
		Log(`thread reclaimed`)
	if t.release != nil {
		t.release(t)
	}
}

// SetPriority changes the running thread's priority, returning the old
// (unboosted) priority. A boosted thread keeps its boost until it releases
// the mutexes that caused it.
func (k *Kernel) SetPriority(p Priority) Priority {
	if p < LowPriority {
		k.halt(`invalid thread priority`)
	}
	g := k.Lock()
	t := k.current
	old := t.realprio
	if t.prio == t.realprio || p > t.prio {
		t.prio = p
	}
	t.realprio = p
	k.RescheduleS(g)
	k.Unlock(g)
	return old
}

// Sleep suspends the running thread for iv ticks. Sleeping for
// [TimeImmediate] yields instead.
func (k *Kernel) Sleep(iv Interval) {
	g := k.Lock()
	k.SleepS(g, iv)
	k.Unlock(g)
}

// SleepS is the "S" variant of Sleep.
func (k *Kernel) SleepS(g *Guard, iv Interval) {
	k.checkS(g)
	if iv == TimeImmediate {
		if k.canYieldS() {
			k.doYieldS()
		}
		return
	}
	k.goSleepTimeoutS(StateSleeping, iv)
}

// SleepUntil suspends the running thread until the given time, returning
// immediately if it is now.
func (k *Kernel) SleepUntil(t SysTime) {
	g := k.Lock()
	if iv := TimeDiff(k.vt.systime, t); iv > 0 {
		k.SleepS(g, iv)
	}
	k.Unlock(g)
}

// SleepUntilWindowed suspends the running thread until next, if the current
// time is within [prev, next), and returns next. It is used to implement
// periodic loops without drift:
//
//	prev := k.SystemTime()
//	for {
//		next := rtkernel.TimeAdd(prev, period)
//		// work
//		prev = k.SleepUntilWindowed(prev, next)
//	}
func (k *Kernel) SleepUntilWindowed(prev, next SysTime) SysTime {
	g := k.Lock()
	if now := k.vt.systime; TimeIsInRange(now, prev, next) {
		k.SleepS(g, TimeDiff(now, next))
	}
	k.Unlock(g)
	return next
}

// Yield passes control to the next ready thread of equal priority, if any.
func (k *Kernel) Yield() {
	g := k.Lock()
	if k.canYieldS() {
		k.doYieldS()
	}
	k.Unlock(g)
}
