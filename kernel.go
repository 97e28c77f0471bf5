package rtkernel

import (
	"io"
	"runtime"
	"sync/atomic"

	"github.com/joeycumines/logiface"
)

// Kernel is a single kernel instance: the ready list, the virtual timer
// list, the registry and the critical-section gate protecting them.
type Kernel struct {
	port       Port
	opts       *kernelOptions
	current    *Thread
	main       *Thread
	idle       *Thread
	stats      *kernelStats
	trace      *traceBuffer
	haltReason atomic.Pointer[string]
	rlist      threadQueue
	registry   registry
	vt         vtList
	guard      Guard
	isr        ISRGuard
	closed     atomic.Bool

	// preemptPending is set by UnlockFromISR, and consumed by Unlock
	preemptPending bool
}

// New initializes a kernel on port. The calling goroutine becomes the main
// thread, and the idle thread is created before ticks are started.
func New(port Port, opts ...Option) (*Kernel, error) {
	if port == nil {
		return nil, ErrNilPort
	}

	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}

	k := &Kernel{
		port:  port,
		opts:  cfg,
		stats: newKernelStats(cfg.stats),
		trace: newTraceBuffer(cfg.traceSize),
	}
	k.guard.k = k
	k.isr.k = k
	k.vt.systime = cfg.initialTime

	k.main = k.newThread(ThreadConfig{Name: `main`, Priority: cfg.mainPriority})
	k.main.state = StateCurrent
	k.main.ctx = port.NewContext(nil)
	k.registry.add(k.main)
	k.current = k.main

	g := k.Lock()
	k.idle = k.readyI(k.createThreadI(ThreadConfig{
		Name:     `idle`,
		Priority: IdlePriority,
		Func:     k.idleLoop,
	}), MsgOK)
	k.Unlock(g)

	if err := port.Start(k.tickISR); err != nil {
		k.closed.Store(true)
		if c, ok := port.(io.Closer); ok {
			_ = c.Close()
		}
		return nil, err
	}

	k.logAt(logiface.LevelDebug, categorySched).
		Str(`protocol`, cfg.protocol.String()).
		Uint64(`quantum`, uint64(cfg.quantum)).
		Uint64(`frequency`, uint64(cfg.frequency)).
		Log(`kernel started`)

	return k, nil
}

// Close releases the port, if it implements [io.Closer]. Threads parked in
// the port never run again. It is safe to call more than once.
func (k *Kernel) Close() error {
	if !k.closed.CompareAndSwap(false, true) {
		return nil
	}
	if c, ok := k.port.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Self returns the running thread.
func (k *Kernel) Self() *Thread {
	return k.current
}

// Main returns the thread adopted by [New].
func (k *Kernel) Main() *Thread {
	return k.main
}

// Idle returns the idle thread.
func (k *Kernel) Idle() *Thread {
	return k.idle
}

// Halted returns the reason the kernel halted, if it has.
func (k *Kernel) Halted() (reason string, ok bool) {
	if p := k.haltReason.Load(); p != nil {
		return *p, true
	}
	return ``, false
}

// halt stops the kernel, see [HaltError]. The first reason is retained.
func (k *Kernel) halt(reason string) {
	k.haltReason.CompareAndSwap(nil, &reason)
	k.logAt(logiface.LevelEmergency, categoryHalt).
		Str(`reason`, reason).
		Log(`kernel halted`)
	if k.opts.haltHook != nil {
		k.opts.haltHook(reason)
	}
	panic(&HaltError{Reason: reason})
}

// tickISR is registered with the port as the tick handler.
func (k *Kernel) tickISR() {
	g := k.LockFromISR()
	if k.current.ticks > 0 {
		k.current.ticks--
	}
	k.vtDoTickI(g)
	k.UnlockFromISR(g)
}

func (k *Kernel) idleLoop(any) Msg {
	for {
		if k.opts.idleHook != nil {
			k.opts.idleHook()
		}
		k.port.WaitForInterrupt()
		// releasing the gate performs any preemption the interrupt requested
		k.Unlock(k.Lock())
	}
}

// runThread is the body of every created thread's context.
func (k *Kernel) runThread(t *Thread) {
	defer func() {
		if t.flags&flagExiting == 0 || k.closed.Load() {
			return
		}
		k.exitS(k.Lock(), t.exitcode)
	}()
	// the switch that started this thread left the gate held
	k.Unlock(&k.guard)
	k.Exit(t.fn(t.arg))
}

// Exit terminates the running thread with an exit code, see [Thread.Wait].
// It does not return. Mutexes still held are released.
func (k *Kernel) Exit(msg Msg) {
	t := k.current
	if t == k.idle {
		k.halt(`idle thread exit`)
	}
	if k.guard.locked {
		k.halt(`exit with the gate held`)
	}
	t.exitcode = msg
	if t == k.main {
		// no runThread frame below, exit here
		k.exitS(k.Lock(), msg)
		runtime.Goexit()
	}
	t.flags |= flagExiting
	runtime.Goexit()
}
