// Package hostport runs an rtkernel.Kernel on the Go runtime. Each kernel
// thread is a goroutine, and only the goroutine holding the baton runs: the
// others are parked in Switch. The gate is a mutex whose ownership moves
// with the baton.
//
// Interrupts are serialized with each other, and run either on a dedicated
// goroutine, in real-time mode, or synchronously on the idle thread, in
// virtual mode (see [WithVirtualTime]).
package hostport

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/joeycumines/go-catrate"
	"github.com/joeycumines/go-rtkernel"
	"github.com/joeycumines/logiface"
)

// Port implements [rtkernel.Port].
type Port struct {
	opts    *portOptions
	tick    func()
	limiter *catrate.Limiter
	raised  chan func()
	irq     chan struct{}
	done    chan struct{}

	current atomic.Pointer[hostContext]
	idle    atomic.Pointer[hostContext]

	wg sync.WaitGroup

	// gate is held by whichever thread has the baton, or by an interrupt
	gate sync.Mutex
	// isr serializes interrupt handlers
	isr sync.Mutex

	idleTicks atomic.Uint64
	started   atomic.Bool
	closeOnce sync.Once
}

// hostContext is the rtkernel.Context of a goroutine
type hostContext struct {
	resume chan struct{}
}

var _ rtkernel.Port = (*Port)(nil)

// New returns an unstarted port.
func New(opts ...Option) (*Port, error) {
	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}
	return &Port{
		opts: cfg,
		limiter: catrate.NewLimiter(map[time.Duration]int{
			time.Second: 1,
			time.Minute: 10,
		}),
		raised: make(chan func()),
		irq:    make(chan struct{}, 1),
		done:   make(chan struct{}),
	}, nil
}

// Virtual reports whether the port runs on virtual time.
func (p *Port) Virtual() bool {
	return p.opts.virtual
}

func (p *Port) Lock() {
	p.gate.Lock()
}

func (p *Port) Unlock() {
	p.gate.Unlock()
}

func (p *Port) LockFromISR() {
	p.gate.Lock()
}

func (p *Port) UnlockFromISR() {
	p.gate.Unlock()
}

// NewContext returns a context for the calling goroutine if start is nil,
// otherwise it starts a goroutine that runs start once first switched to.
func (p *Port) NewContext(start func()) rtkernel.Context {
	c := &hostContext{resume: make(chan struct{}, 1)}
	if start == nil {
		p.current.Store(c)
		return c
	}
	go func() {
		if !p.park(c) {
			return
		}
		start()
	}()
	return c
}

// Switch passes the baton to next, then parks prev. After Close, a parked
// goroutine exits with runtime.Goexit instead of returning.
func (p *Port) Switch(next, prev rtkernel.Context, exiting bool) {
	n, o := next.(*hostContext), prev.(*hostContext)
	if o == p.idle.Load() {
		p.idleTicks.Store(0)
	}
	p.current.Store(n)
	n.resume <- struct{}{}
	if exiting {
		return
	}
	if !p.park(o) {
		runtime.Goexit()
	}
}

// park blocks until c is resumed, returning false if the port closed.
func (p *Port) park(c *hostContext) bool {
	select {
	case <-c.resume:
		return true
	case <-p.done:
		return false
	}
}

// WaitForInterrupt blocks the idle thread until an interrupt has run. In
// virtual mode it runs the next tick itself.
func (p *Port) WaitForInterrupt() {
	if p.opts.virtual {
		if p.closed() {
			runtime.Goexit()
		}
		p.idle.Store(p.current.Load())
		n := p.idleTicks.Add(1)
		if limit := p.opts.maxIdleTicks; limit > 0 && n > limit {
			panic(fmt.Errorf(`%w: %d consecutive idle ticks`, ErrIdleBudget, limit))
		}
		p.interrupt(p.tick)
		return
	}
	select {
	case <-p.irq:
	case <-p.done:
		runtime.Goexit()
	}
}

// Start registers the tick handler and, in real-time mode, starts the tick
// goroutine.
func (p *Port) Start(tick func()) error {
	if tick == nil {
		return fmt.Errorf(`%w: nil tick handler`, ErrInvalidOption)
	}
	if p.closed() {
		return ErrClosed
	}
	if !p.started.CompareAndSwap(false, true) {
		return ErrStarted
	}
	p.tick = tick
	if !p.opts.virtual {
		p.wg.Add(1)
		go p.run()
	}
	p.opts.logger.Debug().
		Str(`category`, `port`).
		Bool(`virtual`, p.opts.virtual).
		Dur(`period`, p.opts.tickPeriod).
		Log(`port started`)
	return nil
}

// Raise delivers an external interrupt: fn runs in interrupt context, and
// should enter the kernel with [rtkernel.Kernel.ISR]. In real-time mode fn
// runs on the tick goroutine, and Raise returns once it has been accepted.
// In virtual mode it runs synchronously. Raise must not be called with the
// kernel gate held.
func (p *Port) Raise(fn func()) error {
	if fn == nil {
		return fmt.Errorf(`%w: nil interrupt handler`, ErrInvalidOption)
	}
	if p.closed() {
		return ErrClosed
	}
	if p.opts.virtual || !p.started.Load() {
		p.interrupt(fn)
		return nil
	}
	select {
	case p.raised <- fn:
		return nil
	case <-p.done:
		return ErrClosed
	}
}

// Tick raises one tick interrupt, see [Port.Raise]. It lets a running
// thread drive a virtual-time port without the kernel going idle.
func (p *Port) Tick() error {
	if !p.started.Load() {
		return ErrNotStarted
	}
	return p.Raise(p.tick)
}

// interrupt runs fn as an interrupt handler, then wakes WaitForInterrupt.
func (p *Port) interrupt(fn func()) {
	p.isr.Lock()
	fn()
	p.isr.Unlock()
	select {
	case p.irq <- struct{}{}:
	default:
	}
}

// Close stops the tick goroutine and releases every parked goroutine, which
// exit without running again. It waits for an in-flight interrupt handler
// to return. It is safe to call more than once.
func (p *Port) Close() error {
	p.closeOnce.Do(func() {
		close(p.done)
	})
	p.wg.Wait()
	return nil
}

func (p *Port) closed() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

func (p *Port) logger() *logiface.Logger[logiface.Event] {
	return p.opts.logger
}
