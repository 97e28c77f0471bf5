package rtkernel

import (
	"strconv"
)

// TraceKind identifies a [TraceEvent].
type TraceKind uint8

const (
	// TraceSwitch records a context switch.
	TraceSwitch TraceKind = iota + 1
	// TraceISREnter records entering the gate from interrupt context.
	TraceISREnter
	// TraceISRLeave records leaving the gate from interrupt context.
	TraceISRLeave
	// TraceUser records a [Kernel.TraceUserI] call.
	TraceUser
)

func (k TraceKind) String() string {
	switch k {
	case TraceSwitch:
		return `switch`
	case TraceISREnter:
		return `isr-enter`
	case TraceISRLeave:
		return `isr-leave`
	case TraceUser:
		return `user`
	default:
		return `TraceKind(` + strconv.Itoa(int(k)) + `)`
	}
}

// TraceEvent is an entry in the trace buffer, see [WithTrace].
type TraceEvent struct {
	// Arg1 and Arg2 are the TraceUser arguments.
	Arg1, Arg2 any
	// Thread is the incoming thread of a switch.
	Thread string
	// Prev is the outgoing thread of a switch.
	Prev string
	// Seq increases by one per recorded event.
	Seq  uint64
	Time SysTime
	// WakeMsg is the incoming thread's wakeup message.
	WakeMsg Msg
	Kind    TraceKind
	// PrevState is the state the outgoing thread switched into.
	PrevState ThreadState
}

// traceBuffer is a ring of the most recent events, guarded by the gate. A
// nil buffer records nothing.
type traceBuffer struct {
	events []TraceEvent
	next   int
	seq    uint64
}

func newTraceBuffer(size int) *traceBuffer {
	if size <= 0 {
		return nil
	}
	return &traceBuffer{events: make([]TraceEvent, 0, size)}
}

func (b *traceBuffer) record(ev TraceEvent) {
	if b == nil {
		return
	}
	b.seq++
	ev.Seq = b.seq
	if len(b.events) < cap(b.events) {
		b.events = append(b.events, ev)
		return
	}
	b.events[b.next] = ev
	b.next = (b.next + 1) % len(b.events)
}

// snapshot returns the events, oldest first.
func (b *traceBuffer) snapshot() []TraceEvent {
	if b == nil {
		return nil
	}
	out := make([]TraceEvent, 0, len(b.events))
	out = append(out, b.events[b.next:]...)
	return append(out, b.events[:b.next]...)
}

// Trace returns the recorded events, oldest first, or nil if tracing is
// disabled.
func (k *Kernel) Trace() []TraceEvent {
	g := k.Lock()
	events := k.trace.snapshot()
	k.Unlock(g)
	return events
}

// TraceUserI records a user event.
func (k *Kernel) TraceUserI(g Locked, arg1, arg2 any) {
	k.checkI(g)
	k.trace.record(TraceEvent{Kind: TraceUser, Time: k.vt.systime, Thread: k.current.name, Arg1: arg1, Arg2: arg2})
}

// TraceUser is the public variant of TraceUserI.
func (k *Kernel) TraceUser(arg1, arg2 any) {
	g := k.Lock()
	k.TraceUserI(g, arg1, arg2)
	k.Unlock(g)
}
