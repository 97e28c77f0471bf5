package rtkernel

import (
	"github.com/joeycumines/logiface"
)

type (
	// TimerFunc is a virtual timer callback. It runs from the tick
	// interrupt, with the gate held, so it may only call "I" functions.
	TimerFunc func(g *ISRGuard, arg any)

	// VirtualTimer calls a function after a number of ticks, once or
	// periodically. Create one with [NewVirtualTimer].
	VirtualTimer struct {
		k          *Kernel
		next, prev *VirtualTimer
		fn         TimerFunc
		arg        any
		// delta is the ticks after the previous timer in the list
		delta  Interval
		reload Interval
		armed  bool
	}

	// vtList is the delta list of armed timers, plus the tick counter.
	// Outside of vtDoTickI, the head's delta is never zero.
	vtList struct {
		head, tail *VirtualTimer
		systime    SysTime
	}
)

// NewVirtualTimer returns an inert timer.
func NewVirtualTimer(k *Kernel) *VirtualTimer {
	return &VirtualTimer{k: k}
}

// insert links vt at delay ticks from now. Timers due on the same tick fire
// in the order they were armed.
func (l *vtList) insert(vt *VirtualTimer, delay Interval) {
	p := l.head
	for p != nil && p.delta <= delay {
		delay -= p.delta
		p = p.next
	}
	vt.delta = delay
	vt.next = p
	if p == nil {
		vt.prev = l.tail
		if l.tail != nil {
			l.tail.next = vt
		} else {
			l.head = vt
		}
		l.tail = vt
	} else {
		vt.prev = p.prev
		if p.prev != nil {
			p.prev.next = vt
		} else {
			l.head = vt
		}
		p.prev = vt
		p.delta -= delay
	}
	vt.armed = true
}

// remove unlinks vt, giving its delta to its successor.
func (l *vtList) remove(vt *VirtualTimer) {
	if vt.next != nil {
		vt.next.delta += vt.delta
		vt.next.prev = vt.prev
	} else {
		l.tail = vt.prev
	}
	if vt.prev != nil {
		vt.prev.next = vt.next
	} else {
		l.head = vt.next
	}
	vt.next, vt.prev = nil, nil
	vt.delta = 0
	vt.armed = false
}

// vtDoTickI advances the system time by one tick, firing due timers.
func (k *Kernel) vtDoTickI(g *ISRGuard) {
	l := &k.vt
	l.systime++
	if l.head == nil {
		return
	}
	l.head.delta--
	for vt := l.head; vt != nil && vt.delta == 0; vt = l.head {
		l.remove(vt)
		if b := k.logAt(logiface.LevelTrace, categoryTimer); b.Enabled() {
			b.Uint64(`time`, uint64(l.systime)).
				Bool(`periodic`, vt.reload > 0).
				Log(`timer fired`)
		}
		vt.fn(g, vt.arg)
		// the callback may have reset or re-armed it
		if vt.reload > 0 && !vt.armed {
			l.insert(vt, vt.reload)
		}
	}
}

// setI arms vt, without checks. A zero delay fires on the next tick.
func (vt *VirtualTimer) setI(delay Interval, fn TimerFunc, arg any) {
	l := &vt.k.vt
	if vt.armed {
		l.remove(vt)
	}
	if delay == TimeImmediate {
		delay = 1
	}
	vt.fn = fn
	vt.arg = arg
	vt.reload = 0
	l.insert(vt, delay)
}

func (vt *VirtualTimer) checkSet(g Locked, delay Interval, fn TimerFunc) {
	vt.k.checkI(g)
	if fn == nil {
		vt.k.halt(`timer without a callback`)
	}
	if delay == TimeInfinite {
		vt.k.halt(`timer delay is infinite`)
	}
}

// SetI arms the timer to fire once, after delay ticks, cancelling any
// previous arming. A delay of zero fires on the next tick.
func (vt *VirtualTimer) SetI(g Locked, delay Interval, fn TimerFunc, arg any) {
	vt.checkSet(g, delay, fn)
	vt.setI(delay, fn, arg)
}

// SetContinuousI arms the timer to fire every delay ticks, until reset.
func (vt *VirtualTimer) SetContinuousI(g Locked, delay Interval, fn TimerFunc, arg any) {
	vt.checkSet(g, delay, fn)
	vt.setI(delay, fn, arg)
	vt.reload = vt.delayOrOne(delay)
}

func (vt *VirtualTimer) delayOrOne(delay Interval) Interval {
	if delay == TimeImmediate {
		return 1
	}
	return delay
}

// ResetI disarms the timer. It is a no-op if the timer is inert.
func (vt *VirtualTimer) ResetI(g Locked) {
	vt.k.checkI(g)
	vt.reload = 0
	if vt.armed {
		vt.k.vt.remove(vt)
	}
}

// IsArmedI reports whether the timer is armed.
func (vt *VirtualTimer) IsArmedI(g Locked) bool {
	vt.k.checkI(g)
	return vt.armed
}

// RemainingI returns the ticks until the timer fires, or 0 if inert.
func (vt *VirtualTimer) RemainingI(g Locked) Interval {
	vt.k.checkI(g)
	if !vt.armed {
		return 0
	}
	var n Interval
	for p := vt.k.vt.head; p != nil; p = p.next {
		n += p.delta
		if p == vt {
			break
		}
	}
	return n
}

// ReloadI returns the period of a continuous timer, or 0.
func (vt *VirtualTimer) ReloadI(g Locked) Interval {
	vt.k.checkI(g)
	return vt.reload
}

// Set is the public variant of SetI.
func (vt *VirtualTimer) Set(delay Interval, fn TimerFunc, arg any) {
	g := vt.k.Lock()
	vt.SetI(g, delay, fn, arg)
	vt.k.Unlock(g)
}

// SetContinuous is the public variant of SetContinuousI.
func (vt *VirtualTimer) SetContinuous(delay Interval, fn TimerFunc, arg any) {
	g := vt.k.Lock()
	vt.SetContinuousI(g, delay, fn, arg)
	vt.k.Unlock(g)
}

// Reset is the public variant of ResetI.
func (vt *VirtualTimer) Reset() {
	g := vt.k.Lock()
	vt.ResetI(g)
	vt.k.Unlock(g)
}

// IsArmed is the public variant of IsArmedI.
func (vt *VirtualTimer) IsArmed() bool {
	g := vt.k.Lock()
	v := vt.IsArmedI(g)
	vt.k.Unlock(g)
	return v
}

// Remaining is the public variant of RemainingI.
func (vt *VirtualTimer) Remaining() Interval {
	g := vt.k.Lock()
	v := vt.RemainingI(g)
	vt.k.Unlock(g)
	return v
}
