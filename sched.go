package rtkernel

// readyI puts t on the ready list behind threads of equal priority, with
// msg as its wakeup message. It does not reschedule.
func (k *Kernel) readyI(t *Thread, msg Msg) *Thread {
	if t.state == StateReady || t.state == StateFinal || t.state == StateCurrent {
		k.halt(`invalid state for ready: ` + t.state.String())
	}
	t.rdymsg = msg
	t.state = StateReady
	k.rlist.insertPrio(t)
	return t
}

// readyAheadI puts t on the ready list ahead of threads of equal priority.
func (k *Kernel) readyAheadI(t *Thread) *Thread {
	t.state = StateReady
	k.rlist.insertPrioAhead(t)
	return t
}

// switchTo makes ntp current and switches from otp, which must already be
// in its new state.
func (k *Kernel) switchTo(ntp, otp *Thread) {
	ntp.state = StateCurrent
	k.current = ntp
	if k.stats != nil {
		k.stats.switches++
	}
	k.trace.record(TraceEvent{
		Kind:      TraceSwitch,
		Time:      k.vt.systime,
		Thread:    ntp.name,
		Prev:      otp.name,
		PrevState: otp.state,
		WakeMsg:   ntp.rdymsg,
	})
	k.logSwitch(ntp, otp)
	k.port.Switch(ntp.ctx, otp.ctx, otp.state == StateFinal)
}

// goSleepS puts the running thread into state and runs the next ready
// thread. It returns once the thread is woken.
func (k *Kernel) goSleepS(state ThreadState) {
	otp := k.current
	if otp == k.idle {
		k.halt(`idle thread cannot block`)
	}
	otp.state = state
	if k.opts.quantum > 0 {
		otp.ticks = k.opts.quantum
	}
	k.switchTo(k.rlist.popFront(), otp)
}

// goSleepTimeoutS is goSleepS with a timeout, returning the wakeup message,
// [MsgTimeout] if the timeout won. The caller must have queued the thread
// wherever wakeupTimeoutI expects for state.
func (k *Kernel) goSleepTimeoutS(state ThreadState, timeout Interval) Msg {
	t := k.current
	if timeout == TimeInfinite {
		k.goSleepS(state)
		return t.rdymsg
	}
	t.timeout.setI(timeout, wakeupTimeout, t)
	k.goSleepS(state)
	if t.timeout.armed {
		k.vt.remove(&t.timeout)
	}
	return t.rdymsg
}

// wakeupTimeout is the timeout callback, removing the thread from whatever
// it waits on. If the thread was already readied, the wakeup won the race.
func wakeupTimeout(g *ISRGuard, arg any) {
	t := arg.(*Thread)
	k := t.k
	switch t.state {
	case StateReady:
		return
	case StateSuspended:
		t.wtobj.(*ThreadReference).t = nil
	case StateWtSem:
		t.wtobj.(*Semaphore).cnt++
		t.dequeue()
	case StateQueued, StateWtCond:
		t.dequeue()
	case StateSleeping, StateWtOrEvt, StateWtAndEvt, StateWtMsg:
	default:
		k.halt(`timeout in state ` + t.state.String())
	}
	k.readyI(t, MsgTimeout)
}

// wakeupS readies ntp with msg, switching to it at once if it outranks the
// running thread.
func (k *Kernel) wakeupS(ntp *Thread, msg Msg) {
	otp := k.current
	if ntp.prio <= otp.prio {
		k.readyI(ntp, msg)
		return
	}
	if ntp.state == StateReady || ntp.state == StateFinal || ntp.state == StateCurrent {
		k.halt(`invalid state for wakeup: ` + ntp.state.String())
	}
	ntp.rdymsg = msg
	k.readyAheadI(otp)
	k.switchTo(ntp, otp)
}

// firstPrio returns the priority of the ready list head, or NoPriority.
func (k *Kernel) firstPrio() Priority {
	if t := k.rlist.first(); t != nil {
		return t.prio
	}
	return NoPriority
}

// IsRescheduleRequiredI reports whether a ready thread outranks the running
// one.
func (k *Kernel) IsRescheduleRequiredI(g Locked) bool {
	k.checkI(g)
	return k.firstPrio() > k.current.prio
}

// RescheduleS switches to the ready list head if it outranks the running
// thread, which stays ahead of its priority peers.
func (k *Kernel) RescheduleS(g *Guard) {
	k.checkS(g)
	if k.firstPrio() > k.current.prio {
		k.doRescheduleAheadS()
	}
}

// Reschedule is the public variant of RescheduleS.
func (k *Kernel) Reschedule() {
	g := k.Lock()
	k.RescheduleS(g)
	k.Unlock(g)
}

func (k *Kernel) doRescheduleAheadS() {
	otp := k.current
	ntp := k.rlist.popFront()
	k.readyAheadI(otp)
	k.switchTo(ntp, otp)
}

// canYieldS reports whether a ready thread has at least the running
// thread's priority.
func (k *Kernel) canYieldS() bool {
	t := k.rlist.first()
	return t != nil && t.prio >= k.current.prio
}

// doYieldS switches to the ready list head, queueing the running thread
// behind its priority peers with a fresh quantum.
func (k *Kernel) doYieldS() {
	otp := k.current
	ntp := k.rlist.popFront()
	otp.ticks = k.opts.quantum
	otp.state = StateReady
	k.rlist.insertPrio(otp)
	k.switchTo(ntp, otp)
}

// isPreemptionRequired decides whether the ready list head should preempt
// the running thread. With a time quantum, peers preempt a thread that has
// used up its quantum.
func (k *Kernel) isPreemptionRequired() bool {
	p1, p2 := k.firstPrio(), k.current.prio
	if k.opts.quantum > 0 && k.current.ticks == 0 {
		return p1 >= p2
	}
	return p1 > p2
}

// doPreemption switches to the ready list head. A thread preempted with
// quantum left stays ahead of its peers.
func (k *Kernel) doPreemption() {
	otp := k.current
	if k.opts.quantum > 0 && otp.ticks == 0 {
		k.doYieldS()
		return
	}
	ntp := k.rlist.popFront()
	k.readyAheadI(otp)
	k.switchTo(ntp, otp)
}
