package rtkernel

// Semaphore is a counting semaphore with a FIFO wait queue.
//
// A positive count means no thread is waiting. A count of -n means n
// threads are waiting.
type Semaphore struct {
	k     *Kernel
	queue threadQueue
	cnt   int32
}

// NewSemaphore returns a semaphore with the given initial count, which
// must not be negative.
func NewSemaphore(k *Kernel, n int32) *Semaphore {
	if n < 0 {
		k.halt(`negative semaphore count`)
	}
	return &Semaphore{k: k, cnt: n}
}

// CountI returns the counter.
func (s *Semaphore) CountI(g Locked) int32 {
	s.k.checkI(g)
	return s.cnt
}

// Count returns the counter.
func (s *Semaphore) Count() int32 {
	g := s.k.Lock()
	n := s.cnt
	s.k.Unlock(g)
	return n
}

// WaitTimeoutS decrements the counter, blocking while it is negative. It
// returns [MsgOK], [MsgTimeout], or the message passed to a reset.
func (s *Semaphore) WaitTimeoutS(g *Guard, timeout Interval) Msg {
	s.k.checkS(g)
	s.cnt--
	if s.cnt >= 0 {
		return MsgOK
	}
	if timeout == TimeImmediate {
		s.cnt++
		return MsgTimeout
	}
	t := s.k.current
	t.wtobj = s
	s.queue.pushBack(t)
	return s.k.goSleepTimeoutS(StateWtSem, timeout)
}

// WaitS is WaitTimeoutS without a timeout.
func (s *Semaphore) WaitS(g *Guard) Msg {
	return s.WaitTimeoutS(g, TimeInfinite)
}

// WaitTimeout is the public variant of WaitTimeoutS.
func (s *Semaphore) WaitTimeout(timeout Interval) Msg {
	g := s.k.Lock()
	msg := s.WaitTimeoutS(g, timeout)
	s.k.Unlock(g)
	return msg
}

// Wait is the public variant of WaitS.
func (s *Semaphore) Wait() Msg {
	return s.WaitTimeout(TimeInfinite)
}

// takeWaiter removes the longest waiting thread, which must exist.
func (s *Semaphore) takeWaiter() *Thread {
	t := s.queue.popFront()
	if t == nil || t.state != StateWtSem {
		s.k.halt(`semaphore counter and queue disagree`)
	}
	return t
}

// SignalI increments the counter, readying the longest waiting thread if
// there is one.
func (s *Semaphore) SignalI(g Locked) {
	s.k.checkI(g)
	s.cnt++
	if s.cnt <= 0 {
		s.k.readyI(s.takeWaiter(), MsgOK)
	}
}

// SignalS is SignalI, switching to the woken thread if it outranks the
// caller.
func (s *Semaphore) SignalS(g *Guard) {
	s.k.checkS(g)
	s.cnt++
	if s.cnt <= 0 {
		s.k.wakeupS(s.takeWaiter(), MsgOK)
	}
}

// Signal is the public variant of SignalS.
func (s *Semaphore) Signal() {
	g := s.k.Lock()
	s.SignalS(g)
	s.k.Unlock(g)
}

// AddCounterI adds n, which must be positive, readying up to n waiters.
func (s *Semaphore) AddCounterI(g Locked, n int32) {
	s.k.checkI(g)
	if n <= 0 {
		s.k.halt(`semaphore counter increment not positive`)
	}
	for ; n > 0; n-- {
		s.cnt++
		if s.cnt <= 0 {
			s.k.readyI(s.takeWaiter(), MsgOK)
		}
	}
}

// ResetWithMessageI wakes every waiter, in FIFO order, with msg, then sets
// the counter to n.
func (s *Semaphore) ResetWithMessageI(g Locked, n int32, msg Msg) {
	s.k.checkI(g)
	if n < 0 {
		s.k.halt(`negative semaphore count`)
	}
	for !s.queue.isEmpty() {
		s.k.readyI(s.takeWaiter(), msg)
	}
	s.cnt = n
}

// ResetI is ResetWithMessageI with [MsgReset].
func (s *Semaphore) ResetI(g Locked, n int32) {
	s.ResetWithMessageI(g, n, MsgReset)
}

// ResetWithMessage is the public variant of ResetWithMessageI.
func (s *Semaphore) ResetWithMessage(n int32, msg Msg) {
	g := s.k.Lock()
	s.ResetWithMessageI(g, n, msg)
	s.k.RescheduleS(g)
	s.k.Unlock(g)
}

// Reset is the public variant of ResetI.
func (s *Semaphore) Reset(n int32) {
	s.ResetWithMessage(n, MsgReset)
}

// FastWaitI decrements a counter known to be positive.
func (s *Semaphore) FastWaitI(g Locked) {
	s.k.checkI(g)
	if s.cnt <= 0 {
		s.k.halt(`semaphore fast wait would block`)
	}
	s.cnt--
}

// FastSignalI increments a counter known to have no waiters.
func (s *Semaphore) FastSignalI(g Locked) {
	s.k.checkI(g)
	if s.cnt < 0 {
		s.k.halt(`semaphore fast signal with waiters`)
	}
	s.cnt++
}

// SignalWait atomically signals sps and waits on spw.
func (k *Kernel) SignalWait(sps, spw *Semaphore) Msg {
	g := k.Lock()
	sps.SignalI(g)
	spw.cnt--
	var msg Msg
	if spw.cnt < 0 {
		t := k.current
		t.wtobj = spw
		spw.queue.pushBack(t)
		k.goSleepS(StateWtSem)
		msg = t.rdymsg
	} else {
		k.RescheduleS(g)
		msg = MsgOK
	}
	k.Unlock(g)
	return msg
}

// BinarySemaphore is a semaphore whose count is 0 (taken) or 1.
type BinarySemaphore struct {
	sem Semaphore
}

// NewBinarySemaphore returns a binary semaphore, taken or not.
func NewBinarySemaphore(k *Kernel, taken bool) *BinarySemaphore {
	b := &BinarySemaphore{sem: Semaphore{k: k}}
	if !taken {
		b.sem.cnt = 1
	}
	return b
}

// WaitTimeoutS takes the semaphore, see [Semaphore.WaitTimeoutS].
func (b *BinarySemaphore) WaitTimeoutS(g *Guard, timeout Interval) Msg {
	return b.sem.WaitTimeoutS(g, timeout)
}

// WaitTimeout takes the semaphore, see [Semaphore.WaitTimeout].
func (b *BinarySemaphore) WaitTimeout(timeout Interval) Msg {
	return b.sem.WaitTimeout(timeout)
}

// Wait takes the semaphore.
func (b *BinarySemaphore) Wait() Msg {
	return b.sem.Wait()
}

// SignalI releases the semaphore. Releasing a semaphore that is not taken
// has no effect.
func (b *BinarySemaphore) SignalI(g Locked) {
	b.sem.k.checkI(g)
	if b.sem.cnt < 1 {
		b.sem.SignalI(g)
	}
}

// Signal is the public variant of SignalI.
func (b *BinarySemaphore) Signal() {
	k := b.sem.k
	g := k.Lock()
	b.SignalI(g)
	k.RescheduleS(g)
	k.Unlock(g)
}

// ResetI wakes all waiters with [MsgReset], leaving the semaphore taken or
// not.
func (b *BinarySemaphore) ResetI(g Locked, taken bool) {
	var n int32
	if !taken {
		n = 1
	}
	b.sem.ResetI(g, n)
}

// Reset is the public variant of ResetI.
func (b *BinarySemaphore) Reset(taken bool) {
	k := b.sem.k
	g := k.Lock()
	b.ResetI(g, taken)
	k.RescheduleS(g)
	k.Unlock(g)
}

// IsTakenI reports whether the semaphore is taken.
func (b *BinarySemaphore) IsTakenI(g Locked) bool {
	b.sem.k.checkI(g)
	return b.sem.cnt <= 0
}

// IsTaken is the public variant of IsTakenI.
func (b *BinarySemaphore) IsTaken() bool {
	k := b.sem.k
	g := k.Lock()
	v := b.IsTakenI(g)
	k.Unlock(g)
	return v
}
