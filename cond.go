package rtkernel

// CondVar is a condition variable with a FIFO wait queue, used together
// with a [Mutex].
type CondVar struct {
	k     *Kernel
	queue threadQueue
}

// NewCondVar returns a condition variable with no waiters.
func NewCondVar(k *Kernel) *CondVar {
	return &CondVar{k: k}
}

// WaitTimeoutS atomically unlocks m, which the caller must own, and waits
// to be signalled. The mutex is locked again before returning, on every
// path. It returns [MsgOK] if signalled, [MsgReset] if broadcast, or
// [MsgTimeout]. A [TimeImmediate] timeout returns MsgTimeout without
// unlocking.
func (c *CondVar) WaitTimeoutS(g *Guard, m *Mutex, timeout Interval) Msg {
	k := c.k
	k.checkS(g)
	ctp := k.current
	if m.owner != ctp {
		k.halt(`condvar wait without owning the mutex`)
	}
	if timeout == TimeImmediate {
		return MsgTimeout
	}
	m.unlockI()
	ctp.wtobj = c
	c.queue.pushBack(ctp)
	msg := k.goSleepTimeoutS(StateWtCond, timeout)
	m.LockS(g)
	return msg
}

// WaitS is WaitTimeoutS without a timeout.
func (c *CondVar) WaitS(g *Guard, m *Mutex) Msg {
	return c.WaitTimeoutS(g, m, TimeInfinite)
}

// WaitTimeout is the public variant of WaitTimeoutS.
func (c *CondVar) WaitTimeout(m *Mutex, timeout Interval) Msg {
	g := c.k.Lock()
	msg := c.WaitTimeoutS(g, m, timeout)
	c.k.Unlock(g)
	return msg
}

// Wait is the public variant of WaitS.
func (c *CondVar) Wait(m *Mutex) Msg {
	return c.WaitTimeout(m, TimeInfinite)
}

// SignalI readies the longest waiting thread, if any.
func (c *CondVar) SignalI(g Locked) {
	c.k.checkI(g)
	if t := c.queue.popFront(); t != nil {
		c.k.readyI(t, MsgOK)
	}
}

// Signal wakes the longest waiting thread, if any.
func (c *CondVar) Signal() {
	g := c.k.Lock()
	if t := c.queue.popFront(); t != nil {
		c.k.wakeupS(t, MsgOK)
	}
	c.k.Unlock(g)
}

// BroadcastI readies every waiting thread, in FIFO order, with [MsgReset].
func (c *CondVar) BroadcastI(g Locked) {
	c.k.checkI(g)
	for t := c.queue.popFront(); t != nil; t = c.queue.popFront() {
		c.k.readyI(t, MsgReset)
	}
}

// Broadcast wakes every waiting thread.
func (c *CondVar) Broadcast() {
	g := c.k.Lock()
	c.BroadcastI(g)
	c.k.RescheduleS(g)
	c.k.Unlock(g)
}
