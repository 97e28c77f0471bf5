package rtkernel

// Mutex is a non-recursive mutex with a priority ordered wait queue.
// Unlocking hands ownership directly to the highest priority waiter.
//
// How ownership affects priorities depends on the kernel's
// [PriorityProtocol].
type Mutex struct {
	k     *Kernel
	owner *Thread
	// next held mutex of the same owner
	next    *Mutex
	queue   threadQueue
	ceiling Priority
}

// NewMutex returns an unowned mutex.
func NewMutex(k *Kernel) *Mutex {
	return &Mutex{k: k}
}

// SetCeiling sets the priority ceiling used with [ProtocolCeiling]. It must
// be called while the mutex is unowned.
func (m *Mutex) SetCeiling(p Priority) {
	g := m.k.Lock()
	if m.owner != nil {
		m.k.halt(`mutex ceiling changed while owned`)
	}
	m.ceiling = p
	m.k.Unlock(g)
}

// Owner returns the owning thread, or nil.
func (m *Mutex) Owner() *Thread {
	g := m.k.Lock()
	t := m.owner
	m.k.Unlock(g)
	return t
}

// OwnerI returns the owning thread, or nil.
func (m *Mutex) OwnerI(g Locked) *Thread {
	m.k.checkI(g)
	return m.owner
}

// HasWaitersI reports whether any thread is blocked on the mutex.
func (m *Mutex) HasWaitersI(g Locked) bool {
	m.k.checkI(g)
	return !m.queue.isEmpty()
}

// checkCeiling halts if t is above the ceiling of m, before t can queue.
func (m *Mutex) checkCeiling(t *Thread) {
	if m.k.opts.protocol == ProtocolCeiling && m.ceiling != NoPriority && t.realprio > m.ceiling {
		m.k.halt(`mutex locked above its ceiling`)
	}
}

// acquire makes t the owner, pushing m onto t's held chain.
func (m *Mutex) acquire(t *Thread) {
	if m.k.opts.protocol == ProtocolCeiling && m.ceiling != NoPriority {
		if m.ceiling > t.prio {
			t.prio = m.ceiling
			if t.state == StateReady {
				t.requeuePrio()
			}
		}
	}
	m.owner = t
	m.next = t.mtxlist
	t.mtxlist = m
}

// LockS acquires the mutex, blocking while another thread owns it.
func (m *Mutex) LockS(g *Guard) {
	k := m.k
	k.checkS(g)
	ctp := k.current
	m.checkCeiling(ctp)
	if m.owner == nil {
		m.acquire(ctp)
		return
	}
	if m.owner == ctp {
		k.halt(`recursive mutex lock`)
	}
	if k.opts.protocol == ProtocolInheritance {
		k.boostOwners(m, ctp.prio)
	}
	ctp.wtobj = m
	m.queue.insertPrio(ctp)
	k.goSleepS(StateWtMtx)
	if m.owner != ctp {
		k.halt(`mutex not transferred to the woken waiter`)
	}
}

// boostOwners raises the owner of m, and transitively the owners of the
// mutexes it waits on, to prio.
func (k *Kernel) boostOwners(m *Mutex, prio Priority) {
	for tp := m.owner; tp != nil && tp.prio < prio; {
		tp.prio = prio
		switch tp.state {
		case StateWtMtx:
			tp.requeuePrio()
			tp = tp.wtobj.(*Mutex).owner
			continue
		case StateReady:
			tp.requeuePrio()
		}
		break
	}
}

// Lock is the public variant of LockS.
func (m *Mutex) Lock() {
	g := m.k.Lock()
	m.LockS(g)
	m.k.Unlock(g)
}

// TryLockS acquires the mutex if it is unowned.
func (m *Mutex) TryLockS(g *Guard) bool {
	m.k.checkS(g)
	m.checkCeiling(m.k.current)
	if m.owner == m.k.current {
		m.k.halt(`recursive mutex lock`)
	}
	if m.owner != nil {
		return false
	}
	m.acquire(m.k.current)
	return true
}

// TryLock is the public variant of TryLockS.
func (m *Mutex) TryLock() bool {
	g := m.k.Lock()
	ok := m.TryLockS(g)
	m.k.Unlock(g)
	return ok
}

// unchain removes m from its owner's held chain.
func (m *Mutex) unchain() {
	t := m.owner
	for p := &t.mtxlist; *p != nil; p = &(*p).next {
		if *p == m {
			*p = m.next
			m.next = nil
			return
		}
	}
	m.k.halt(`mutex missing from owner chain`)
}

// handOver releases m, which must already be unchained, to its highest
// priority waiter, readying it. It does not reschedule.
func (m *Mutex) handOver() {
	tp := m.queue.popFront()
	if tp == nil {
		m.owner = nil
		return
	}
	tp.wtobj = nil
	m.acquire(tp)
	m.k.readyI(tp, MsgOK)
}

// recomputePriority derives t's priority from its real priority and the
// mutexes it still holds.
func (k *Kernel) recomputePriority(t *Thread) {
	prio := t.realprio
	for lm := t.mtxlist; lm != nil; lm = lm.next {
		switch k.opts.protocol {
		case ProtocolInheritance:
			if w := lm.queue.first(); w != nil && w.prio > prio {
				prio = w.prio
			}
		case ProtocolCeiling:
			if lm.ceiling > prio {
				prio = lm.ceiling
			}
		}
	}
	t.prio = prio
}

// unlockI releases m, owned by the running thread, without rescheduling.
func (m *Mutex) unlockI() {
	k := m.k
	ctp := k.current
	if m.owner != ctp {
		k.halt(`mutex unlocked by a thread that does not own it`)
	}
	m.unchain()
	k.recomputePriority(ctp)
	m.handOver()
}

// UnlockS releases the mutex without rescheduling. The caller must call
// [Kernel.RescheduleS] before releasing the gate. Mutexes may be unlocked
// in any order.
func (m *Mutex) UnlockS(g *Guard) {
	m.k.checkS(g)
	m.unlockI()
}

// Unlock releases the mutex, switching to the new owner if it outranks the
// caller.
func (m *Mutex) Unlock() {
	g := m.k.Lock()
	m.unlockI()
	m.k.RescheduleS(g)
	m.k.Unlock(g)
}

// releaseAllMutexesI releases every mutex held by t, in chain order, and
// restores its real priority.
func (k *Kernel) releaseAllMutexesI(t *Thread) {
	for m := t.mtxlist; m != nil; m = t.mtxlist {
		t.mtxlist = m.next
		m.next = nil
		m.handOver()
	}
	t.prio = t.realprio
}

// UnlockAllMutexesS releases every mutex held by the running thread,
// without rescheduling.
func (k *Kernel) UnlockAllMutexesS(g *Guard) {
	k.checkS(g)
	k.releaseAllMutexesI(k.current)
}

// UnlockAllMutexes releases every mutex held by the running thread.
func (k *Kernel) UnlockAllMutexes() {
	g := k.Lock()
	k.releaseAllMutexesI(k.current)
	k.RescheduleS(g)
	k.Unlock(g)
}
