package rtkernel

// ThreadsQueue is a generic FIFO queue of waiting threads, for building
// other synchronization objects.
type ThreadsQueue struct {
	k     *Kernel
	queue threadQueue
}

// NewThreadsQueue returns an empty queue.
func NewThreadsQueue(k *Kernel) *ThreadsQueue {
	return &ThreadsQueue{k: k}
}

// IsEmptyI reports whether no thread is queued.
func (q *ThreadsQueue) IsEmptyI(g Locked) bool {
	q.k.checkI(g)
	return q.queue.isEmpty()
}

// EnqueueTimeoutS queues the running thread in the QUEUED state until
// dequeued, returning the message it was dequeued with, or [MsgTimeout].
func (q *ThreadsQueue) EnqueueTimeoutS(g *Guard, timeout Interval) Msg {
	q.k.checkS(g)
	if timeout == TimeImmediate {
		return MsgTimeout
	}
	t := q.k.current
	t.wtobj = q
	q.queue.pushBack(t)
	return q.k.goSleepTimeoutS(StateQueued, timeout)
}

// DequeueNextI readies the longest queued thread with msg, if any.
func (q *ThreadsQueue) DequeueNextI(g Locked, msg Msg) {
	q.k.checkI(g)
	if t := q.queue.popFront(); t != nil {
		q.dequeued(t, msg)
	}
}

// DequeueAllI readies every queued thread with msg, in FIFO order.
func (q *ThreadsQueue) DequeueAllI(g Locked, msg Msg) {
	q.k.checkI(g)
	for t := q.queue.popFront(); t != nil; t = q.queue.popFront() {
		q.dequeued(t, msg)
	}
}

func (q *ThreadsQueue) dequeued(t *Thread, msg Msg) {
	if t.state != StateQueued {
		q.k.halt(`dequeued thread not in QUEUED`)
	}
	q.k.readyI(t, msg)
}

// Wait is the public variant of EnqueueTimeoutS.
func (q *ThreadsQueue) Wait(timeout Interval) Msg {
	g := q.k.Lock()
	msg := q.EnqueueTimeoutS(g, timeout)
	q.k.Unlock(g)
	return msg
}

// Wake readies the longest queued thread with msg, if any.
func (q *ThreadsQueue) Wake(msg Msg) {
	g := q.k.Lock()
	q.DequeueNextI(g, msg)
	q.k.RescheduleS(g)
	q.k.Unlock(g)
}

// WakeAll readies every queued thread with msg.
func (q *ThreadsQueue) WakeAll(msg Msg) {
	g := q.k.Lock()
	q.DequeueAllI(g, msg)
	q.k.RescheduleS(g)
	q.k.Unlock(g)
}

// ThreadReference holds at most one thread suspended on it, typically
// resumed by an interrupt handler.
type ThreadReference struct {
	k *Kernel
	t *Thread
}

// NewThreadReference returns an empty reference.
func NewThreadReference(k *Kernel) *ThreadReference {
	return &ThreadReference{k: k}
}

// IsEmptyI reports whether no thread is suspended on r.
func (r *ThreadReference) IsEmptyI(g Locked) bool {
	r.k.checkI(g)
	return r.t == nil
}

// SuspendTimeoutS suspends the running thread on r until resumed,
// returning the resume message, or [MsgTimeout].
func (r *ThreadReference) SuspendTimeoutS(g *Guard, timeout Interval) Msg {
	r.k.checkS(g)
	if r.t != nil {
		r.k.halt(`thread reference already in use`)
	}
	if timeout == TimeImmediate {
		return MsgTimeout
	}
	t := r.k.current
	r.t = t
	t.wtobj = r
	return r.k.goSleepTimeoutS(StateSuspended, timeout)
}

// SuspendS is SuspendTimeoutS without a timeout.
func (r *ThreadReference) SuspendS(g *Guard) Msg {
	return r.SuspendTimeoutS(g, TimeInfinite)
}

// Suspend is the public variant of SuspendTimeoutS.
func (r *ThreadReference) Suspend(timeout Interval) Msg {
	g := r.k.Lock()
	msg := r.SuspendTimeoutS(g, timeout)
	r.k.Unlock(g)
	return msg
}

func (r *ThreadReference) take() *Thread {
	t := r.t
	if t == nil {
		return nil
	}
	r.t = nil
	if t.state != StateSuspended {
		r.k.halt(`resumed thread not in SUSPENDED`)
	}
	return t
}

// ResumeI readies the suspended thread with msg, if any.
func (r *ThreadReference) ResumeI(g Locked, msg Msg) {
	r.k.checkI(g)
	if t := r.take(); t != nil {
		r.k.readyI(t, msg)
	}
}

// ResumeS wakes the suspended thread with msg, if any.
func (r *ThreadReference) ResumeS(g *Guard, msg Msg) {
	r.k.checkS(g)
	if t := r.take(); t != nil {
		r.k.wakeupS(t, msg)
	}
}

// Resume is the public variant of ResumeS.
func (r *ThreadReference) Resume(msg Msg) {
	g := r.k.Lock()
	r.ResumeS(g, msg)
	r.k.Unlock(g)
}
