package rtkernel

// threadQueue is an intrusive doubly linked list of threads, through
// Thread.next and Thread.prev. A thread is on at most one queue at a time,
// recorded by Thread.queue.
type threadQueue struct {
	head, tail *Thread
}

func (q *threadQueue) isEmpty() bool {
	return q.head == nil
}

func (q *threadQueue) first() *Thread {
	return q.head
}

// insertBefore links t before at, or at the tail if at is nil.
func (q *threadQueue) insertBefore(t, at *Thread) {
	if t.queue != nil {
		t.k.halt(`thread already queued`)
	}
	t.queue = q
	t.next = at
	if at == nil {
		t.prev = q.tail
		if q.tail != nil {
			q.tail.next = t
		} else {
			q.head = t
		}
		q.tail = t
		return
	}
	t.prev = at.prev
	if at.prev != nil {
		at.prev.next = t
	} else {
		q.head = t
	}
	at.prev = t
}

// pushBack appends t, for FIFO queues.
func (q *threadQueue) pushBack(t *Thread) {
	q.insertBefore(t, nil)
}

// insertPrio inserts t in priority order, behind threads of equal priority.
func (q *threadQueue) insertPrio(t *Thread) {
	at := q.head
	for at != nil && at.prio >= t.prio {
		at = at.next
	}
	q.insertBefore(t, at)
}

// insertPrioAhead inserts t in priority order, ahead of threads of equal
// priority.
func (q *threadQueue) insertPrioAhead(t *Thread) {
	at := q.head
	for at != nil && at.prio > t.prio {
		at = at.next
	}
	q.insertBefore(t, at)
}

func (q *threadQueue) remove(t *Thread) {
	if t.queue != q {
		t.k.halt(`thread not on queue`)
	}
	if t.prev != nil {
		t.prev.next = t.next
	} else {
		q.head = t.next
	}
	if t.next != nil {
		t.next.prev = t.prev
	} else {
		q.tail = t.prev
	}
	t.next, t.prev, t.queue = nil, nil, nil
}

// popFront removes and returns the head, or nil.
func (q *threadQueue) popFront() *Thread {
	t := q.head
	if t != nil {
		q.remove(t)
	}
	return t
}

// dequeue removes t from whichever queue it is on.
func (t *Thread) dequeue() {
	if t.queue == nil {
		t.k.halt(`thread not queued`)
	}
	t.queue.remove(t)
}

// requeuePrio repositions t after its priority changed.
func (t *Thread) requeuePrio() {
	q := t.queue
	q.remove(t)
	q.insertPrio(t)
}
