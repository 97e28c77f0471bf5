package rtkernel

// registry lists every live thread, oldest first, through Thread.older and
// Thread.newer.
type registry struct {
	oldest, newest *Thread
	count          int
}

func (r *registry) add(t *Thread) {
	t.older = r.newest
	t.newer = nil
	if r.newest != nil {
		r.newest.newer = t
	} else {
		r.oldest = t
	}
	r.newest = t
	r.count++
}

func (r *registry) remove(t *Thread) {
	if t.older != nil {
		t.older.newer = t.newer
	} else {
		r.oldest = t.newer
	}
	if t.newer != nil {
		t.newer.older = t.older
	} else {
		r.newest = t.older
	}
	t.older, t.newer = nil, nil
	r.count--
}

// FirstThread returns the oldest thread in the registry, with a reference
// added, to be released by [Kernel.NextThread] or [Thread.Release].
//
//	for t := k.FirstThread(); t != nil; t = k.NextThread(t) {
//		// inspect t
//	}
func (k *Kernel) FirstThread() *Thread {
	g := k.Lock()
	t := k.registry.oldest
	if t != nil {
		t.refs++
	}
	k.Unlock(g)
	return t
}

// NextThread releases t and returns the next newer thread, with a
// reference added, or nil.
func (k *Kernel) NextThread(t *Thread) *Thread {
	g := k.Lock()
	n := t.newer
	if n != nil {
		n.refs++
	}
	k.Unlock(g)
	t.Release()
	return n
}

// ThreadCount returns the number of threads in the registry, including
// exited threads that are still referenced.
func (k *Kernel) ThreadCount() int {
	g := k.Lock()
	n := k.registry.count
	k.Unlock(g)
	return n
}

// FindThreadByName returns the oldest registered thread with the name, with
// a reference added, or nil.
func (k *Kernel) FindThreadByName(name string) *Thread {
	for t := k.FirstThread(); t != nil; t = k.NextThread(t) {
		if t.name == name {
			return t
		}
	}
	return nil
}

// FindThread returns t, with a reference added, if it is registered.
func (k *Kernel) FindThread(t *Thread) *Thread {
	for p := k.FirstThread(); p != nil; p = k.NextThread(p) {
		if p == t {
			return p
		}
	}
	return nil
}
