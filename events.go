package rtkernel

type (
	// EventMask is a set of events, one bit each.
	EventMask uint32

	// EventFlags are source specific flags, accumulated by listeners.
	EventFlags uint32

	// EventID is the bit index of an event.
	EventID int

	// EventSource is a list of listeners to broadcast to.
	EventSource struct {
		k     *Kernel
		first *EventListener
	}

	// EventListener registers a thread on an [EventSource]. The zero value
	// is ready for use.
	EventListener struct {
		next     *EventListener
		source   *EventSource
		listener *Thread
		events   EventMask
		flags    EventFlags
		wflags   EventFlags
	}
)

const (
	// AllEvents matches every event.
	AllEvents = ^EventMask(0)
	// AllFlags matches every flag.
	AllFlags = ^EventFlags(0)
)

// EventMaskOf returns the mask with only the bit for id set.
func EventMaskOf(id EventID) EventMask {
	return EventMask(1) << id
}

// NewEventSource returns a source with no listeners.
func NewEventSource(k *Kernel) *EventSource {
	return &EventSource{k: k}
}

// Register adds el, for the running thread, posting the single event id.
func (s *EventSource) Register(el *EventListener, id EventID) {
	s.RegisterMaskWithFlags(el, EventMaskOf(id), AllFlags)
}

// RegisterMask adds el, for the running thread, posting events.
func (s *EventSource) RegisterMask(el *EventListener, events EventMask) {
	s.RegisterMaskWithFlags(el, events, AllFlags)
}

// RegisterMaskWithFlags adds el, for the running thread. Broadcasts post
// events to the thread if they carry no flags, or any flag in wflags. All
// flags are accumulated, see [EventListener.GetAndClearFlags].
func (s *EventSource) RegisterMaskWithFlags(el *EventListener, events EventMask, wflags EventFlags) {
	g := s.k.Lock()
	if el.source != nil {
		s.k.halt(`event listener already registered`)
	}
	el.source = s
	el.listener = s.k.current
	el.events = events
	el.flags = 0
	el.wflags = wflags
	el.next = s.first
	s.first = el
	s.k.Unlock(g)
}

// Unregister removes el, if it is registered on s.
func (s *EventSource) Unregister(el *EventListener) {
	g := s.k.Lock()
	for p := &s.first; *p != nil; p = &(*p).next {
		if *p == el {
			*p = el.next
			el.next = nil
			el.source = nil
			break
		}
	}
	s.k.Unlock(g)
}

// IsListeningI reports whether s has any listeners.
func (s *EventSource) IsListeningI(g Locked) bool {
	s.k.checkI(g)
	return s.first != nil
}

// IsListening is the public variant of IsListeningI.
func (s *EventSource) IsListening() bool {
	g := s.k.Lock()
	v := s.first != nil
	s.k.Unlock(g)
	return v
}

// BroadcastFlagsI adds flags to every listener, posting its events to its
// thread if the flags are wanted, without rescheduling.
func (s *EventSource) BroadcastFlagsI(g Locked, flags EventFlags) {
	s.k.checkI(g)
	for el := s.first; el != nil; el = el.next {
		el.flags |= flags
		if flags == 0 || flags&el.wflags != 0 {
			s.k.signalEventsI(el.listener, el.events)
		}
	}
}

// BroadcastFlags is the public variant of BroadcastFlagsI.
func (s *EventSource) BroadcastFlags(flags EventFlags) {
	g := s.k.Lock()
	s.BroadcastFlagsI(g, flags)
	s.k.RescheduleS(g)
	s.k.Unlock(g)
}

// BroadcastI is BroadcastFlagsI without flags.
func (s *EventSource) BroadcastI(g Locked) {
	s.BroadcastFlagsI(g, 0)
}

// Broadcast is BroadcastFlags without flags.
func (s *EventSource) Broadcast() {
	s.BroadcastFlags(0)
}

// GetAndClearFlagsI returns and clears the accumulated flags.
func (el *EventListener) GetAndClearFlagsI(g Locked) EventFlags {
	if el.source != nil {
		el.source.k.checkI(g)
	}
	f := el.flags
	el.flags = 0
	return f
}

// GetAndClearFlags returns and clears the accumulated flags. An
// unregistered listener has none.
func (el *EventListener) GetAndClearFlags() EventFlags {
	s := el.source
	if s == nil {
		return 0
	}
	g := s.k.Lock()
	f := el.GetAndClearFlagsI(g)
	s.k.Unlock(g)
	return f
}

// signalEventsI posts events to t, readying it if its wait is satisfied.
func (k *Kernel) signalEventsI(t *Thread, events EventMask) {
	t.epending |= events
	if (t.state == StateWtOrEvt && t.epending&t.ewmask != 0) ||
		(t.state == StateWtAndEvt && t.epending&t.ewmask == t.ewmask) {
		k.readyI(t, MsgOK)
	}
}

// SignalEventsI posts events directly to t, without rescheduling.
func (k *Kernel) SignalEventsI(g Locked, t *Thread, events EventMask) {
	k.checkI(g)
	k.signalEventsI(t, events)
}

// SignalEvents is the public variant of SignalEventsI.
func (k *Kernel) SignalEvents(t *Thread, events EventMask) {
	g := k.Lock()
	k.signalEventsI(t, events)
	k.RescheduleS(g)
	k.Unlock(g)
}

// AddEvents posts events to the running thread, returning its pending
// events.
func (k *Kernel) AddEvents(events EventMask) EventMask {
	g := k.Lock()
	k.current.epending |= events
	m := k.current.epending
	k.Unlock(g)
	return m
}

// GetAndClearEvents returns and clears the running thread's pending events
// within mask.
func (k *Kernel) GetAndClearEvents(mask EventMask) EventMask {
	g := k.Lock()
	m := k.current.epending & mask
	k.current.epending &^= m
	k.Unlock(g)
	return m
}

// WaitOneEventTimeout waits for any event in mask, returning and clearing
// only the lowest pending one, or 0 on timeout.
func (k *Kernel) WaitOneEventTimeout(mask EventMask, timeout Interval) EventMask {
	g := k.Lock()
	m, ok := k.waitEventsS(mask, StateWtOrEvt, timeout)
	if ok {
		m ^= m & (m - 1)
		k.current.epending &^= m
	}
	k.Unlock(g)
	return m
}

// WaitOneEvent is WaitOneEventTimeout without a timeout.
func (k *Kernel) WaitOneEvent(mask EventMask) EventMask {
	return k.WaitOneEventTimeout(mask, TimeInfinite)
}

// WaitAnyEventTimeout waits for any event in mask, returning and clearing
// every pending one in mask, or 0 on timeout.
func (k *Kernel) WaitAnyEventTimeout(mask EventMask, timeout Interval) EventMask {
	g := k.Lock()
	m, _ := k.waitEventsS(mask, StateWtOrEvt, timeout)
	k.current.epending &^= m
	k.Unlock(g)
	return m
}

// WaitAnyEvent is WaitAnyEventTimeout without a timeout.
func (k *Kernel) WaitAnyEvent(mask EventMask) EventMask {
	return k.WaitAnyEventTimeout(mask, TimeInfinite)
}

// WaitAllEventsTimeout waits for every event in mask, returning and
// clearing them, or 0 on timeout.
func (k *Kernel) WaitAllEventsTimeout(mask EventMask, timeout Interval) EventMask {
	g := k.Lock()
	_, ok := k.waitEventsS(mask, StateWtAndEvt, timeout)
	if ok {
		k.current.epending &^= mask
	} else {
		mask = 0
	}
	k.Unlock(g)
	return mask
}

// WaitAllEvents is WaitAllEventsTimeout without a timeout.
func (k *Kernel) WaitAllEvents(mask EventMask) EventMask {
	return k.WaitAllEventsTimeout(mask, TimeInfinite)
}

// waitEventsS blocks until the running thread's pending events satisfy the
// predicate for state, returning the pending events within mask.
func (k *Kernel) waitEventsS(mask EventMask, state ThreadState, timeout Interval) (EventMask, bool) {
	ctp := k.current
	satisfied := func() bool {
		if state == StateWtAndEvt {
			return ctp.epending&mask == mask
		}
		return ctp.epending&mask != 0
	}
	if !satisfied() {
		if timeout == TimeImmediate {
			return 0, false
		}
		ctp.ewmask = mask
		if k.goSleepTimeoutS(state, timeout) != MsgOK {
			return 0, false
		}
	}
	return ctp.epending & mask, true
}

// DispatchEvents calls the handler for each event in events, lowest first.
// Every event must have a handler.
func DispatchEvents(handlers []func(id EventID), events EventMask) {
	for id := EventID(0); events != 0; id++ {
		if events&EventMaskOf(id) == 0 {
			continue
		}
		if int(id) >= len(handlers) || handlers[id] == nil {
			panic(`rtkernel: no handler for event`)
		}
		events &^= EventMaskOf(id)
		handlers[id](id)
	}
}
