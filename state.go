package rtkernel

// ThreadState is the scheduling state of a thread.
//
// State Machine:
//
//	WTSTART -> READY             [start]
//	READY -> CURRENT             [dispatch]
//	CURRENT -> READY             [preemption, yield]
//	CURRENT -> <blocked>         [any blocking call]
//	<blocked> -> READY           [wakeup, timeout, reset]
//	CURRENT -> FINAL             [return, exit]
//
// A thread is on the ready list iff it is READY. The blocked states
// SUSPENDED, QUEUED, WTSEM, WTMTX, WTCOND, WTEXIT and SNDMSGQ place the
// thread on exactly one wait queue, the others (SLEEPING, WTOREVT,
// WTANDEVT, SNDMSG, WTMSG) on none.
type ThreadState uint8

const (
	// StateReady means runnable, on the ready list.
	StateReady ThreadState = iota
	// StateCurrent means running.
	StateCurrent
	// StateWtStart means created but not yet started.
	StateWtStart
	// StateSuspended means waiting on a [ThreadReference].
	StateSuspended
	// StateQueued means waiting on a [ThreadsQueue].
	StateQueued
	// StateWtSem means waiting on a [Semaphore].
	StateWtSem
	// StateWtMtx means waiting on a [Mutex].
	StateWtMtx
	// StateWtCond means waiting on a [CondVar].
	StateWtCond
	// StateSleeping means sleeping.
	StateSleeping
	// StateWtExit means waiting for another thread to exit.
	StateWtExit
	// StateWtOrEvt means waiting for any of an event mask.
	StateWtOrEvt
	// StateWtAndEvt means waiting for all of an event mask.
	StateWtAndEvt
	// StateSndMsgQ means a sent message is queued on the receiver.
	StateSndMsgQ
	// StateSndMsg means a sent message was taken, awaiting the reply.
	StateSndMsg
	// StateWtMsg means waiting for a message.
	StateWtMsg
	// StateFinal means terminated.
	StateFinal
)

var stateNames = [...]string{
	StateReady:     `READY`,
	StateCurrent:   `CURRENT`,
	StateWtStart:   `WTSTART`,
	StateSuspended: `SUSPENDED`,
	StateQueued:    `QUEUED`,
	StateWtSem:     `WTSEM`,
	StateWtMtx:     `WTMTX`,
	StateWtCond:    `WTCOND`,
	StateSleeping:  `SLEEPING`,
	StateWtExit:    `WTEXIT`,
	StateWtOrEvt:   `WTOREVT`,
	StateWtAndEvt:  `WTANDEVT`,
	StateSndMsgQ:   `SNDMSGQ`,
	StateSndMsg:    `SNDMSG`,
	StateWtMsg:     `WTMSG`,
	StateFinal:     `FINAL`,
}

// String returns the state name, e.g. "WTSEM".
func (s ThreadState) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return `UNKNOWN`
}

// IsBlocked reports whether s is one of the waiting states.
func (s ThreadState) IsBlocked() bool {
	switch s {
	case StateReady, StateCurrent, StateWtStart, StateFinal:
		return false
	default:
		return s < StateFinal
	}
}
