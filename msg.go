package rtkernel

// Send sends msg to t and blocks until t releases it with a reply, which is
// returned. Messages are received in FIFO order. If t exits first, whether
// or not it took the message, the reply is [MsgReset].
func (k *Kernel) Send(t *Thread, msg any) Msg {
	g := k.Lock()
	ctp := k.current
	if t == ctp {
		k.halt(`thread sending to itself`)
	}
	if t.state == StateFinal {
		k.Unlock(g)
		return MsgReset
	}
	ctp.sentmsg = msg
	ctp.wtobj = t
	t.msgqueue.pushBack(ctp)
	if t.state == StateWtMsg {
		k.readyI(t, MsgOK)
	}
	k.goSleepS(StateSndMsgQ)
	reply := ctp.rdymsg
	k.Unlock(g)
	return reply
}

// WaitMessageTimeoutS waits for a sender, returning it in the SNDMSG state,
// or nil on timeout. The message is available with [Thread.Message], and
// the sender stays blocked until released, see [Kernel.ReleaseMessageS].
func (k *Kernel) WaitMessageTimeoutS(g *Guard, timeout Interval) *Thread {
	k.checkS(g)
	ctp := k.current
	if ctp.msgqueue.isEmpty() {
		if timeout == TimeImmediate {
			return nil
		}
		if k.goSleepTimeoutS(StateWtMsg, timeout) != MsgOK {
			return nil
		}
	}
	return k.takeSender(ctp)
}

func (k *Kernel) takeSender(receiver *Thread) *Thread {
	tp := receiver.msgqueue.popFront()
	if tp == nil || tp.state != StateSndMsgQ {
		k.halt(`message queue corrupt`)
	}
	tp.state = StateSndMsg
	receiver.msgtaken.pushBack(tp)
	return tp
}

// WaitMessageS is WaitMessageTimeoutS without a timeout.
func (k *Kernel) WaitMessageS(g *Guard) *Thread {
	return k.WaitMessageTimeoutS(g, TimeInfinite)
}

// WaitMessageTimeout is the public variant of WaitMessageTimeoutS.
func (k *Kernel) WaitMessageTimeout(timeout Interval) *Thread {
	g := k.Lock()
	tp := k.WaitMessageTimeoutS(g, timeout)
	k.Unlock(g)
	return tp
}

// WaitMessage is the public variant of WaitMessageS.
func (k *Kernel) WaitMessage() *Thread {
	return k.WaitMessageTimeout(TimeInfinite)
}

// PollMessageS returns the next sender without blocking, or nil.
func (k *Kernel) PollMessageS(g *Guard) *Thread {
	k.checkS(g)
	if k.current.msgqueue.isEmpty() {
		return nil
	}
	return k.takeSender(k.current)
}

// PollMessage is the public variant of PollMessageS.
func (k *Kernel) PollMessage() *Thread {
	g := k.Lock()
	tp := k.PollMessageS(g)
	k.Unlock(g)
	return tp
}

// IsMessagePendingI reports whether a sender is queued on the running
// thread.
func (k *Kernel) IsMessagePendingI(g Locked) bool {
	k.checkI(g)
	return !k.current.msgqueue.isEmpty()
}

// Message returns the message sent by t, which must be in the SNDMSG state.
func (t *Thread) Message() any {
	g := t.k.Lock()
	if t.state != StateSndMsg {
		t.k.halt(`message read from a thread not in SNDMSG`)
	}
	msg := t.sentmsg
	t.k.Unlock(g)
	return msg
}

// ReleaseMessageS wakes the sender tp with reply.
func (k *Kernel) ReleaseMessageS(g *Guard, tp *Thread, reply Msg) {
	k.checkS(g)
	if tp.state != StateSndMsg {
		k.halt(`message released from a thread not in SNDMSG`)
	}
	tp.sentmsg = nil
	tp.dequeue()
	k.wakeupS(tp, reply)
}

// ReleaseMessage is the public variant of ReleaseMessageS.
func (k *Kernel) ReleaseMessage(tp *Thread, reply Msg) {
	g := k.Lock()
	k.ReleaseMessageS(g, tp, reply)
	k.Unlock(g)
}
