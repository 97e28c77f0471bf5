package rtkernel_test

import (
	"testing"

	"github.com/joeycumines/go-rtkernel"
	"github.com/stretchr/testify/assert"
)

func TestCondVar_signal(t *testing.T) {
	k, _ := newKernel(t)
	m := rtkernel.NewMutex(k)
	c := rtkernel.NewCondVar(k)
	var (
		r     recorder
		ready bool
		got   rtkernel.Msg = -100
	)
	th := spawn(k, `consumer`, rtkernel.HighPriority, func() {
		m.Lock()
		for !ready {
			got = c.Wait(m)
		}
		r.add(`consumed`)
		m.Unlock()
	})
	assert.Nil(t, m.Owner())
	assert.Equal(t, rtkernel.StateWtCond, th.State())

	m.Lock()
	ready = true
	c.Signal()
	// the consumer woke, and is now waiting for the mutex
	assert.Equal(t, rtkernel.StateWtMtx, th.State())
	r.add(`producer`)
	m.Unlock()

	assert.Equal(t, []string{`producer`, `consumed`}, r.events)
	assert.Equal(t, rtkernel.MsgOK, got)
	th.Wait()
}

func TestCondVar_signalFifo(t *testing.T) {
	k, _ := newKernel(t)
	m := rtkernel.NewMutex(k)
	c := rtkernel.NewCondVar(k)
	var r recorder
	var threads []*rtkernel.Thread
	for _, tc := range [...]struct {
		name string
		prio rtkernel.Priority
	}{
		{`t1`, rtkernel.NormalPriority + 1},
		{`t2`, rtkernel.NormalPriority + 5},
		{`t3`, rtkernel.NormalPriority + 3},
	} {
		threads = append(threads, spawn(k, tc.name, tc.prio, func() {
			m.Lock()
			msg := c.Wait(m)
			r.add(tc.name + `:` + msg.String())
			m.Unlock()
		}))
	}
	for _, th := range threads {
		assert.Equal(t, rtkernel.StateWtCond, th.State())
	}

	c.Signal()
	assert.Equal(t, []string{`t1:OK`}, r.events)
	c.Signal()
	assert.Equal(t, []string{`t1:OK`, `t2:OK`}, r.events)
	c.Signal()
	assert.Equal(t, []string{`t1:OK`, `t2:OK`, `t3:OK`}, r.events)
	for _, th := range threads {
		th.Wait()
	}
}

func TestCondVar_broadcast(t *testing.T) {
	k, _ := newKernel(t)
	m := rtkernel.NewMutex(k)
	c := rtkernel.NewCondVar(k)
	var r recorder
	var threads []*rtkernel.Thread
	for _, name := range []string{`a`, `b`} {
		threads = append(threads, spawn(k, name, rtkernel.HighPriority, func() {
			m.Lock()
			msg := c.Wait(m)
			r.add(name + `:` + msg.String())
			m.Unlock()
		}))
	}
	c.Broadcast()
	assert.Equal(t, []string{`a:RESET`, `b:RESET`}, r.events)
	for _, th := range threads {
		th.Wait()
	}
}

func TestCondVar_timeoutReacquires(t *testing.T) {
	k, _ := newKernel(t)
	m := rtkernel.NewMutex(k)
	c := rtkernel.NewCondVar(k)
	m.Lock()
	start := k.SystemTime()
	assert.Equal(t, rtkernel.MsgTimeout, c.WaitTimeout(m, 5))
	assert.Equal(t, rtkernel.Interval(5), k.TimeElapsedSince(start))
	assert.Same(t, k.Main(), m.Owner())

	assert.Equal(t, rtkernel.MsgTimeout, c.WaitTimeout(m, rtkernel.TimeImmediate))
	assert.Same(t, k.Main(), m.Owner())
	m.Unlock()
}

func TestCondVar_signalNoWaiters(t *testing.T) {
	k, _ := newKernel(t)
	c := rtkernel.NewCondVar(k)
	c.Signal()
	c.Broadcast()
	k.Critical(func(g *rtkernel.Guard) {
		c.SignalI(g)
		c.BroadcastI(g)
	})
}

func TestCondVar_waitWithoutMutex(t *testing.T) {
	k, _ := newKernel(t)
	c := rtkernel.NewCondVar(k)
	m := rtkernel.NewMutex(k)
	requireHalt(t, k, `condvar wait without owning the mutex`, func() { c.Wait(m) })
}
