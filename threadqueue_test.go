package rtkernel_test

import (
	"testing"

	"github.com/joeycumines/go-rtkernel"
	"github.com/stretchr/testify/assert"
)

func TestThreadsQueue(t *testing.T) {
	k, _ := newKernel(t)
	q := rtkernel.NewThreadsQueue(k)
	var r recorder
	for _, name := range []string{`a`, `b`, `c`} {
		spawn(k, name, rtkernel.HighPriority, func() {
			r.add(name + `:` + q.Wait(rtkernel.TimeInfinite).String())
		}).Release()
	}
	k.Critical(func(g *rtkernel.Guard) {
		assert.False(t, q.IsEmptyI(g))
	})

	q.Wake(rtkernel.MsgOK)
	assert.Equal(t, []string{`a:OK`}, r.events)
	q.WakeAll(rtkernel.MsgReset)
	assert.Equal(t, []string{`a:OK`, `b:RESET`, `c:RESET`}, r.events)
	k.Critical(func(g *rtkernel.Guard) {
		assert.True(t, q.IsEmptyI(g))
	})

	q.Wake(rtkernel.MsgOK)
	assert.Equal(t, rtkernel.MsgTimeout, q.Wait(rtkernel.TimeImmediate))
	assert.Equal(t, rtkernel.MsgTimeout, q.Wait(2))
}

func TestThreadReference(t *testing.T) {
	k, _ := newKernel(t)
	ref := rtkernel.NewThreadReference(k)
	var got rtkernel.Msg = -100
	th := spawn(k, `suspended`, rtkernel.HighPriority, func() { got = ref.Suspend(rtkernel.TimeInfinite) })
	assert.Equal(t, rtkernel.StateSuspended, th.State())
	requireEmpty := func(want bool) {
		k.Critical(func(g *rtkernel.Guard) {
			assert.Equal(t, want, ref.IsEmptyI(g))
		})
	}
	requireEmpty(false)
	ref.Resume(9)
	assert.Equal(t, rtkernel.Msg(9), got)
	requireEmpty(true)
	th.Wait()

	// nothing to resume
	ref.Resume(rtkernel.MsgOK)
	assert.Equal(t, rtkernel.MsgTimeout, ref.Suspend(3))
	requireEmpty(true)
	assert.Equal(t, rtkernel.MsgTimeout, ref.Suspend(rtkernel.TimeImmediate))
}

func TestThreadReference_inUse(t *testing.T) {
	k, _ := newKernel(t)
	ref := rtkernel.NewThreadReference(k)
	spawn(k, `suspended`, rtkernel.HighPriority, func() { ref.Suspend(rtkernel.TimeInfinite) }).Release()
	requireHalt(t, k, `thread reference already in use`, func() { ref.Suspend(rtkernel.TimeInfinite) })
}
