package rtkernel_test

import (
	"testing"

	"github.com/joeycumines/go-rtkernel"
	"github.com/stretchr/testify/assert"
)

func TestMessages_sendReceive(t *testing.T) {
	k, _ := newKernel(t)
	server := spawn(k, `server`, rtkernel.HighPriority, func() {
		for range 2 {
			tp := k.WaitMessage()
			k.ReleaseMessage(tp, rtkernel.Msg(tp.Message().(int)*2))
		}
	})
	assert.Equal(t, rtkernel.StateWtMsg, server.State())
	assert.Equal(t, rtkernel.Msg(42), k.Send(server, 21))
	assert.Equal(t, rtkernel.Msg(8), k.Send(server, 4))
	server.Wait()
}

func TestMessages_fifo(t *testing.T) {
	k, _ := newKernel(t)
	var got []any
	server := spawn(k, `server`, rtkernel.LowPriority, func() {
		for range 2 {
			tp := k.WaitMessage()
			got = append(got, tp.Message())
			k.ReleaseMessage(tp, rtkernel.MsgOK)
		}
	})
	for _, v := range []string{`first`, `second`} {
		spawn(k, v, rtkernel.HighPriority, func() { k.Send(server, v) }).Release()
	}
	server.Wait()
	assert.Equal(t, []any{`first`, `second`}, got)
}

func TestMessages_poll(t *testing.T) {
	k, _ := newKernel(t)
	assert.Nil(t, k.PollMessage())
	start := k.SystemTime()
	assert.Nil(t, k.WaitMessageTimeout(4))
	assert.Equal(t, rtkernel.Interval(4), k.TimeElapsedSince(start))
	assert.Nil(t, k.WaitMessageTimeout(rtkernel.TimeImmediate))

	var reply rtkernel.Msg
	spawn(k, `client`, rtkernel.LowPriority, func() { reply = k.Send(k.Main(), `hi`) }).Release()
	k.Sleep(1)
	k.Critical(func(g *rtkernel.Guard) {
		assert.True(t, k.IsMessagePendingI(g))
	})
	tp := k.PollMessage()
	if assert.NotNil(t, tp) {
		assert.Equal(t, rtkernel.StateSndMsg, tp.State())
		assert.Equal(t, `hi`, tp.Message())
		k.ReleaseMessage(tp, 5)
		k.Sleep(1)
		assert.Equal(t, rtkernel.Msg(5), reply)
	}
}

func TestMessages_receiverExits(t *testing.T) {
	k, _ := newKernel(t)
	receiver := spawn(k, `receiver`, rtkernel.LowPriority, func() {})
	// queued before the receiver ran, then reset by its exit
	assert.Equal(t, rtkernel.MsgReset, k.Send(receiver, 1))
	// the receiver is final
	assert.Equal(t, rtkernel.MsgReset, k.Send(receiver, 2))
	receiver.Wait()
}

func TestMessages_receiverExitsHoldingMessage(t *testing.T) {
	k, _ := newKernel(t)
	var got any
	receiver := spawn(k, `receiver`, rtkernel.LowPriority, func() {
		got = k.WaitMessage().Message()
	})
	assert.Equal(t, rtkernel.StateWtMsg, receiver.State())
	// taken but never released
	assert.Equal(t, rtkernel.MsgReset, k.Send(receiver, 42))
	assert.Equal(t, 42, got)
	assert.Equal(t, rtkernel.StateFinal, receiver.State())
	receiver.Wait()
}

func TestMessages_releaseThenExit(t *testing.T) {
	k, _ := newKernel(t)
	receiver := spawn(k, `receiver`, rtkernel.LowPriority, func() {
		tp := k.WaitMessage()
		k.ReleaseMessage(tp, 7)
	})
	assert.Equal(t, rtkernel.Msg(7), k.Send(receiver, nil))
	receiver.Wait()
}

func TestMessages_misuse(t *testing.T) {
	k, _ := newKernel(t)
	requireHalt(t, k, `thread sending to itself`, func() { k.Send(k.Main(), nil) })
}

func TestMessages_messageNotSent(t *testing.T) {
	k, _ := newKernel(t)
	requireHalt(t, k, `message read from a thread not in SNDMSG`, func() { k.Main().Message() })
}
