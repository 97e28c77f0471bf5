package rtkernel_test

import (
	"bytes"
	"testing"

	"github.com/joeycumines/go-rtkernel"
	"github.com/joeycumines/go-rtkernel/hostport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_nilPort(t *testing.T) {
	k, err := rtkernel.New(nil)
	require.ErrorIs(t, err, rtkernel.ErrNilPort)
	require.Nil(t, k)
}

func TestNew_invalidOption(t *testing.T) {
	port, err := hostport.New(hostport.WithVirtualTime(true))
	require.NoError(t, err)
	defer port.Close()
	for _, opt := range []rtkernel.Option{
		rtkernel.WithFrequency(0),
		rtkernel.WithTrace(-1),
		rtkernel.WithMinStackSize(-1),
		rtkernel.WithMainPriority(rtkernel.IdlePriority),
		rtkernel.WithPriorityProtocol(rtkernel.PriorityProtocol(9)),
	} {
		k, err := rtkernel.New(port, opt)
		assert.ErrorIs(t, err, rtkernel.ErrInvalidOption)
		assert.Nil(t, k)
	}
}

func TestNew_initialState(t *testing.T) {
	k, _ := newKernel(t, rtkernel.WithInitialTime(100))

	require.Same(t, k.Main(), k.Self())
	assert.Equal(t, `main`, k.Main().Name())
	assert.Equal(t, rtkernel.StateCurrent, k.Main().State())
	assert.Equal(t, rtkernel.NormalPriority, k.Main().Priority())
	assert.Equal(t, `idle`, k.Idle().Name())
	assert.Equal(t, rtkernel.StateReady, k.Idle().State())
	assert.Equal(t, rtkernel.IdlePriority, k.Idle().Priority())
	assert.Equal(t, 2, k.ThreadCount())
	assert.Equal(t, rtkernel.SysTime(100), k.SystemTime())
	assert.Equal(t, uint32(1000), k.Frequency())
	_, halted := k.Halted()
	assert.False(t, halted)
}

func TestNew_minStackSize(t *testing.T) {
	k, _ := newKernel(t, rtkernel.WithMinStackSize(64))
	assert.Equal(t, rtkernel.StateReady, k.Idle().State())
	var ran bool
	th := k.CreateThread(rtkernel.ThreadConfig{
		Name:     `worker`,
		Priority: rtkernel.HighPriority,
		Stack:    make([]byte, 64),
		Func: func(any) rtkernel.Msg {
			ran = true
			return 3
		},
	})
	assert.True(t, ran)
	assert.Equal(t, rtkernel.Msg(3), th.Wait())
	// the idle thread still runs with a stack size floor in place
	k.Sleep(2)
}

func TestKernel_Close_idempotent(t *testing.T) {
	k, port := newKernel(t)
	require.NoError(t, k.Close())
	require.NoError(t, k.Close())
	require.ErrorIs(t, port.Tick(), hostport.ErrClosed)
}

func TestLock_nested(t *testing.T) {
	var hooked string
	k, _ := newKernel(t, rtkernel.WithHaltHook(func(reason string) { hooked = reason }))
	k.Lock()
	requireHalt(t, k, `nested gate lock`, func() { k.Lock() })
	assert.Equal(t, `nested gate lock`, hooked)
}

func TestCheckS_withoutGuard(t *testing.T) {
	k, _ := newKernel(t)
	s := rtkernel.NewSemaphore(k, 1)
	requireHalt(t, k, `S-class call without the thread gate`, func() { s.WaitS(nil) })
}

func TestCheckS_releasedGuard(t *testing.T) {
	k, _ := newKernel(t)
	requireHalt(t, k, `S-class call without the thread gate`, func() {
		// a released guard is no longer a capability
		g := k.Lock()
		k.Unlock(g)
		k.RescheduleS(g)
	})
}

func TestCheckI_withoutGuard(t *testing.T) {
	k, _ := newKernel(t)
	s := rtkernel.NewSemaphore(k, 0)
	requireHalt(t, k, `I-class call without the gate`, func() { s.SignalI(nil) })
}

func TestCheckI_otherKernel(t *testing.T) {
	k1, _ := newKernel(t)
	s := rtkernel.NewSemaphore(k1, 0)
	port, err := hostport.New(hostport.WithVirtualTime(true))
	require.NoError(t, err)
	k2, err := rtkernel.New(port)
	require.NoError(t, err)
	defer k2.Close()
	g := k2.Lock()
	requireHalt(t, k1, `I-class call without the gate`, func() { s.SignalI(g) })
}

func TestCritical(t *testing.T) {
	k, _ := newKernel(t)
	var now rtkernel.SysTime
	k.Critical(func(g *rtkernel.Guard) {
		now = k.SystemTimeI(g)
	})
	assert.Equal(t, rtkernel.SysTime(0), now)
	// the gate was released
	k.Unlock(k.Lock())
}

func TestExit_gateHeld(t *testing.T) {
	k, _ := newKernel(t)
	requireHalt(t, k, `exit with the gate held`, func() {
		k.Lock()
		k.Exit(rtkernel.MsgOK)
	})
}

func TestLogging_threadLifecycle(t *testing.T) {
	var buf bytes.Buffer
	k, _ := newKernel(t, rtkernel.WithLogger(newLogger(&buf)))
	spawn(k, `worker`, rtkernel.HighPriority, func() {}).Wait()
	out := buf.String()
	assert.Contains(t, out, `"msg":"kernel started"`)
	assert.Contains(t, out, `"msg":"thread created"`)
	assert.Contains(t, out, `"msg":"context switch"`)
	assert.Contains(t, out, `"msg":"thread exited"`)
	assert.Contains(t, out, `"msg":"thread reclaimed"`)
	assert.Contains(t, out, `"category":"thread"`)
	assert.Contains(t, out, `"thread":"worker"`)
}

func TestLogging_halt(t *testing.T) {
	var buf bytes.Buffer
	k, _ := newKernel(t, rtkernel.WithLogger(newLogger(&buf)))
	m := rtkernel.NewMutex(k)
	requireHalt(t, k, `mutex unlocked by a thread that does not own it`, m.Unlock)
	assert.Contains(t, buf.String(), `"category":"halt"`)
	assert.Contains(t, buf.String(), `"reason":"mutex unlocked by a thread that does not own it"`)
}

func TestIdleHook(t *testing.T) {
	var calls int
	k, _ := newKernel(t, rtkernel.WithIdleHook(func() { calls++ }))
	k.Sleep(5)
	assert.Equal(t, 5, calls)
}
