package rtkernel_test

import (
	"bytes"
	"testing"

	"github.com/joeycumines/go-rtkernel"
	"github.com/joeycumines/go-rtkernel/hostport"
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
	"github.com/stretchr/testify/require"
)

// newKernel starts a kernel on a virtual-time port, adopting the test
// goroutine as its main thread.
func newKernel(t *testing.T, opts ...rtkernel.Option) (*rtkernel.Kernel, *hostport.Port) {
	t.Helper()
	port, err := hostport.New(
		hostport.WithVirtualTime(true),
		hostport.WithMaxIdleTicks(1_000_000),
	)
	require.NoError(t, err)
	k, err := rtkernel.New(port, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = k.Close() })
	return k, port
}

// newLogger returns a trace level logger writing JSON lines to buf.
func newLogger(buf *bytes.Buffer) *logiface.Logger[logiface.Event] {
	return stumpy.L.New(
		stumpy.L.WithStumpy(stumpy.WithWriter(buf), stumpy.WithTimeField(``)),
		stumpy.L.WithLevel(logiface.LevelTrace),
	).Logger()
}

// catchHalt runs fn, which must only touch the kernel from the calling
// goroutine, returning the halt it raised, if any.
func catchHalt(fn func()) (halt *rtkernel.HaltError) {
	defer func() {
		if r := recover(); r != nil {
			var ok bool
			if halt, ok = r.(*rtkernel.HaltError); !ok {
				panic(r)
			}
		}
	}()
	fn()
	return nil
}

// requireHalt asserts that fn halts the kernel with reason.
func requireHalt(t *testing.T, k *rtkernel.Kernel, reason string, fn func()) {
	t.Helper()
	halt := catchHalt(fn)
	require.NotNil(t, halt, `expected a halt`)
	require.Equal(t, reason, halt.Reason)
	require.ErrorIs(t, halt, rtkernel.ErrHalted)
	got, ok := k.Halted()
	require.True(t, ok)
	require.Equal(t, reason, got)
}

// recorder collects the order things happened in. Only one kernel thread
// runs at a time, so it needs no locking.
type recorder struct {
	events []string
}

func (r *recorder) add(s string) {
	r.events = append(r.events, s)
}

// spawn creates a thread running fn, returning MsgOK.
func spawn(k *rtkernel.Kernel, name string, prio rtkernel.Priority, fn func()) *rtkernel.Thread {
	return k.CreateThread(rtkernel.ThreadConfig{
		Name:     name,
		Priority: prio,
		Func: func(any) rtkernel.Msg {
			fn()
			return rtkernel.MsgOK
		},
	})
}
