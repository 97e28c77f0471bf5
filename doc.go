// Package rtkernel implements a preemptive, priority based real-time kernel
// core: a scheduler, a thread lifecycle state machine, virtual timers and
// the blocking synchronization primitives built on them.
//
// # Architecture
//
// All kernel state lives in a [Kernel] and is mutated only while the
// critical-section gate is held. The gate is supplied by a [Port], which
// also performs context switches and delivers the system tick. The
// [github.com/joeycumines/go-rtkernel/hostport] package provides a port that
// backs every thread with a goroutine, with either virtual or real time.
//
// Operations come in three calling conventions:
//   - Public functions acquire and release the gate themselves.
//   - Functions with an "S" suffix take a [*Guard], obtained from
//     [Kernel.Lock]. They may reschedule, and may block the calling thread.
//   - Functions with an "I" suffix take a [Locked] value, satisfied by both
//     [*Guard] and [*ISRGuard]. They never reschedule, so they are the only
//     operations available from interrupt context.
//
// Calling an "I" function from thread context may ready a thread with a
// higher priority than the caller. The caller must then call
// [Kernel.RescheduleS] before [Kernel.Unlock], which checks that the running
// thread is never outranked by a ready one.
//
// # Threads
//
// The goroutine calling [New] becomes the "main" thread, running at
// [NormalPriority] by default. An "idle" thread at [IdlePriority] runs when
// nothing else can, waiting for interrupts. Further threads are created with
// [Kernel.CreateThread] and friends.
//
// # Errors
//
// Misuse of the kernel (invalid state transitions, recursive mutex locks,
// unlocking a mutex the caller does not own) halts the kernel: the reason is
// logged, recorded, and the calling goroutine panics with a [*HaltError].
// Expected outcomes, such as timeouts and resets, are [Msg] values.
//
// # Time
//
// Time is measured in system ticks, as a wrapping [SysTime]. Timeouts are
// [Interval] values, where [TimeImmediate] polls without blocking and
// [TimeInfinite] waits forever.
package rtkernel
