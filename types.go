package rtkernel

import (
	"strconv"
)

type (
	// Priority is a thread priority, higher values are more urgent.
	Priority uint8

	// Msg is a wakeup message. The negative values are reserved for the
	// results defined by this package, other values are free for use as
	// message payloads, exit codes and replies.
	Msg int32

	// AllocMode records where a thread's storage came from, so it can be
	// released correctly once the thread is reclaimed.
	AllocMode uint8
)

const (
	// NoPriority is not a valid thread priority.
	NoPriority Priority = 0
	// IdlePriority is reserved for the idle thread.
	IdlePriority Priority = 1
	// LowPriority is the lowest priority for user threads.
	LowPriority Priority = 2
	// NormalPriority is the default priority of the main thread.
	NormalPriority Priority = 128
	// HighPriority is the highest priority.
	HighPriority Priority = 255
)

const (
	// MsgOK is the normal wakeup message.
	MsgOK Msg = 0
	// MsgTimeout indicates that a wait timed out.
	MsgTimeout Msg = -1
	// MsgReset indicates that the object being waited on was reset.
	MsgReset Msg = -2
)

const (
	// AllocStatic marks storage owned by the caller, never released.
	AllocStatic AllocMode = iota
	// AllocHeap marks heap allocated storage.
	AllocHeap
	// AllocPool marks storage taken from a pool.
	AllocPool
)

// String returns a readable name for the well known results, or the number.
func (m Msg) String() string {
	switch m {
	case MsgOK:
		return `OK`
	case MsgTimeout:
		return `TIMEOUT`
	case MsgReset:
		return `RESET`
	default:
		return strconv.FormatInt(int64(m), 10)
	}
}

func (m AllocMode) String() string {
	switch m {
	case AllocStatic:
		return `static`
	case AllocHeap:
		return `heap`
	case AllocPool:
		return `pool`
	default:
		return `AllocMode(` + strconv.Itoa(int(m)) + `)`
	}
}
