package rtkernel

import (
	"time"
)

type (
	// SysTime is an absolute tick count. It wraps, so compare values with
	// [TimeDiff] and [TimeIsInRange], never with < or >.
	SysTime uint32

	// Interval is a relative number of ticks.
	Interval uint32
)

const (
	// TimeImmediate as a timeout polls without blocking.
	TimeImmediate Interval = 0
	// TimeInfinite as a timeout blocks until woken.
	TimeInfinite Interval = ^Interval(0)
	// TimeMaxInterval is the longest finite interval.
	TimeMaxInterval = TimeInfinite - 1
)

// TimeDiff returns the ticks from start to end, modulo the counter width.
func TimeDiff(start, end SysTime) Interval {
	return Interval(end - start)
}

// TimeAdd returns t advanced by iv ticks.
func TimeAdd(t SysTime, iv Interval) SysTime {
	return t + SysTime(iv)
}

// TimeIsInRange reports whether t is within the half-open window
// [start, end), which may wrap around the counter.
func TimeIsInRange(t, start, end SysTime) bool {
	return Interval(t-start) < Interval(end-start)
}

// SystemTime returns the current tick count.
func (k *Kernel) SystemTime() SysTime {
	g := k.Lock()
	now := k.vt.systime
	k.Unlock(g)
	return now
}

// SystemTimeI returns the current tick count.
func (k *Kernel) SystemTimeI(g Locked) SysTime {
	k.checkI(g)
	return k.vt.systime
}

// TimeElapsedSince returns the ticks elapsed since start.
func (k *Kernel) TimeElapsedSince(start SysTime) Interval {
	return TimeDiff(start, k.SystemTime())
}

// IsTimeWithin reports whether the current time is within [start, end).
func (k *Kernel) IsTimeWithin(start, end SysTime) bool {
	return TimeIsInRange(k.SystemTime(), start, end)
}

// Frequency returns the configured tick rate, in Hz.
func (k *Kernel) Frequency() uint32 {
	return k.opts.frequency
}

// DurationToInterval converts d to ticks, rounding up, saturating at
// [TimeMaxInterval]. Non-positive durations convert to [TimeImmediate].
func (k *Kernel) DurationToInterval(d time.Duration) Interval {
	if d <= 0 {
		return TimeImmediate
	}
	hz := uint64(k.opts.frequency)
	secs := uint64(d / time.Second)
	if secs >= uint64(TimeMaxInterval) {
		return TimeMaxInterval
	}
	n := secs*hz + (uint64(d%time.Second)*hz+uint64(time.Second)-1)/uint64(time.Second)
	if n >= uint64(TimeMaxInterval) {
		return TimeMaxInterval
	}
	return Interval(n)
}

// IntervalToDuration converts iv to a duration. [TimeInfinite] has no
// duration, and converts to the maximum representable value.
func (k *Kernel) IntervalToDuration(iv Interval) time.Duration {
	if iv == TimeInfinite {
		return time.Duration(1<<63 - 1)
	}
	return time.Duration(uint64(iv) * uint64(time.Second) / uint64(k.opts.frequency))
}
