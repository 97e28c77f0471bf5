package rtkernel

import (
	"time"
)

type (
	// Stats is a snapshot of kernel statistics, see [WithStats].
	Stats struct {
		// Interrupts counts interrupt-context gate entries, ticks included.
		Interrupts uint64
		// ContextSwitches counts switches between threads.
		ContextSwitches uint64
		// ThreadCritical measures thread-context gate holds.
		ThreadCritical CriticalStats
		// ISRCritical measures interrupt-context gate holds.
		ISRCritical CriticalStats
	}

	// CriticalStats summarizes how long the gate was held.
	CriticalStats struct {
		Count uint64
		P50   time.Duration
		P90   time.Duration
		P99   time.Duration
		Max   time.Duration
		Mean  time.Duration
	}

	kernelStats struct {
		thread     criticalMeasure
		isr        criticalMeasure
		interrupts uint64
		switches   uint64
	}

	// criticalMeasure times gate holds, guarded by the gate itself
	criticalMeasure struct {
		start time.Time
		p50   *quantile
		p90   *quantile
		p99   *quantile
		sum   time.Duration
		max   time.Duration
		count uint64
	}
)

func newKernelStats(enabled bool) *kernelStats {
	if !enabled {
		return nil
	}
	s := &kernelStats{}
	s.thread.init()
	s.isr.init()
	return s
}

func (m *criticalMeasure) init() {
	m.p50 = newQuantile(0.50)
	m.p90 = newQuantile(0.90)
	m.p99 = newQuantile(0.99)
}

func (m *criticalMeasure) begin() {
	m.start = time.Now()
}

func (m *criticalMeasure) end() {
	d := time.Since(m.start)
	m.count++
	m.sum += d
	if d > m.max {
		m.max = d
	}
	m.p50.observe(float64(d))
	m.p90.observe(float64(d))
	m.p99.observe(float64(d))
}

func (m *criticalMeasure) snapshot() CriticalStats {
	c := CriticalStats{
		Count: m.count,
		P50:   time.Duration(m.p50.value()),
		P90:   time.Duration(m.p90.value()),
		P99:   time.Duration(m.p99.value()),
		Max:   m.max,
	}
	if m.count > 0 {
		c.Mean = m.sum / time.Duration(m.count)
	}
	return c
}

// Stats returns a snapshot of the kernel statistics, zero unless enabled
// with [WithStats].
func (k *Kernel) Stats() Stats {
	g := k.Lock()
	var s Stats
	if k.stats != nil {
		s = Stats{
			Interrupts:      k.stats.interrupts,
			ContextSwitches: k.stats.switches,
			ThreadCritical:  k.stats.thread.snapshot(),
			ISRCritical:     k.stats.isr.snapshot(),
		}
	}
	k.Unlock(g)
	return s
}
