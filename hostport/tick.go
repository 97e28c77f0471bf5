package hostport

import (
	"runtime"
	"time"
)

// run is the real-time interrupt goroutine: it raises the tick every
// period, and runs handlers passed to Raise in between.
func (p *Port) run() {
	defer p.wg.Done()

	if nice := p.opts.tickNice; nice != nil {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		if err := setThreadNice(*nice); err != nil {
			p.logger().Warning().
				Str(`category`, `port`).
				Int(`nice`, *nice).
				Err(err).
				Log(`tick thread priority not applied`)
		}
	}

	period := p.opts.tickPeriod
	next := time.Now().Add(period)
	timer := time.NewTimer(period)
	defer timer.Stop()

	for {
		select {
		case <-p.done:
			return

		case fn := <-p.raised:
			p.interrupt(fn)

		case now := <-timer.C:
			if late := now.Sub(next); late > 2*period {
				p.overrun(late)
				// skip the missed ticks rather than bursting them
				next = now
			}
			p.interrupt(p.tick)
			next = next.Add(period)
			timer.Reset(time.Until(next))
		}
	}
}

func (p *Port) overrun(late time.Duration) {
	if _, ok := p.limiter.Allow(`overrun`); !ok {
		return
	}
	p.logger().Warning().
		Str(`category`, `port`).
		Dur(`late`, late).
		Dur(`period`, p.opts.tickPeriod).
		Log(`tick overrun`)
}
