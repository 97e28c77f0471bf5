package rtkernel

import (
	"github.com/joeycumines/logiface"
)

// log categories, carried in the "category" field
const (
	categorySched  = `sched`
	categoryThread = `thread`
	categoryTimer  = `timer`
	categoryHalt   = `halt`
)

// logAt returns a builder tagged with the category, or nil if the level is
// disabled (the builder methods accept nil).
func (k *Kernel) logAt(level logiface.Level, category string) *logiface.Builder[logiface.Event] {
	return k.opts.logger.Build(level).Str(`category`, category)
}

func (k *Kernel) logSwitch(ntp, otp *Thread) {
	if b := k.logAt(logiface.LevelTrace, categorySched); b.Enabled() {
		b.Str(`from`, otp.name).
			Str(`to`, ntp.name).
			Str(`state`, otp.state.String()).
			Uint64(`time`, uint64(k.vt.systime)).
			Log(`context switch`)
	}
}
