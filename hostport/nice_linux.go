//go:build linux

package hostport

import (
	"golang.org/x/sys/unix"
)

// setThreadNice sets the nice value of the calling OS thread, which must be
// locked to the goroutine.
func setThreadNice(nice int) error {
	return unix.Setpriority(unix.PRIO_PROCESS, unix.Gettid(), nice)
}
