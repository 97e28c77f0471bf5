//go:build !linux

package hostport

import (
	"errors"
)

func setThreadNice(int) error {
	return errors.New(`hostport: thread priority not supported on this platform`)
}
