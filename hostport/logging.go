package hostport

import (
	"io"
	"os"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// NewStderrLogger returns a JSON lines logger writing to stderr, suitable
// for both [WithLogger] and rtkernel.WithLogger.
func NewStderrLogger(level logiface.Level) *logiface.Logger[logiface.Event] {
	return newWriterLogger(os.Stderr, level)
}

func newWriterLogger(w io.Writer, level logiface.Level) *logiface.Logger[logiface.Event] {
	return stumpy.L.New(
		stumpy.L.WithStumpy(stumpy.WithWriter(w)),
		stumpy.L.WithLevel(level),
	).Logger()
}
