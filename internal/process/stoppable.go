package process

import (
	"log/slog"
	"time"
)

// Stoppable is a child handle whose Stop signals and reaps the child and
// whose Close releases the parent's end of its output pipe. Close after a
// successful Stop must not block; readers of the pipe see EOF once both the
// child and Close are done.
type Stoppable interface {
	Stop(timeout time.Duration) error
	Close()
}

// Release stops *p, closes it and sets *p to nil so later calls are no-ops.
// Close runs even when Stop fails, so the output reader always ends. The
// Stop error is logged with name and returned.
//
// The P/E pair restricts p to pointers-to-pointer types implementing
// Stoppable so the nil check needs no reflection.
func Release[P interface {
	*E
	Stoppable
}, E any](p *P, timeout time.Duration, name string, log *slog.Logger) error {
	if p == nil || *p == nil {
		return nil
	}
	defer func() {
		(*p).Close()
		*p = nil
	}()
	err := (*p).Stop(timeout)
	if err != nil && log != nil {
		log.Warn("stop failed; releasing output anyway", "process", name, "error", err)
	}
	return err
}
