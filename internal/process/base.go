package process

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"github.com/shabtzak/shell/internal/sentinel"
)

// ErrAlreadyStarted is returned when Start is called twice.
const ErrAlreadyStarted = sentinel.Error("process already started")

// ErrNilCmd is returned when Start is called with a nil *exec.Cmd.
const ErrNilCmd = sentinel.Error("cmd must not be nil")

// ErrEmptyCmdPath is returned when Start is called with an empty cmd.Path.
const ErrEmptyCmdPath = sentinel.Error("cmd.Path must not be empty")

// exitState is shared between BaseProcess and its reaper goroutine. err is
// written once, before done is closed, and read only after done is closed.
type exitState struct {
	done chan struct{}
	err  error
}

// BaseProcess manages the lifecycle of one child process.
//
// BaseProcess is not safe for concurrent use, with one exception: Exited and
// ExitErr may be called from any goroutine once Start has returned.
type BaseProcess struct {
	cmd         *exec.Cmd
	output      *os.File // parent's read end of the merged stdout/stderr pipe
	exit        *exitState
	stopped     bool
	name        string
	log         *slog.Logger
	stopTimeout time.Duration
}

// NewBaseProcess returns an unstarted BaseProcess. stopTimeout is used by
// Close when it has to stop a still-running child; zero means
// DefaultStopTimeout. A nil logger uses slog.Default(). Panics if name is
// empty.
func NewBaseProcess(name string, logger *slog.Logger, stopTimeout time.Duration) BaseProcess {
	if name == "" {
		panic("shabtzak: process name must not be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return BaseProcess{name: name, log: logger, stopTimeout: stopTimeout}
}

// Start launches cmd with stdout and stderr both connected to a single pipe
// and returns the read end. The caller owns the returned reader and should
// read it until EOF; EOF arrives once the child (and anything it spawned
// that inherited the pipe) has exited.
//
// Any Stdout, Stderr and SysProcAttr already set on cmd are replaced.
func (b *BaseProcess) Start(cmd *exec.Cmd) (io.ReadCloser, error) {
	if cmd == nil {
		return nil, ErrNilCmd
	}
	if cmd.Path == "" {
		return nil, ErrEmptyCmdPath
	}
	if b.cmd != nil {
		return nil, ErrAlreadyStarted
	}

	configureSysProcAttr(cmd)

	r, w, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("create %s output pipe: %w", b.name, err)
	}
	cmd.Stdout = w
	cmd.Stderr = w

	if err := cmd.Start(); err != nil {
		_ = r.Close()
		_ = w.Close()
		return nil, fmt.Errorf("start %s process: %w", b.name, err)
	}
	// The child has its own copy of the write end. Dropping ours is what
	// lets the reader see EOF when the child exits.
	_ = w.Close()

	exit := &exitState{done: make(chan struct{})}
	go func() {
		exit.err = cmd.Wait()
		close(exit.done)
	}()

	b.cmd = cmd
	b.output = r
	b.exit = exit
	b.stopped = false
	b.log.Debug("process started", "process", b.name, "pid", cmd.Process.Pid, "path", cmd.Path)
	return r, nil
}

// Stop terminates the child, waiting at most timeout plus a short drain.
// It returns nil when the child was not started, already stopped, or exited
// because of the termination signal.
func (b *BaseProcess) Stop(timeout time.Duration) error {
	if b.cmd == nil || b.cmd.Process == nil || b.stopped {
		return nil
	}
	b.stopped = true
	pid := b.cmd.Process.Pid
	if err := terminate(b.cmd, b.exit, timeout, b.name); err != nil {
		b.log.Warn("process stop failed; process may be orphaned",
			"process", b.name, "pid", pid, "error", err)
		return err
	}
	b.log.Debug("process stopped", "process", b.name, "pid", pid)
	return nil
}

// Close releases the parent's end of the output pipe. If the child is still
// running it is stopped first; callers are expected to Stop before Close.
func (b *BaseProcess) Close() {
	if b.cmd != nil && !b.stopped && !b.hasExited() {
		b.log.Warn("process.Close called without Stop; stopping automatically",
			"process", b.name)
		timeout := b.stopTimeout
		if timeout <= 0 {
			timeout = DefaultStopTimeout
		}
		if err := b.Stop(timeout); err != nil {
			b.log.Warn("auto-stop during Close failed", "process", b.name, "error", err)
		}
	}
	if b.output != nil {
		_ = b.output.Close()
		b.output = nil
	}
}

// Logger returns the logger used by this process.
func (b *BaseProcess) Logger() *slog.Logger {
	return b.log
}

// Pid returns the child's process ID, or 0 before Start.
func (b *BaseProcess) Pid() int {
	if b.cmd == nil || b.cmd.Process == nil {
		return 0
	}
	return b.cmd.Process.Pid
}

// Exited returns a channel closed when the child has exited and been
// reaped. It is nil before Start.
func (b *BaseProcess) Exited() <-chan struct{} {
	if b.exit == nil {
		return nil
	}
	return b.exit.done
}

// ExitErr returns the child's exit error once Exited is closed, and nil
// before that.
func (b *BaseProcess) ExitErr() error {
	if !b.hasExited() {
		return nil
	}
	return b.exit.err
}

// Stopped reports whether Stop has been called since Start.
func (b *BaseProcess) Stopped() bool {
	return b.stopped
}

// IsStarted reports whether Start has succeeded.
func (b *BaseProcess) IsStarted() bool {
	return b.cmd != nil
}

func (b *BaseProcess) hasExited() bool {
	if b.exit == nil {
		return false
	}
	select {
	case <-b.exit.done:
		return true
	default:
		return false
	}
}
