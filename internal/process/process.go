package process

import (
	"errors"
	"fmt"
	"os/exec"
	"syscall"
	"time"
)

// DefaultStopTimeout is used when no stop timeout is configured.
const DefaultStopTimeout = 10 * time.Second

// termGracePeriod is how long a child gets after SIGTERM before SIGKILL.
// It is capped at the caller's timeout.
const termGracePeriod = 5 * time.Second

// killDrainTimeout bounds the wait for the reaper after SIGKILL. SIGKILL
// cannot be caught, so hitting this means cmd.Wait is stuck.
const killDrainTimeout = 10 * time.Second

// waitExit waits up to timeout for the reaper and reports whether it finished.
func waitExit(exit *exitState, timeout time.Duration) bool {
	t := time.NewTimer(timeout)
	defer t.Stop()

	select {
	case <-exit.done:
		return true
	case <-t.C:
		return false
	}
}

// terminate sends SIGTERM, escalates to SIGKILL after the grace period, and
// waits for the reaper. Where SIGTERM cannot be delivered (Windows, or the
// child is already gone) it kills immediately.
//
// Worst case it blocks for timeout + killDrainTimeout.
func terminate(cmd *exec.Cmd, exit *exitState, timeout time.Duration, name string) error {
	if cmd == nil || cmd.Process == nil {
		return nil
	}
	if exit == nil {
		return fmt.Errorf("%s: exit state must not be nil", name)
	}

	if err := cmd.Process.Signal(syscall.SIGTERM); err != nil {
		_ = cmd.Process.Kill()
		if !waitExit(exit, killDrainTimeout) {
			return fmt.Errorf("%s: timed out waiting for process to exit after kill", name)
		}
		return expectStopExit(exit.err, name, true)
	}

	grace := min(termGracePeriod, timeout)
	killTimer := time.AfterFunc(grace, func() {
		// Kill on an already reaped process returns an error we do not need.
		_ = cmd.Process.Kill()
	})
	defer killTimer.Stop()

	if waitExit(exit, timeout) {
		return expectStopExit(exit.err, name, false)
	}
	if !waitExit(exit, killDrainTimeout) {
		return fmt.Errorf("%s: timed out waiting for process to exit after SIGKILL", name)
	}
	if err := expectStopExit(exit.err, name, true); err != nil {
		return fmt.Errorf("%s stop timeout: %w", name, err)
	}
	return nil
}

// expectStopExit interprets cmd.Wait's result after the parent asked the
// child to stop. A clean exit, or death by SIGTERM/SIGKILL, is success.
// forced means the parent killed the child outright, in which case any exit
// status counts as success (Windows reports a kill as exit code 1).
func expectStopExit(err error, name string, forced bool) error {
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if forced {
			return nil
		}
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok {
			sig := status.Signal()
			if sig == syscall.SIGTERM || sig == syscall.SIGKILL {
				return nil
			}
		}
	}
	return fmt.Errorf("%s: %w", name, err)
}
