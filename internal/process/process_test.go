package process

import (
	"bytes"
	"errors"
	"log/slog"
	"os/exec"
	"strings"
	"testing"
	"time"
)

func TestExpectStopExit_NonSignalErrors(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		err     error
		forced  bool
		wantErr bool
	}{
		"nil error returns nil":         {},
		"nil error when forced":         {forced: true},
		"plain error is unexpected":     {err: errors.New("io failure"), wantErr: true},
		"plain error forced unexpected": {err: errors.New("io failure"), forced: true, wantErr: true},
		"exit error forced is expected": {err: &exec.ExitError{}, forced: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got := expectStopExit(tc.err, "test-proc", tc.forced)
			if tc.wantErr && got == nil {
				t.Fatal("expected error, got nil")
			}
			if !tc.wantErr && got != nil {
				t.Fatalf("expected nil, got %v", got)
			}
		})
	}
}

func TestExpectStopExit_WrapsProcessName(t *testing.T) {
	t.Parallel()

	err := expectStopExit(errors.New("connection refused"), "my-proc", false)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if got := err.Error(); got != "my-proc: connection refused" {
		t.Errorf("error = %q, want %q", got, "my-proc: connection refused")
	}
}

func TestWaitExit(t *testing.T) {
	t.Parallel()

	t.Run("returns true once done is closed", func(t *testing.T) {
		t.Parallel()
		exit := &exitState{done: make(chan struct{})}
		close(exit.done)
		if !waitExit(exit, time.Second) {
			t.Fatal("expected true for a closed done channel")
		}
	})

	t.Run("times out while running", func(t *testing.T) {
		t.Parallel()
		exit := &exitState{done: make(chan struct{})}
		if waitExit(exit, 10*time.Millisecond) {
			t.Fatal("expected false when timeout elapses")
		}
	})
}

func TestTerminate_NilCmdAndState(t *testing.T) {
	t.Parallel()

	if err := terminate(nil, nil, time.Second, "p"); err != nil {
		t.Fatalf("nil cmd: expected nil, got %v", err)
	}
	cmd := exec.Command("does-not-matter")
	if err := terminate(cmd, nil, time.Second, "p"); err != nil {
		t.Fatalf("unstarted cmd: expected nil, got %v", err)
	}
}

func TestNewBaseProcess(t *testing.T) {
	t.Parallel()

	t.Run("creates process with name", func(t *testing.T) {
		t.Parallel()
		bp := NewBaseProcess("api-server", nil, 0)
		if bp.name != "api-server" {
			t.Errorf("name = %q, want %q", bp.name, "api-server")
		}
		if bp.Logger() == nil {
			t.Fatal("expected non-nil logger")
		}
		if bp.IsStarted() {
			t.Error("new process should not be started")
		}
		if bp.Pid() != 0 {
			t.Errorf("Pid() = %d, want 0", bp.Pid())
		}
	})

	t.Run("panics on empty name", func(t *testing.T) {
		t.Parallel()
		defer func() {
			r := recover()
			if r == nil {
				t.Fatal("expected panic for empty name")
			}
			msg, ok := r.(string)
			if !ok {
				t.Fatalf("expected string panic, got %T", r)
			}
			if msg != "shabtzak: process name must not be empty" {
				t.Errorf("panic message = %q", msg)
			}
		}()
		NewBaseProcess("", nil, 0)
	})
}

func TestBaseProcess_NotStarted(t *testing.T) {
	t.Parallel()

	bp := NewBaseProcess("p", nil, 0)
	if err := bp.Stop(time.Second); err != nil {
		t.Fatalf("Stop on unstarted process: %v", err)
	}
	bp.Close()
	if bp.Exited() != nil {
		t.Error("Exited() should be nil before Start")
	}
	if bp.ExitErr() != nil {
		t.Error("ExitErr() should be nil before Start")
	}
	if bp.Stopped() {
		t.Error("Stop on an unstarted process should not mark it stopped")
	}
}

func TestBaseProcess_StartValidation(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		cmd  *exec.Cmd
		want error
	}{
		"nil cmd":    {cmd: nil, want: ErrNilCmd},
		"empty path": {cmd: &exec.Cmd{}, want: ErrEmptyCmdPath},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			bp := NewBaseProcess("p", nil, 0)
			r, err := bp.Start(tc.cmd)
			if !errors.Is(err, tc.want) {
				t.Fatalf("Start() error = %v, want %v", err, tc.want)
			}
			if r != nil {
				t.Fatal("expected nil reader on failure")
			}
			if bp.IsStarted() {
				t.Fatal("process should not be started after a failed Start")
			}
		})
	}
}

func TestBaseProcess_StartMissingBinary(t *testing.T) {
	t.Parallel()

	bp := NewBaseProcess("p", nil, 0)
	cmd := exec.Command("/nonexistent/shabtzak-test-binary")
	if _, err := bp.Start(cmd); err == nil {
		t.Fatal("expected error for missing binary")
	}
	if bp.IsStarted() {
		t.Fatal("process should not be started after a failed Start")
	}
}

type fakeStoppable struct {
	stopErr    error
	stopCalled bool
	closed     bool
}

func (f *fakeStoppable) Stop(time.Duration) error {
	f.stopCalled = true
	return f.stopErr
}

func (f *fakeStoppable) Close() { f.closed = true }

func TestRelease(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		stopErr error
	}{
		"clean stop":  {},
		"stop failed": {stopErr: errors.New("boom")},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			f := &fakeStoppable{stopErr: tc.stopErr}
			p := f
			var logs bytes.Buffer
			err := Release(&p, time.Second, "api-server", slog.New(slog.NewTextHandler(&logs, nil)))
			if !errors.Is(err, tc.stopErr) {
				t.Fatalf("error = %v, want %v", err, tc.stopErr)
			}
			if !f.stopCalled || !f.closed {
				t.Fatalf("stopCalled=%v closed=%v, want both true", f.stopCalled, f.closed)
			}
			if p != nil {
				t.Fatal("pointer should be nil after Release")
			}
			if logged := strings.Contains(logs.String(), "stop failed"); logged != (tc.stopErr != nil) {
				t.Errorf("stop failure logged = %v, want %v:\n%s", logged, tc.stopErr != nil, logs.String())
			}
		})
	}

	t.Run("nil is a no-op", func(t *testing.T) {
		t.Parallel()
		var p *fakeStoppable
		if err := Release(&p, time.Second, "api-server", nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := Release[*fakeStoppable](nil, time.Second, "api-server", nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}
