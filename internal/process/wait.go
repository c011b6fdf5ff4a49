package process

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/shabtzak/shell/internal/sentinel"
)

const (
	// ErrIntervalNotPositive indicates a non-positive poll interval.
	ErrIntervalNotPositive = sentinel.Error("interval must be positive")

	// ErrTimeoutNotPositive indicates a non-positive timeout.
	ErrTimeoutNotPositive = sentinel.Error("timeout must be positive")

	// ErrProcessExited indicates the child exited before it started serving.
	ErrProcessExited = sentinel.Error("process exited before becoming ready")
)

// ReadyCheck tests once whether the child serves. A nil error means ready; any
// other error means "not yet" and is retried. The last one is wrapped into
// the timeout error.
type ReadyCheck func(ctx context.Context) error

// WaitReadyConfig configures WaitReady.
type WaitReadyConfig struct {
	Interval time.Duration
	Timeout  time.Duration
	Name     string       // for errors and logs, e.g. "api-server"
	Addr     string       // address being checked, for errors and logs
	Logger   *slog.Logger // defaults to slog.Default()

	// Exited, if non-nil, ends the wait with ErrProcessExited once closed.
	// ExitErr, if non-nil, is called after that to attach the exit status.
	Exited  <-chan struct{}
	ExitErr func() error
}

// WaitReady runs check every Interval until it succeeds, the child exits,
// ctx is done, or Timeout elapses. An exit observed after a successful
// check still fails the wait: whatever answered was not the child.
func WaitReady(ctx context.Context, cfg WaitReadyConfig, check ReadyCheck) error {
	if cfg.Name == "" {
		return errors.New("wait ready: name must not be empty")
	}
	if cfg.Interval <= 0 {
		return fmt.Errorf("wait for %s: %w", cfg.Name, ErrIntervalNotPositive)
	}
	if cfg.Timeout <= 0 {
		return fmt.Errorf("wait for %s: %w", cfg.Name, ErrTimeoutNotPositive)
	}

	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	// The condition runs sequentially; neither variable needs locking.
	attempt := 0
	var lastErr error
	err := wait.PollUntilContextTimeout(ctx, cfg.Interval, cfg.Timeout, true,
		func(pollCtx context.Context) (bool, error) {
			if err := exitedErr(cfg); err != nil {
				return false, err
			}
			attempt++
			lastErr = check(pollCtx)
			if err := exitedErr(cfg); err != nil {
				return false, err
			}
			if lastErr != nil {
				log.Debug("not ready yet", "name", cfg.Name, "addr", cfg.Addr,
					"attempt", attempt, "error", lastErr)
				return false, nil
			}
			log.Debug("ready", "name", cfg.Name, "addr", cfg.Addr, "attempt", attempt)
			return true, nil
		})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrProcessExited):
		return err
	case lastErr != nil:
		return fmt.Errorf("wait for %s at %s after %d attempts: %w (last attempt: %w)",
			cfg.Name, cfg.Addr, attempt, err, lastErr)
	default:
		return fmt.Errorf("wait for %s at %s: %w", cfg.Name, cfg.Addr, err)
	}
}

func exitedErr(cfg WaitReadyConfig) error {
	if cfg.Exited == nil {
		return nil
	}
	select {
	case <-cfg.Exited:
	default:
		return nil
	}
	var status error
	if cfg.ExitErr != nil {
		status = cfg.ExitErr()
	}
	if status == nil {
		return fmt.Errorf("%s: %w (exit status 0)", cfg.Name, ErrProcessExited)
	}
	return fmt.Errorf("%s: %w: %w", cfg.Name, ErrProcessExited, status)
}
