package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/shabtzak/shell/internal/netutil"
	"github.com/shabtzak/shell/internal/process"
)

// readinessPollInterval is the interval between TCP dials in WaitReady.
const readinessPollInterval = 50 * time.Millisecond

// processName labels the sidecar in logs and errors.
const processName = "api-server"

var _ process.Stoppable = (*Process)(nil)

// Config holds the configuration for the sidecar.
type Config struct {
	Binary      string // resolved path to the sidecar executable
	DatabaseURL string // value exported to the child
	DatabaseEnv string // environment variable name, e.g. DATABASE_URL
	Host        string // --host argument
	Port        uint16 // --port argument
	Dir         string // working directory; empty inherits the shell's
	StopTimeout time.Duration

	// Logger (optional, defaults to slog.Default())
	Logger *slog.Logger
}

// Process manages the sidecar lifecycle.
type Process struct {
	config Config
	base   process.BaseProcess
}

func (c Config) validate() error {
	if c.Binary == "" {
		return errors.New("binary path must not be empty")
	}
	if c.DatabaseEnv == "" {
		return errors.New("database env name must not be empty")
	}
	if c.DatabaseURL == "" {
		return errors.New("database url must not be empty")
	}
	if c.Host == "" {
		return errors.New("host must not be empty")
	}
	if c.Port == 0 {
		return errors.New("port must be positive")
	}
	return nil
}

// New validates cfg and returns an unstarted Process. It performs no I/O.
func New(cfg Config) (*Process, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid backend config: %w", err)
	}
	return &Process{
		config: cfg,
		base:   process.NewBaseProcess(processName, cfg.Logger, cfg.StopTimeout),
	}, nil
}

// Args returns the command-line arguments passed to the sidecar.
func (p *Process) Args() []string {
	return []string{"--host", p.config.Host, "--port", strconv.Itoa(int(p.config.Port))}
}

// Env returns the child environment: the shell's own environment with the
// database variable appended. A later duplicate wins in os/exec, so an
// inherited value of the same name is overridden.
func (p *Process) Env() []string {
	return append(os.Environ(), p.config.DatabaseEnv+"="+p.config.DatabaseURL)
}

// Start launches the sidecar and returns its merged output stream.
//
// ctx only bounds the launch; the sidecar keeps running after ctx is
// canceled and is stopped with Stop.
func (p *Process) Start(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("start backend: %w", err)
	}
	if p.base.IsStarted() {
		return nil, process.ErrAlreadyStarted
	}

	cmd := exec.Command(p.config.Binary, p.Args()...)
	cmd.Env = p.Env()
	cmd.Dir = p.config.Dir

	r, err := p.base.Start(cmd)
	if err != nil {
		return nil, fmt.Errorf("spawn backend: %w", err)
	}
	p.base.Logger().Info("backend started",
		"binary", p.config.Binary, "pid", p.base.Pid(),
		"host", p.config.Host, "port", p.config.Port)
	return r, nil
}

// WaitReady polls addr until it accepts TCP connections, the sidecar exits,
// or timeout elapses. An early exit is reported as process.ErrProcessExited
// wrapping the sidecar's exit status; a timeout carries the last dial error.
func (p *Process) WaitReady(ctx context.Context, addr string, timeout time.Duration) error {
	if err := process.WaitReady(ctx, process.WaitReadyConfig{
		Interval: readinessPollInterval,
		Timeout:  timeout,
		Name:     processName,
		Addr:     addr,
		Logger:   p.base.Logger(),
		Exited:   p.base.Exited(),
		ExitErr:  p.base.ExitErr,
	}, func(checkCtx context.Context) error {
		return netutil.Dial(checkCtx, addr)
	}); err != nil {
		return fmt.Errorf("backend not ready: %w", err)
	}
	return nil
}

// Exited returns a channel closed once the sidecar has exited.
func (p *Process) Exited() <-chan struct{} {
	return p.base.Exited()
}

// ExitErr returns the sidecar's exit error after Exited is closed.
func (p *Process) ExitErr() error {
	return p.base.ExitErr()
}

// Stopped reports whether Stop was called.
func (p *Process) Stopped() bool {
	return p.base.Stopped()
}

// Pid returns the sidecar's process ID, or 0 before Start.
func (p *Process) Pid() int {
	return p.base.Pid()
}

// Stop terminates the sidecar.
func (p *Process) Stop(timeout time.Duration) error {
	return p.base.Stop(timeout)
}

// Close releases the output pipe.
func (p *Process) Close() {
	p.base.Close()
}
