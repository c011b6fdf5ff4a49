package core

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/shabtzak/shell/internal/webui"
)

// Config holds configuration for a Supervisor.
//
// All fields are immutable after NewSupervisor. Goroutines started by Start
// read them without synchronization.
type Config struct {
	// Identifier names the per-user data directory, e.g. "com.shabtzak.app".
	Identifier string

	// DataDir, when set, is used instead of resolving the per-user directory.
	DataDir string

	// SidecarBinary is the sidecar name or path. Bare names are looked up
	// next to the running executable, then on PATH.
	SidecarBinary string

	// SeedDBPath is the bundled template database. Empty disables seeding.
	SeedDBPath string

	// DBFileName and LogFileName are created inside the data directory.
	DBFileName  string
	LogFileName string

	// Host and Port are passed to the sidecar. Port is also the port
	// reported until the sidecar announces one.
	Host string
	Port uint16

	// DatabaseEnv is the variable that carries the database URL.
	DatabaseEnv string

	// StopTimeout bounds each stop of the sidecar in Shutdown.
	StopTimeout time.Duration

	// LockTimeout is how long Start waits for another shell to release the
	// data directory lock.
	LockTimeout time.Duration

	// Evaluator receives backend URL scripts. nil runs headless.
	Evaluator webui.Evaluator

	// Echo receives the raw "[api] " lines. nil means os.Stderr.
	Echo io.Writer
}

// Validate checks all Config invariants and reports every violation.
func (c Config) Validate() error {
	var errs []error

	if c.Identifier == "" && c.DataDir == "" {
		errs = append(errs, errors.New("identifier or data directory must be set"))
	}
	if c.SidecarBinary == "" {
		errs = append(errs, errors.New("sidecar binary must not be empty"))
	}
	if err := validFileName("database file name", c.DBFileName); err != nil {
		errs = append(errs, err)
	}
	if err := validFileName("log file name", c.LogFileName); err != nil {
		errs = append(errs, err)
	}
	if c.Host == "" {
		errs = append(errs, errors.New("host must not be empty"))
	}
	if c.Port == 0 {
		errs = append(errs, errors.New("port must be greater than 0"))
	}
	if c.DatabaseEnv == "" {
		errs = append(errs, errors.New("database env name must not be empty"))
	}
	if c.StopTimeout <= 0 {
		errs = append(errs, fmt.Errorf("stop timeout must be greater than 0, got %s", c.StopTimeout))
	}
	if c.LockTimeout < 0 {
		errs = append(errs, fmt.Errorf("lock timeout must not be negative, got %s", c.LockTimeout))
	}

	return errors.Join(errs...)
}

func validFileName(what, name string) error {
	if name == "" {
		return fmt.Errorf("%s must not be empty", what)
	}
	if filepath.Base(name) != name || name == "." || name == ".." {
		return fmt.Errorf("%s %q must be a plain file name", what, name)
	}
	return nil
}
