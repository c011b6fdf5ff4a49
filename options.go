package shell

import (
	"fmt"
	"io"
	"time"
)

func requirePositive(name string, v time.Duration) {
	if v <= 0 {
		panic(fmt.Sprintf("shabtzak: %s must be greater than 0, got %v", name, v))
	}
}

func requireNonEmpty(name, s string) {
	if s == "" {
		panic(fmt.Sprintf("shabtzak: %s must not be empty", name))
	}
}

// Option configures a Supervisor during construction via New.
//
// Several With* functions panic on invalid input. Option values are
// normally constants or flags validated by the caller, so an invalid value
// is a programmer error, in the spirit of regexp.MustCompile.
type Option func(*supervisorConfig)

// WithIdentifier sets the application identifier that names the per-user
// data directory.
//
// Default: "com.shabtzak.app".
//
// Panics if id is empty.
func WithIdentifier(id string) Option {
	requireNonEmpty("identifier", id)
	return func(c *supervisorConfig) {
		c.Identifier = id
	}
}

// WithDataDir uses dir instead of the per-user data directory.
// Panics if dir is empty.
func WithDataDir(dir string) Option {
	requireNonEmpty("data directory", dir)
	return func(c *supervisorConfig) {
		c.DataDir = dir
	}
}

// WithSidecar sets the sidecar executable. A bare name is looked up next to
// the running executable, then on PATH; a path is used as given.
//
// Default: "api-server".
//
// Panics if nameOrPath is empty.
func WithSidecar(nameOrPath string) Option {
	requireNonEmpty("sidecar", nameOrPath)
	return func(c *supervisorConfig) {
		c.SidecarBinary = nameOrPath
	}
}

// WithSeedDB sets the template database copied into the data directory on
// first run.
//
// Default: shabtzak.db next to the running executable.
//
// Panics if path is empty; use WithoutSeedDB to disable seeding.
func WithSeedDB(path string) Option {
	requireNonEmpty("seed database path", path)
	return func(c *supervisorConfig) {
		c.SeedDBPath = path
	}
}

// WithoutSeedDB disables seeding; the backend creates its own database.
func WithoutSeedDB() Option {
	return func(c *supervisorConfig) {
		c.SeedDBPath = ""
	}
}

// WithDBFileName sets the database file name inside the data directory.
// Panics if name is empty.
func WithDBFileName(name string) Option {
	requireNonEmpty("database file name", name)
	return func(c *supervisorConfig) {
		c.DBFileName = name
	}
}

// WithLogFileName sets the backend log file name inside the data directory.
// Panics if name is empty.
func WithLogFileName(name string) Option {
	requireNonEmpty("log file name", name)
	return func(c *supervisorConfig) {
		c.LogFileName = name
	}
}

// WithHost sets the --host argument passed to the sidecar.
// Panics if host is empty.
func WithHost(host string) Option {
	requireNonEmpty("host", host)
	return func(c *supervisorConfig) {
		c.Host = host
	}
}

// WithPort sets the --port argument passed to the sidecar and the port
// reported before any announcement.
//
// Default: 8000.
//
// Panics if port is 0.
func WithPort(port uint16) Option {
	if port == 0 {
		panic("shabtzak: port must be greater than 0")
	}
	return func(c *supervisorConfig) {
		c.Port = port
	}
}

// WithDatabaseEnv sets the environment variable that carries the database
// URL. Panics if name is empty.
func WithDatabaseEnv(name string) Option {
	requireNonEmpty("database env name", name)
	return func(c *supervisorConfig) {
		c.DatabaseEnv = name
	}
}

// WithStopTimeout bounds stopping the sidecar in Shutdown.
//
// Default: 10 seconds.
//
// Panics if d <= 0.
func WithStopTimeout(d time.Duration) Option {
	requirePositive("stop timeout", d)
	return func(c *supervisorConfig) {
		c.StopTimeout = d
	}
}

// WithLockTimeout sets how long Start waits for another shell to release
// the data directory. Zero fails immediately.
//
// Default: 2 seconds.
//
// Panics if d < 0.
func WithLockTimeout(d time.Duration) Option {
	if d < 0 {
		panic(fmt.Sprintf("shabtzak: lock timeout must not be negative, got %v", d))
	}
	return func(c *supervisorConfig) {
		c.LockTimeout = d
	}
}

// WithEvaluator attaches the GUI window that receives backend URLs. Without
// one the Supervisor runs headless and only logs the URL.
// Panics if e is nil.
func WithEvaluator(e Evaluator) Option {
	if e == nil {
		panic("shabtzak: evaluator must not be nil")
	}
	return func(c *supervisorConfig) {
		c.Evaluator = e
	}
}

// WithEcho sets where raw "[api] " lines are echoed.
//
// Default: os.Stderr.
//
// Panics if w is nil.
func WithEcho(w io.Writer) Option {
	if w == nil {
		panic("shabtzak: echo writer must not be nil")
	}
	return func(c *supervisorConfig) {
		c.Echo = w
	}
}
