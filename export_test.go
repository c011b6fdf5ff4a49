package shell

import (
	"io"
	"time"
)

// ConfigSnapshot holds a copy of supervisorConfig fields for test
// assertions from package shell_test.
type ConfigSnapshot struct {
	Identifier    string
	DataDir       string
	SidecarBinary string
	SeedDBPath    string
	DBFileName    string
	LogFileName   string
	Host          string
	Port          uint16
	DatabaseEnv   string
	StopTimeout   time.Duration
	LockTimeout   time.Duration
	Evaluator     Evaluator
	Echo          io.Writer
}

// ApplyOptionsForTesting applies opts to the default configuration and
// returns the result without creating a Supervisor.
func ApplyOptionsForTesting(opts ...Option) ConfigSnapshot {
	cfg := defaultSupervisorConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return ConfigSnapshot{
		Identifier:    cfg.Identifier,
		DataDir:       cfg.DataDir,
		SidecarBinary: cfg.SidecarBinary,
		SeedDBPath:    cfg.SeedDBPath,
		DBFileName:    cfg.DBFileName,
		LogFileName:   cfg.LogFileName,
		Host:          cfg.Host,
		Port:          cfg.Port,
		DatabaseEnv:   cfg.DatabaseEnv,
		StopTimeout:   cfg.StopTimeout,
		LockTimeout:   cfg.LockTimeout,
		Evaluator:     cfg.Evaluator,
		Echo:          cfg.Echo,
	}
}
