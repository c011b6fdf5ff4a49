package shell

import (
	"os"
	"path/filepath"

	"github.com/shabtzak/shell/internal/core"
)

// supervisorConfig wraps core.Config so internal types stay out of the
// public API.
type supervisorConfig struct {
	core.Config
}

func (c supervisorConfig) toCoreConfig() core.Config {
	return c.Config
}

// defaultSupervisorConfig returns the configuration New starts from.
func defaultSupervisorConfig() supervisorConfig {
	return supervisorConfig{core.Config{
		Identifier:    DefaultIdentifier,
		SidecarBinary: DefaultSidecarName,
		SeedDBPath:    BundledDBPath(),
		DBFileName:    DefaultDBFileName,
		LogFileName:   DefaultLogFileName,
		Host:          DefaultHost,
		Port:          DefaultPort,
		DatabaseEnv:   DefaultDatabaseEnv,
		StopTimeout:   DefaultStopTimeout,
		LockTimeout:   DefaultLockTimeout,
	}}
}

// BundledDBPath returns where the application bundle keeps the template
// database: next to the running executable. It returns "" when the
// executable path is unknown, which disables seeding.
func BundledDBPath() string {
	exe, err := os.Executable()
	if err != nil {
		return ""
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Join(filepath.Dir(exe), DefaultDBFileName)
}
