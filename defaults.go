package shell

import "time"

// Default configuration values for New. They are exported so callers can
// build values relative to them.
const (
	// DefaultIdentifier names the per-user data directory.
	DefaultIdentifier = "com.shabtzak.app"

	// DefaultSidecarName is the bundled backend executable, looked up next
	// to the running executable and then on PATH.
	DefaultSidecarName = "api-server"

	// DefaultDBFileName is the database file in the data directory, and the
	// name of the bundled template next to the executable.
	DefaultDBFileName = "shabtzak.db"

	// DefaultLogFileName is the backend log in the data directory.
	DefaultLogFileName = "backend.log"

	// DefaultHost is the address the sidecar is told to bind.
	DefaultHost = "127.0.0.1"

	// DefaultPort is the port the sidecar is told to use, and the port
	// reported until it announces another.
	DefaultPort uint16 = 8000

	// DefaultDatabaseEnv carries the database URL to the sidecar.
	DefaultDatabaseEnv = "DATABASE_URL"

	// DefaultStopTimeout bounds stopping the sidecar during Shutdown.
	// SIGKILL follows SIGTERM after at most 5 seconds.
	DefaultStopTimeout = 10 * time.Second

	// DefaultLockTimeout is how long Start waits for a previous shell to
	// release the data directory.
	DefaultLockTimeout = 2 * time.Second

	// DefaultReadyTimeout is a reasonable WaitReady timeout for a cold
	// start of a bundled Python backend.
	DefaultReadyTimeout = 60 * time.Second
)
