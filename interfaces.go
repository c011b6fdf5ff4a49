package shell

import (
	"context"
	"time"
)

// Supervisor boots and owns the api-server sidecar.
//
// Lifecycle:
//
//	New → Start → Port/URL/WaitAnnounced/WaitReady → Shutdown
//
// Start runs at most once. Shutdown is safe at any point, including before
// Start, and is idempotent. All methods are safe for concurrent use.
type Supervisor interface {
	// Start resolves the data directory, seeds the database when absent,
	// launches the sidecar and starts relaying its output. It returns once
	// the sidecar is running. Only a missing or unspawnable sidecar
	// (ErrSidecarNotFound or a spawn error) or another running shell
	// (ErrAlreadyRunning) fails Start; directory, seed and log problems are
	// logged and startup continues.
	Start(ctx context.Context) error

	// Port returns the most recently announced port, or the configured
	// port before any announcement.
	Port() uint16

	// URL returns http://localhost:<Port>.
	URL() string

	// WaitAnnounced blocks until the first port announcement and returns
	// the port. It returns ErrStreamClosed if the sidecar's output ends
	// first.
	WaitAnnounced(ctx context.Context) (uint16, error)

	// WaitReady waits for the announcement and then for the announced port
	// to accept connections, all within timeout.
	WaitReady(ctx context.Context, timeout time.Duration) error

	// Done is closed when the sidecar's output ends. It is nil before Start.
	Done() <-chan struct{}

	// Wait blocks until the sidecar has exited and its output is drained.
	// After Shutdown it returns nil; otherwise the sidecar's exit error.
	Wait() error

	// DataDir, DBPath and LogPath report the paths chosen by Start.
	DataDir() string
	DBPath() string
	LogPath() string

	// Shutdown stops the sidecar and releases the log file and the data
	// directory lock.
	Shutdown() error
}

// Evaluator runs JavaScript in the GUI window. Implementations must be safe
// to call from any goroutine, typically by dispatching onto the UI thread.
type Evaluator interface {
	Eval(js string)
}
