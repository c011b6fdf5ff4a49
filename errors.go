package shell

import "github.com/shabtzak/shell/internal/core"

// Sentinel errors for error inspection with errors.Is.
const (
	// ErrSidecarNotFound is returned by Start when the api-server
	// executable cannot be located.
	ErrSidecarNotFound = core.ErrSidecarNotFound

	// ErrAlreadyStarted is returned by Start on a Supervisor that was
	// started or shut down before.
	ErrAlreadyStarted = core.ErrAlreadyStarted

	// ErrNotStarted is returned by the wait methods before Start.
	ErrNotStarted = core.ErrNotStarted

	// ErrAlreadyRunning is returned by Start when another shell holds the
	// data directory.
	ErrAlreadyRunning = core.ErrAlreadyRunning

	// ErrStreamClosed is returned by WaitAnnounced when the sidecar's output
	// ended without announcing a port.
	ErrStreamClosed = core.ErrStreamClosed
)
