package core

import (
	"github.com/shabtzak/shell/internal/backend"
	"github.com/shabtzak/shell/internal/sentinel"
)

// ErrAlreadyStarted is returned by Start on a Supervisor that was started
// before. A Supervisor runs the sidecar at most once.
const ErrAlreadyStarted = sentinel.Error("supervisor already started")

// ErrNotStarted is returned by the wait methods before Start succeeded.
const ErrNotStarted = sentinel.Error("supervisor not started")

// ErrAlreadyRunning is returned by Start when another shell holds the data
// directory lock.
const ErrAlreadyRunning = sentinel.Error("another instance is using the data directory")

// ErrStreamClosed is returned by WaitAnnounced when the sidecar's output
// ended without a port announcement.
const ErrStreamClosed = sentinel.Error("backend output closed before a port was announced")

// ErrSidecarNotFound is returned by Start when the sidecar executable
// cannot be located.
const ErrSidecarNotFound = backend.ErrSidecarNotFound
