// Package process runs a single child executable whose stdout and stderr
// are merged into one pipe read by the parent.
//
// BaseProcess owns the child: it starts it, reaps it exactly once, and
// stops it with SIGTERM followed by SIGKILL after a grace period. WaitReady
// polls a readiness check while watching for the child exiting early.
package process
