//go:build !linux && !windows

package process

import "os/exec"

// configureSysProcAttr is a no-op: parent-death signals are Linux only.
// The child is stopped by Stop on normal shutdown.
func configureSysProcAttr(_ *exec.Cmd) {}
