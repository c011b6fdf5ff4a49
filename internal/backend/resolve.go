package backend

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/shabtzak/shell/internal/sentinel"
)

// ErrSidecarNotFound is returned when the sidecar executable cannot be
// located.
const ErrSidecarNotFound = sentinel.Error("sidecar executable not found")

// ResolveBinary locates the sidecar executable named name.
//
// A name containing a path separator is used as given. A bare name is
// looked up next to the running executable first (where bundles place
// their sidecars) and then on PATH. On Windows ".exe" is appended to bare
// names that lack it.
func ResolveBinary(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: empty name", ErrSidecarNotFound)
	}
	if strings.ContainsAny(name, `/\`) {
		if err := checkExecutable(name); err != nil {
			return "", fmt.Errorf("%w: %s: %w", ErrSidecarNotFound, name, err)
		}
		return filepath.Abs(name)
	}

	file := name
	if runtime.GOOS == "windows" && !strings.EqualFold(filepath.Ext(file), ".exe") {
		file += ".exe"
	}

	if exe, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(exe), file)
		if checkExecutable(candidate) == nil {
			return candidate, nil
		}
	}

	path, err := exec.LookPath(file)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrSidecarNotFound, name, err)
	}
	return filepath.Abs(path)
}

func checkExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return errors.New("is a directory")
	}
	if runtime.GOOS != "windows" && info.Mode().Perm()&0o111 == 0 {
		return fs.ErrPermission
	}
	return nil
}
