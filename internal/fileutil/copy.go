package fileutil

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/shabtzak/shell/internal/sentinel"
)

// ErrEmptySrc is returned when a source path is empty.
const ErrEmptySrc = sentinel.Error("source path must not be empty")

// ErrEmptyDst is returned when a destination path is empty.
const ErrEmptyDst = sentinel.Error("destination path must not be empty")

// ErrDstExists is returned by CopyFile with NoClobber when the destination
// is already present. The existing file is left untouched.
const ErrDstExists = sentinel.Error("destination already exists")

// CopyFileOptions configures file copy behavior.
type CopyFileOptions struct {
	Mode      *os.FileMode // Optional: permissions of the new file (ignored on Windows)
	Sync      bool         // fsync dst before closing
	Atomic    bool         // write to a temp file in dst's directory, then move it into place
	NoClobber bool         // fail with ErrDstExists instead of replacing an existing dst
}

// CopyFile copies src to dst byte for byte, creating dst's parent
// directories as needed. A nil opts copies with mode 0644 and replaces dst.
//
// With Atomic, readers never observe a partially written dst. With
// NoClobber, an existing dst is never modified; combined with Atomic the
// final step is a hard link, which fails instead of replacing a dst that
// appeared while the copy was in flight.
func CopyFile(src, dst string, opts *CopyFileOptions) (retErr error) {
	if src == "" {
		return ErrEmptySrc
	}
	if dst == "" {
		return ErrEmptyDst
	}

	var o CopyFileOptions
	if opts != nil {
		o = *opts
	}

	if o.NoClobber {
		exists, err := Exists(dst)
		if err != nil {
			return fmt.Errorf("check destination: %w", err)
		}
		if exists {
			return fmt.Errorf("%w: %s", ErrDstExists, dst)
		}
	}

	if err := EnsureDirForFile(dst); err != nil {
		return fmt.Errorf("prepare destination: %w", err)
	}

	srcFile, err := os.Open(src) //nolint:gosec // G304: paths come from the shell's own config
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer func() {
		if closeErr := srcFile.Close(); closeErr != nil && retErr == nil {
			retErr = fmt.Errorf("close source: %w", closeErr)
		}
	}()

	dstFile, writePath, err := openDst(dst, fileMode(o), o.Atomic, o.NoClobber)
	if err != nil {
		return err
	}
	defer func() {
		// The temp file is always removed; dst itself only on failure, and
		// only when this call created it.
		if writePath != dst || retErr != nil {
			_ = os.Remove(writePath)
		}
	}()

	if _, err = io.Copy(dstFile, srcFile); err != nil {
		_ = dstFile.Close()
		return fmt.Errorf("copy: %w", err)
	}

	if o.Sync || o.Atomic {
		if err := dstFile.Sync(); err != nil {
			_ = dstFile.Close()
			return fmt.Errorf("sync: %w", err)
		}
	}
	if err := dstFile.Close(); err != nil {
		return fmt.Errorf("close destination: %w", err)
	}

	if writePath == dst {
		return nil
	}
	return place(writePath, dst, o.NoClobber)
}

func fileMode(o CopyFileOptions) os.FileMode {
	if o.Mode != nil {
		return *o.Mode
	}
	return 0o644
}

// openDst opens the file the copy writes into and returns its path. For
// atomic copies that is a temp file next to dst.
func openDst(dst string, mode os.FileMode, atomic, noClobber bool) (*os.File, string, error) {
	if atomic {
		tmpFile, err := os.CreateTemp(filepath.Dir(dst), ".tmp-copy-*")
		if err != nil {
			return nil, "", fmt.Errorf("create temp file: %w", err)
		}
		if err := tmpFile.Chmod(mode); err != nil {
			_ = tmpFile.Close()
			_ = os.Remove(tmpFile.Name())
			return nil, "", fmt.Errorf("chmod temp file: %w", err)
		}
		return tmpFile, tmpFile.Name(), nil
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if noClobber {
		flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}
	f, err := os.OpenFile(dst, flags, mode) //nolint:gosec // G304: paths come from the shell's own config
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, "", fmt.Errorf("%w: %s", ErrDstExists, dst)
		}
		return nil, "", fmt.Errorf("create destination: %w", err)
	}
	return f, dst, nil
}

// place moves the finished temp file to dst. Without noClobber this is a
// rename. With noClobber it is a hard link, falling back to a checked rename
// on filesystems that do not support links.
func place(tmpPath, dst string, noClobber bool) error {
	if !noClobber {
		if err := os.Rename(tmpPath, dst); err != nil {
			return fmt.Errorf("rename temp file to destination: %w", err)
		}
		return nil
	}

	err := os.Link(tmpPath, dst)
	if err == nil {
		return nil
	}
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("%w: %s", ErrDstExists, dst)
	}

	exists, statErr := Exists(dst)
	if statErr != nil {
		return fmt.Errorf("check destination: %w", statErr)
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrDstExists, dst)
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		return fmt.Errorf("rename temp file to destination: %w", err)
	}
	return nil
}
