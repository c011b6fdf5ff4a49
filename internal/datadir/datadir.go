// Package datadir locates the per-user directory that holds the database
// and the backend log.
package datadir

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/shabtzak/shell/internal/fileutil"
)

// FallbackName is the directory created under os.TempDir when the per-user
// location is unusable.
const FallbackName = "shabtzak"

// Base returns the OS per-user application data directory, without the
// application identifier:
//
//   - Linux/Unix: $XDG_DATA_HOME or ~/.local/share
//   - macOS:      ~/Library/Application Support
//   - Windows:    %APPDATA%, or ~/AppData/Roaming
//
// A relative $XDG_DATA_HOME is ignored.
func Base() (string, error) {
	switch runtime.GOOS {
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return appData, nil
		}
	case "darwin", "ios":
	default:
		if xdg := os.Getenv("XDG_DATA_HOME"); filepath.IsAbs(xdg) {
			return xdg, nil
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(home, "AppData", "Roaming"), nil
	case "darwin", "ios":
		return filepath.Join(home, "Library", "Application Support"), nil
	default:
		return filepath.Join(home, ".local", "share"), nil
	}
}

// Dir returns <Base>/<identifier> and creates it.
func Dir(identifier string) (string, error) {
	if identifier == "" {
		return "", errors.New("identifier must not be empty")
	}
	if filepath.Base(identifier) != identifier || identifier == "." || identifier == ".." {
		return "", fmt.Errorf("identifier %q must be a single path element", identifier)
	}
	base, err := Base()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(base, identifier)
	if err := fileutil.EnsureDir(dir); err != nil {
		return "", err
	}
	return dir, nil
}

// Fallback returns <os.TempDir>/shabtzak, made absolute since $TMPDIR may
// be relative, and tries to create it. Creation errors are returned with
// the path so callers can still log it; the backend gets the path either way.
func Fallback() (string, error) {
	dir := filepath.Join(os.TempDir(), FallbackName)
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	return dir, fileutil.EnsureDir(dir)
}

// Resolve returns the data directory for identifier. It never fails: when
// the per-user directory cannot be resolved or created it returns the
// temp-dir fallback, fellBack=true, and the error that caused the fallback.
func Resolve(identifier string) (dir string, fellBack bool, cause error) {
	dir, err := Dir(identifier)
	if err == nil {
		return dir, false, nil
	}
	fb, fbErr := Fallback()
	return fb, true, errors.Join(err, fbErr)
}
