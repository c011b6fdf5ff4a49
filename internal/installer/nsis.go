// Package installer patches the generated NSIS installer script so a fresh
// install leaves only the application shortcut on the desktop.
package installer

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Marker identifies an already patched script.
const Marker = "Custom cleanup: Remove unwanted shortcuts"

// anchor is the label inside .onInstSuccess after which the cleanup goes.
const anchor = "  run_done:"

const functionEnd = "FunctionEnd"

// Shortcuts are the desktop links removed after installation.
var Shortcuts = []string{
	"api-server.lnk",
	"Uninstall Shabtzak.lnk",
	"resources.lnk",
	"api-server.exe.lnk",
}

// CleanupBlock returns the NSIS lines inserted before FunctionEnd.
func CleanupBlock() string {
	var b strings.Builder
	b.WriteString("\n  ; " + Marker + " (only keep Shabtzak app)\n")
	for _, s := range Shortcuts {
		fmt.Fprintf(&b, "  Delete \"$DESKTOP\\%s\"\n", s)
	}
	return b.String()
}

// Patch inserts the cleanup block right before the first FunctionEnd that
// follows the run_done label. Content that already carries the marker, or
// lacks either anchor, is returned unchanged with changed=false.
func Patch(content string) (patched string, changed bool) {
	if strings.Contains(content, Marker) {
		return content, false
	}
	pos := strings.Index(content, anchor)
	if pos < 0 {
		return content, false
	}
	end := strings.Index(content[pos:], functionEnd)
	if end < 0 {
		return content, false
	}
	at := pos + end
	return content[:at] + CleanupBlock() + content[at:], true
}

// DefaultScriptPath returns where the bundler leaves the x64 installer
// script under manifestDir.
func DefaultScriptPath(manifestDir string) string {
	return filepath.Join(manifestDir, "target", "release", "nsis", "x64", "installer.nsi")
}

// PatchFile patches the script at path in place, keeping its permissions.
// A missing file is not an error: the bundler may not have produced one on
// this platform.
func PatchFile(path string) (changed bool, err error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat installer script: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("read installer script: %w", err)
	}
	patched, changed := Patch(string(data))
	if !changed {
		return false, nil
	}
	if err := os.WriteFile(path, []byte(patched), info.Mode().Perm()); err != nil {
		return false, fmt.Errorf("write installer script: %w", err)
	}
	return true, nil
}
