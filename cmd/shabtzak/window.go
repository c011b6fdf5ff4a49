package main

import "errors"

// errNoWindow reports that this build or environment cannot open a window.
var errNoWindow = errors.New("no window available")

// hasDisplay reports whether goos with the given environment has a display
// server a window can attach to. Windows and macOS always do; elsewhere the
// GTK webview needs X11 or Wayland.
func hasDisplay(goos string, getenv func(string) string) bool {
	switch goos {
	case "windows", "darwin":
		return true
	}
	return getenv("DISPLAY") != "" || getenv("WAYLAND_DISPLAY") != ""
}
