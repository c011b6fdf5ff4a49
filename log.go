package shell

import (
	"log/slog"

	"github.com/shabtzak/shell/internal/core"
)

// SetLogger replaces the logger used by the shell. The logger should carry
// any attributes the application wants; none are added.
//
// If l is nil, the logger resets to slog.Default() with a
// "component=shabtzak" attribute. Call SetLogger(nil) after
// slog.SetDefault() to pick up the change.
//
// SetLogger is safe to call concurrently with a running Supervisor, but the
// switch is only guaranteed to be observed by work started after it returns.
func SetLogger(l *slog.Logger) {
	core.SetLogger(l)
}
