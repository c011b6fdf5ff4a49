package shell

import (
	"github.com/shabtzak/shell/internal/core"
	"github.com/shabtzak/shell/internal/webui"
)

var _ Supervisor = (*core.Supervisor)(nil)

// New returns an unstarted Supervisor configured by opts. It performs no
// I/O.
//
//nolint:ireturn // Returns the Supervisor interface so callers can fake it.
func New(opts ...Option) Supervisor {
	cfg := defaultSupervisorConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return core.NewSupervisor(cfg.toCoreConfig())
}

// BackendURLScript returns the script a window receives when the backend
// announces url. Windows created after the announcement can run it at page
// load so late-loading pages see the URL too.
func BackendURLScript(url string) string {
	return webui.Script(url)
}
