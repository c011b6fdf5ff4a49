package shell_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shabtzak/shell"
)

func TestNew_MissingSidecar(t *testing.T) {
	t.Parallel()

	sup := shell.New(
		shell.WithDataDir(t.TempDir()),
		shell.WithSidecar(filepath.Join(t.TempDir(), "api-server")),
		shell.WithoutSeedDB(),
		shell.WithLockTimeout(0),
	)
	if err := sup.Start(context.Background()); !errors.Is(err, shell.ErrSidecarNotFound) {
		t.Fatalf("Start() error = %v, want ErrSidecarNotFound", err)
	}
	if err := sup.Shutdown(); err != nil {
		t.Fatalf("Shutdown after failed Start: %v", err)
	}
}

func TestNew_NotStarted(t *testing.T) {
	t.Parallel()

	sup := shell.New(shell.WithPort(8123))
	if got := sup.URL(); got != "http://localhost:8123" {
		t.Errorf("URL() = %q", got)
	}
	if err := sup.WaitReady(context.Background(), time.Second); !errors.Is(err, shell.ErrNotStarted) {
		t.Errorf("WaitReady() error = %v, want ErrNotStarted", err)
	}
	if err := sup.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
}
