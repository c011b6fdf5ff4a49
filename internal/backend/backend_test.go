package backend

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/shabtzak/shell/internal/announce"
	"github.com/shabtzak/shell/internal/netutil"
	"github.com/shabtzak/shell/internal/process"
)

func validConfig() Config {
	return Config{
		Binary:      "/opt/shabtzak/api-server",
		DatabaseURL: "sqlite:///tmp/shabtzak.db",
		DatabaseEnv: "DATABASE_URL",
		Host:        "127.0.0.1",
		Port:        8000,
	}
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		mutate  func(*Config)
		wantErr bool
	}{
		"valid":             {mutate: func(*Config) {}},
		"empty binary":      {mutate: func(c *Config) { c.Binary = "" }, wantErr: true},
		"empty db url":      {mutate: func(c *Config) { c.DatabaseURL = "" }, wantErr: true},
		"empty db env name": {mutate: func(c *Config) { c.DatabaseEnv = "" }, wantErr: true},
		"empty host":        {mutate: func(c *Config) { c.Host = "" }, wantErr: true},
		"zero port":         {mutate: func(c *Config) { c.Port = 0 }, wantErr: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			tc.mutate(&cfg)
			_, err := New(cfg)
			if (err != nil) != tc.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestProcess_ArgsAndEnv(t *testing.T) {
	t.Parallel()

	p, err := New(validConfig())
	if err != nil {
		t.Fatal(err)
	}
	if got, want := strings.Join(p.Args(), " "), "--host 127.0.0.1 --port 8000"; got != want {
		t.Errorf("Args() = %q, want %q", got, want)
	}
	env := p.Env()
	if got := env[len(env)-1]; got != "DATABASE_URL=sqlite:///tmp/shabtzak.db" {
		t.Errorf("last env entry = %q", got)
	}
	if len(env) != len(os.Environ())+1 {
		t.Errorf("env has %d entries, want inherited environment plus one", len(env))
	}
}

func startFake(t *testing.T, mode string) (*Process, io.ReadCloser) {
	t.Helper()
	t.Setenv(fakeBackendEnv, mode)
	cfg := validConfig()
	cfg.Binary = os.Args[0]
	cfg.DatabaseURL = "sqlite:///C:/Users/me/AppData/Roaming/shabtzak/shabtzak.db"
	p, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	r, err := p.Start(context.Background())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() {
		_ = p.Stop(5 * time.Second)
		p.Close()
	})
	return p, r
}

func readLines(t *testing.T, br *bufio.Reader, n int) []string {
	t.Helper()
	var lines []string
	for range n {
		line, err := br.ReadString('\n')
		if err != nil {
			t.Fatalf("read line %d: %v", len(lines)+1, err)
		}
		lines = append(lines, strings.TrimRight(line, "\r\n"))
	}
	return lines
}

// Not parallel: t.Setenv.
func TestProcess_StartPassesEnvAndArgs(t *testing.T) {
	p, r := startFake(t, "serve")
	lines := readLines(t, bufio.NewReader(r), 3)

	if !slices.Contains(lines, "env sqlite:///C:/Users/me/AppData/Roaming/shabtzak/shabtzak.db") {
		t.Errorf("DATABASE_URL not seen by child; lines = %q", lines)
	}
	if !slices.Contains(lines, "args --host 127.0.0.1 --port 8000") {
		t.Errorf("args not seen by child; lines = %q", lines)
	}

	var port uint16
	for _, l := range lines {
		if m, ok := announce.Parse(l); ok {
			port = m.Port
		}
	}
	if port == 0 {
		t.Fatalf("no announcement in %q", lines)
	}
	addr := netutil.HostPort("127.0.0.1", port)
	if err := p.WaitReady(context.Background(), addr, 5*time.Second); err != nil {
		t.Fatalf("WaitReady: %v", err)
	}

	if err := p.Stop(5 * time.Second); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if !p.Stopped() {
		t.Error("Stopped() = false after Stop")
	}
}

func TestProcess_StartTwice(t *testing.T) {
	p, _ := startFake(t, "serve")
	if _, err := p.Start(context.Background()); !errors.Is(err, process.ErrAlreadyStarted) {
		t.Fatalf("second Start() error = %v, want ErrAlreadyStarted", err)
	}
}

func TestProcess_ExitBeforeReady(t *testing.T) {
	p, r := startFake(t, "exit")
	_, _ = io.Copy(io.Discard, r)

	select {
	case <-p.Exited():
	case <-time.After(10 * time.Second):
		t.Fatal("fake backend did not exit")
	}
	if p.ExitErr() == nil {
		t.Fatal("expected non-nil exit error for status 7")
	}
	err := p.WaitReady(context.Background(), "127.0.0.1:1", 5*time.Second)
	if !errors.Is(err, process.ErrProcessExited) {
		t.Fatalf("WaitReady() error = %v, want ErrProcessExited", err)
	}
	if !errors.Is(err, p.ExitErr()) {
		t.Errorf("WaitReady() error = %v, want it to carry the exit status", err)
	}
}

func TestProcess_StartCanceledContext(t *testing.T) {
	t.Parallel()

	p, err := New(validConfig())
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Start(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Start() error = %v, want context.Canceled", err)
	}
}

func TestProcess_StartMissingBinary(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Binary = filepath.Join(t.TempDir(), "api-server")
	p, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.Start(context.Background()); err == nil {
		t.Fatal("expected spawn error for missing binary")
	}
}

func TestResolveBinary(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	exe := filepath.Join(dir, "api-server")
	if err := os.WriteFile(exe, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	plain := filepath.Join(dir, "plain")
	if err := os.WriteFile(plain, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	tests := map[string]struct {
		name    string
		want    string
		wantErr bool
		unix    bool
	}{
		"explicit path":         {name: exe, want: exe},
		"explicit missing path": {name: filepath.Join(dir, "missing"), wantErr: true},
		"directory":             {name: dir, wantErr: true},
		"not executable":        {name: plain, wantErr: true, unix: true},
		"empty name":            {name: "", wantErr: true},
		"bare name not on PATH": {name: "shabtzak-no-such-sidecar-binary", wantErr: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if tc.unix && runtime.GOOS == "windows" {
				t.Skip("permission bits are not enforced on windows")
			}
			got, err := ResolveBinary(tc.name)
			if tc.wantErr {
				if !errors.Is(err, ErrSidecarNotFound) {
					t.Fatalf("error = %v, want ErrSidecarNotFound", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("ResolveBinary() = %q, want %q", got, tc.want)
			}
		})
	}
}
