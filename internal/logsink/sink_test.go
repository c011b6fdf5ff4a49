package logsink

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func readLog(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path) //nolint:gosec // G304: path is test-controlled
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	return string(b)
}

func TestSink_WriteLine(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		line     string
		wantFile string
	}{
		"plain":          {line: "INFO:     Started server process [1234]", wantFile: "[api] INFO:     Started server process [1234]\n"},
		"color":          {line: "\x1b[32mOK\x1b[0m", wantFile: "[api] OK\n"},
		"compound color": {line: "\x1b[1;31mERROR\x1b[0m: boom", wantFile: "[api] ERROR: boom\n"},
		"hebrew":         {line: "שבצק", wantFile: "[api] שבצק\n"},
		"empty":          {line: "", wantFile: "[api] \n"},
		"erase line":     {line: "\x1b[2Kclear", wantFile: "[api] clear\n"},
		"window title":   {line: "\x1b]0;uvicorn\x07ready", wantFile: "[api] ready\n"},
		"invalid utf-8":  {line: "\xffbad", wantFile: "[api] bad\n"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "backend.log")
			var echo bytes.Buffer
			s := Open(path, &echo, discardLogger())
			if s.Degraded() {
				t.Fatal("sink unexpectedly degraded")
			}

			s.WriteLine(tc.line)

			// Flushed per line: visible before Close.
			if got := readLog(t, path); got != tc.wantFile {
				t.Errorf("file = %q, want %q", got, tc.wantFile)
			}
			if got, want := echo.String(), "[api] "+tc.line+"\n"; got != want {
				t.Errorf("echo = %q, want %q", got, want)
			}
			if err := s.Close(); err != nil {
				t.Fatalf("Close() error: %v", err)
			}
		})
	}
}

func TestSink_Appends(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "backend.log")
	if err := os.WriteFile(path, []byte("[api] previous run\n"), 0o644); err != nil {
		t.Fatalf("seed log: %v", err)
	}

	s := Open(path, nil, discardLogger())
	s.WriteLine("first")
	s.WriteLine("second")
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	want := "[api] previous run\n[api] first\n[api] second\n"
	if got := readLog(t, path); got != want {
		t.Errorf("file = %q, want %q", got, want)
	}
}

func TestSink_DegradesWhenUnopenable(t *testing.T) {
	t.Parallel()

	// A regular file where the parent directory should be.
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}

	var logs, echo bytes.Buffer
	s := Open(filepath.Join(blocker, "backend.log"), &echo, slog.New(slog.NewTextHandler(&logs, nil)))
	if !s.Degraded() {
		t.Fatal("expected degraded sink")
	}

	s.WriteLine("\x1b[32mstill echoed\x1b[0m")
	if got, want := echo.String(), "[api] \x1b[32mstill echoed\x1b[0m\n"; got != want {
		t.Errorf("echo = %q, want %q", got, want)
	}
	if !strings.Contains(logs.String(), "backend log file unavailable") {
		t.Errorf("expected a warning, got logs %q", logs.String())
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close() on degraded sink: %v", err)
	}
}

func TestSink_CloseIdempotent(t *testing.T) {
	t.Parallel()

	s := Open(filepath.Join(t.TempDir(), "backend.log"), nil, discardLogger())
	if err := s.Close(); err != nil {
		t.Fatalf("first Close() error: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close() error: %v", err)
	}
	if !s.Degraded() {
		t.Error("closed sink should report degraded")
	}
	s.WriteLine("after close") // must not panic
}
