package logsink

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/x/ansi"

	"github.com/shabtzak/shell/internal/fileutil"
)

// Prefix is written before every line, in the file and on the echo stream.
const Prefix = "[api] "

// Sink writes backend output lines. It is owned by a single goroutine (the
// output pump) and is not safe for concurrent use.
type Sink struct {
	path   string
	file   *os.File
	w      *bufio.Writer
	echo   io.Writer
	log    *slog.Logger
	failed bool // a write to file has failed; further failures are logged at debug
}

// Open opens path for appending, creating it and its parent directory when
// missing. It never fails: when the file cannot be opened the returned sink
// only echoes, and Degraded reports true. A nil echo discards the echo
// stream; a nil logger uses slog.Default().
func Open(path string, echo io.Writer, logger *slog.Logger) *Sink {
	if logger == nil {
		logger = slog.Default()
	}
	if echo == nil {
		echo = io.Discard
	}
	s := &Sink{path: path, echo: echo, log: logger}

	f, err := openAppend(path)
	if err != nil {
		logger.Warn("backend log file unavailable; backend output goes to stderr only",
			"path", path, "error", err)
		return s
	}
	s.file = f
	s.w = bufio.NewWriter(f)
	return s
}

func openAppend(path string) (*os.File, error) {
	if err := fileutil.EnsureDirForFile(path); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) //nolint:gosec // G304: path is inside the data dir
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}

// Path returns the log file path, whether or not it could be opened.
func (s *Sink) Path() string {
	return s.path
}

// Degraded reports whether the sink is running without a log file.
func (s *Sink) Degraded() bool {
	return s.file == nil
}

// WriteLine echoes line unchanged and appends its stripped form to the
// file, then flushes. line must not contain the trailing newline.
//
// Stripping removes every terminal control sequence (SGR colors, cursor and
// erase CSI, OSC titles) and drops bytes that are not valid UTF-8, so the
// file stays plain UTF-8 text.
func (s *Sink) WriteLine(line string) {
	_, _ = io.WriteString(s.echo, Prefix+line+"\n")

	if s.w == nil {
		return
	}
	_, err := s.w.WriteString(Prefix + ansi.Strip(line) + "\n")
	if err == nil {
		err = s.w.Flush()
	}
	if err != nil {
		s.writeFailed(err)
	}
}

func (s *Sink) writeFailed(err error) {
	// A bufio.Writer that saw an error keeps returning it; start over so a
	// transient failure does not silence the file for the rest of the run.
	s.w.Reset(s.file)
	if s.failed {
		s.log.Debug("write backend log", "path", s.path, "error", err)
		return
	}
	s.failed = true
	s.log.Warn("write backend log", "path", s.path, "error", err)
}

// Close flushes and closes the file. It is safe to call more than once.
func (s *Sink) Close() error {
	if s.file == nil {
		return nil
	}
	flushErr := s.w.Flush()
	closeErr := s.file.Close()
	s.file = nil
	s.w = nil
	if flushErr != nil {
		return fmt.Errorf("flush backend log: %w", flushErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close backend log: %w", closeErr)
	}
	return nil
}
