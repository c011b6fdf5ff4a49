package pump

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/shabtzak/shell/internal/announce"
)

// LineWriter persists one line of backend output.
type LineWriter interface {
	WriteLine(line string)
}

// Config wires a pump.
type Config struct {
	// Sink receives every line. Required.
	Sink LineWriter

	// InitialPort is the port reported by Run when no announcement is seen.
	InitialPort uint16

	// OnPort is called for every announcement, including repeats of the
	// same port. Optional.
	OnPort func(m announce.Match)

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Run reads r until EOF and returns the last announced port, or
// cfg.InitialPort if none was announced. Reading from a closed pipe ends the
// run without error; any other read error is returned with the port seen so
// far. Lines of any length are accepted.
func Run(r io.Reader, cfg Config) (uint16, error) {
	if cfg.Sink == nil {
		return cfg.InitialPort, errors.New("pump: sink must not be nil")
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	port := cfg.InitialPort
	br := bufio.NewReader(r)
	lines := 0
	for {
		raw, err := br.ReadString('\n')
		if raw != "" {
			lines++
			line := strings.TrimRight(raw, "\r\n")
			cfg.Sink.WriteLine(line)
			if m, ok := announce.Parse(line); ok {
				if m.Port != port {
					log.Info("backend announced port", "port", m.Port, "previous", port, "form", m.Form)
				}
				port = m.Port
				if cfg.OnPort != nil {
					cfg.OnPort(m)
				}
			}
		}
		if err == nil {
			continue
		}
		if errors.Is(err, io.EOF) || errors.Is(err, fs.ErrClosed) {
			log.Debug("backend output closed", "lines", lines, "port", port)
			return port, nil
		}
		return port, fmt.Errorf("read backend output: %w", err)
	}
}
