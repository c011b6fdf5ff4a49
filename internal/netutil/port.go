package netutil

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/shabtzak/shell/internal/sentinel"
)

// ErrInvalidPort is returned by ParsePort for text that is not a decimal
// number in the uint16 range.
const ErrInvalidPort = sentinel.Error("invalid port")

// dialTimeout bounds a single readiness dial. Connection refused comes back
// immediately on loopback, so this only matters for a wedged listener.
const dialTimeout = time.Second

// ParsePort parses s as an unsigned 16-bit port. Signs, whitespace and
// anything outside 0-65535 are rejected.
func ParsePort(s string) (uint16, error) {
	n, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("%w %q", ErrInvalidPort, s)
	}
	return uint16(n), nil
}

// LocalURL returns the URL the webview uses to reach a backend on port.
// It names localhost rather than 127.0.0.1 so the page origin matches what
// the frontend was built against.
func LocalURL(port uint16) string {
	return "http://localhost:" + strconv.FormatUint(uint64(port), 10)
}

// HostPort joins host and port for dialing.
func HostPort(host string, port uint16) string {
	return net.JoinHostPort(host, strconv.FormatUint(uint64(port), 10))
}

// Dial reports whether a TCP connection to addr can be opened. The
// connection is closed immediately.
func Dial(ctx context.Context, addr string) error {
	dialer := &net.Dialer{Timeout: dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	_ = conn.Close()
	return nil
}
