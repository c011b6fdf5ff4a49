package announce

import (
	"encoding/json"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/shabtzak/shell/internal/netutil"
)

const (
	// BannerMarker must appear in a text-form announcement.
	BannerMarker = "Uvicorn running on"

	// BannerURLPrefix precedes the port in a text-form announcement.
	BannerURLPrefix = "http://127.0.0.1:"

	// ListeningEvent is the event name of a structured announcement.
	ListeningEvent = "listening"
)

// Form identifies which announcement syntax matched.
type Form int

const (
	// FormNone means the line is not an announcement.
	FormNone Form = iota
	// FormBanner is uvicorn's "Uvicorn running on" startup line.
	FormBanner
	// FormJSON is the structured {"event":"listening"} line.
	FormJSON
)

// String returns a short name for logging.
func (f Form) String() string {
	switch f {
	case FormBanner:
		return "banner"
	case FormJSON:
		return "json"
	default:
		return "none"
	}
}

// Match is the result of parsing one line.
type Match struct {
	Port uint16
	Form Form
}

// listening is the structured announcement. Port is a pointer so a missing
// field is distinguishable from port 0; the uint16 type makes encoding/json
// reject out-of-range values.
type listening struct {
	Event string  `json:"event"`
	Port  *uint16 `json:"port"`
}

// Parse reports the port announced by line, if any. Escape sequences are
// removed before matching, so a colored line and its plain rendering always
// give the same answer. A port that does not parse as uint16 makes the line
// a non-announcement; no error is reported.
func Parse(line string) (Match, bool) {
	clean := ansi.Strip(line)

	if port, ok := parseJSON(clean); ok {
		return Match{Port: port, Form: FormJSON}, true
	}
	if port, ok := parseBanner(clean); ok {
		return Match{Port: port, Form: FormBanner}, true
	}
	return Match{}, false
}

func parseJSON(line string) (uint16, bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "{") {
		return 0, false
	}
	var msg listening
	if err := json.Unmarshal([]byte(trimmed), &msg); err != nil {
		return 0, false
	}
	if msg.Event != ListeningEvent || msg.Port == nil {
		return 0, false
	}
	return *msg.Port, true
}

// parseBanner takes the token between the first URL prefix and the next
// whitespace as the port.
func parseBanner(line string) (uint16, bool) {
	if !strings.Contains(line, BannerMarker) {
		return 0, false
	}
	_, rest, found := strings.Cut(line, BannerURLPrefix)
	if !found {
		return 0, false
	}
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return 0, false
	}
	port, err := netutil.ParsePort(fields[0])
	if err != nil {
		return 0, false
	}
	return port, true
}
