package normalize

import (
	"strings"
	"time"
)

// TimestampLayout is the display format of first/last-seen columns.
const TimestampLayout = "2006-01-02 15:04:05 UTC"

// isoLayouts are tried in order. Layouts without an offset are read as UTC.
var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// FormatTimestamp renders an ISO-8601 timestamp as TimestampLayout in UTC.
// Empty input gives "Unknown"; unparsable input is returned unchanged.
func FormatTimestamp(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Unknown
	}
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC().Format(TimestampLayout)
		}
	}
	return raw
}
