package wireclient

import (
	"fmt"
	"time"
)

// ParseTime converts a wire ISO-8601 timestamp to Unix-ms, the local
// representation every component outside the wire boundary uses.
func ParseTime(s string) (int64, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return 0, fmt.Errorf("wireclient: parsing wire timestamp %q: %w", s, err)
	}
	return t.UnixMilli(), nil
}

// FormatTime converts a local Unix-ms timestamp to the wire's ISO-8601 UTC
// representation.
func FormatTime(unixMilli int64) string {
	return time.UnixMilli(unixMilli).UTC().Format(time.RFC3339)
}
