package models

import (
	"fmt"
	"time"
)

// TimestampFormat is the fixed, sortable textual format used in export documents
const TimestampFormat = "20060102150405"

// FormatTimestamp renders t in TimestampFormat (UTC)
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampFormat)
}

// ParseTimestamp accepts TimestampFormat and RFC 3339 input
func ParseTimestamp(s string) (time.Time, error) {
	if t, err := time.ParseInLocation(TimestampFormat, s, time.UTC); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}
