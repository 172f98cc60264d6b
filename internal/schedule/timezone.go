package schedule

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"
)

// wall-clock layouts accepted when the caller sends display-local times
var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseInstant parses an RFC3339 timestamp as-is, or a wall-clock time in
// loc, and returns it in UTC.
func ParseInstant(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q: expected RFC3339 or YYYY-MM-DDTHH:MM", value)
}

// ValidTimezone reports whether tz names a loadable IANA zone.
func ValidTimezone(tz string) bool {
	if tz == "" {
		return false
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}
