package utils

import (
	"strings"
	"time"
)

const (
	layoutDate     = "2006-01-02"
	layoutDateTime = "2006-01-02 15:04:05"
)

// ParseDate parses YYYY-MM-DD in the given timezone.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation(layoutDate, strings.TrimSpace(s), loc)
}

// FormatDateTime formats time to "YYYY-MM-DD HH:MM:SS".
func FormatDateTime(t time.Time) string {
	return t.Format(layoutDateTime)
}

// ShortClock trims a MySQL TIME value like "21:30:00" to "21:30". Anything
// else is returned trimmed and untouched.
func ShortClock(s string) string {
	s = strings.TrimSpace(s)
	if len(s) == 8 && s[2] == ':' && s[5] == ':' && strings.HasSuffix(s, ":00") {
		return s[:5]
	}
	return s
}
