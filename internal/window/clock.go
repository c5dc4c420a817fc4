package window

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const minutesPerDay = 24 * 60

var clockRe = regexp.MustCompile(`^(\d{1,2})[:.](\d{2})(?::(\d{2}))?\s*([AaPp]\.?[Mm]\.?)?$`)

// ParseClock converts "14:05", "2:05 PM", "02:05pm" or "14:05:00" to minutes
// since midnight. The meridiem is detected by an AM/PM suffix.
func ParseClock(s string) (int, error) {
	s = strings.TrimSpace(s)
	m := clockRe.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if minute > 59 {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}

	if meridiem := strings.ToUpper(strings.ReplaceAll(m[4], ".", "")); meridiem != "" {
		if hour < 1 || hour > 12 {
			return 0, fmt.Errorf("invalid 12-hour time %q", s)
		}
		hour %= 12
		if meridiem == "PM" {
			hour += 12
		}
	} else if hour > 23 {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	return hour*60 + minute, nil
}

// MinuteOfDay returns t's minutes since local midnight.
func MinuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// FormatClock renders minutes since midnight as HH:MM, wrapping past a day.
func FormatClock(minutes int) string {
	minutes = ((minutes % minutesPerDay) + minutesPerDay) % minutesPerDay
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
