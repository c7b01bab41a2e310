// Package timeformat holds pure date/time normalization helpers for the
// reservation board. Every function is best-effort: bad input yields the
// original value or an empty string, never a panic.
package timeformat

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultZone is the business civil-time zone the board operates in,
// regardless of client locale.
const DefaultZone = "Asia/Riyadh"

var datetimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// To24h normalizes a free-form time value to "HH:MM". Accepted inputs:
// already-24h ("9:30", "09:30", "09:30:00"), 12-hour clock ("3pm",
// "3:05 PM"), a bare hour ("7"), or an ISO datetime rendered on the local
// wall clock. Unparseable input is returned unchanged.
func To24h(value string) string {
	v := strings.TrimSpace(value)
	if v == "" {
		return value
	}

	if hhmm, ok := parseClock(v); ok {
		return hhmm
	}

	for _, layout := range datetimeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.Format("15:04")
		}
	}

	return value
}

// DateOnly extracts "YYYY-MM-DD" from a date or datetime value.
// Returns "" when no date can be recognized.
func DateOnly(value string) string {
	v := strings.TrimSpace(value)
	if v == "" {
		return ""
	}

	if t, err := time.Parse("2006-01-02", v); err == nil {
		return t.Format("2006-01-02")
	}
	for _, layout := range datetimeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.Format("2006-01-02")
		}
	}

	return ""
}

// HHMM is the strict sibling of To24h: "HH:MM" on success, "" on failure.
func HHMM(value string) string {
	normalized := To24h(value)
	if _, err := time.Parse("15:04", normalized); err != nil {
		return ""
	}
	return normalized
}

// HHMMInZone renders a datetime value as "HH:MM" in the given zone,
// defaulting to the business zone. Values that carry no date (plain clock
// times) are normalized as-is since they have no zone to convert from.
func HHMMInZone(value, tz string) string {
	if tz == "" {
		tz = DefaultZone
	}

	v := strings.TrimSpace(value)
	if hhmm, ok := parseClock(v); ok {
		return hhmm
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = time.Local
	}
	for _, layout := range datetimeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.In(loc).Format("15:04")
		}
	}

	return ""
}

// parseClock handles clock-only inputs: 24h with optional seconds, 12h
// with am/pm suffix, and bare hours.
func parseClock(v string) (string, bool) {
	lower := strings.ToLower(strings.TrimSpace(v))

	meridiem := ""
	for _, suffix := range []string{"am", "pm", "a.m.", "p.m."} {
		if strings.HasSuffix(lower, suffix) {
			meridiem = string(suffix[0])
			lower = strings.TrimSpace(strings.TrimSuffix(lower, suffix))
			break
		}
	}

	parts := strings.Split(lower, ":")
	if len(parts) > 3 {
		return "", false
	}

	hour, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return "", false
	}
	minute := 0
	if len(parts) >= 2 {
		minute, err = strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return "", false
		}
	}

	switch meridiem {
	case "p":
		if hour < 1 || hour > 12 {
			return "", false
		}
		if hour != 12 {
			hour += 12
		}
	case "a":
		if hour < 1 || hour > 12 {
			return "", false
		}
		if hour == 12 {
			hour = 0
		}
	}

	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return "", false
	}

	return fmt.Sprintf("%02d:%02d", hour, minute), true
}

// MinutesOfDay converts "HH:MM" to minutes since midnight; -1 on failure.
func MinutesOfDay(hhmm string) int {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return -1
	}
	return t.Hour()*60 + t.Minute()
}

// ClockFromMinutes is the inverse of MinutesOfDay, clamped to one day.
func ClockFromMinutes(mins int) string {
	if mins < 0 {
		mins = 0
	}
	mins %= 24 * 60
	return fmt.Sprintf("%02d:%02d", mins/60, mins%60)
}
