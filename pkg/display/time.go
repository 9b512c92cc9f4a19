// Package display holds small formatting helpers shared by the CLI and GUI.
package display

import (
	"strings"
	"time"
)

const shortLayout = "Jan 02 15:04"

// ShortTime renders a stored timestamp as "Oct 19 09:30". Values that do
// not parse are returned unchanged.
func ShortTime(raw string) string {
	if raw == "" {
		return ""
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.Format(shortLayout)
	}
	s, _, _ := strings.Cut(raw, ".")
	if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
		return t.Format(shortLayout)
	}
	return raw
}

// Time is ShortTime for an already parsed value. The zero time renders empty.
func Time(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(shortLayout)
}

// LastCapture is the confirmation line shown after capturing text.
// Blank input yields "".
func LastCapture(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	return "Last capture: " + text
}
