package domain

import (
	"fmt"
	"time"
)

// FormatDuration renders a millisecond duration as M:SS.
func FormatDuration(durationMS int) string {
	if durationMS <= 0 {
		return "0:00"
	}
	seconds := durationMS / 1000
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// FormatReleaseDate renders an album release date at the source's precision.
// Spotify reports "2006-01-02", "2006-01" or "2006"; anything else is
// returned verbatim.
func FormatReleaseDate(raw string) string {
	if raw == "" {
		return ""
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t.Format("2 Jan 2006")
	}
	if t, err := time.Parse("2006-01", raw); err == nil {
		return t.Format("Jan 2006")
	}
	if _, err := time.Parse("2006", raw); err == nil {
		return raw
	}
	return raw
}

// ReleaseYear extracts the year from a release date of any precision.
// Returns 0 when the date is missing or unparseable.
func ReleaseYear(raw string) int {
	if len(raw) < 4 {
		return 0
	}
	var year int
	if _, err := fmt.Sscanf(raw[:4], "%d", &year); err != nil {
		return 0
	}
	return year
}
