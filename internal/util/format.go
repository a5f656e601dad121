package util

import (
	"fmt"
	"time"
)

// FormatNumber formats an int64 with K/M suffix for readability.
// Examples: 500 -> "500", 1500 -> "1.5K", 1500000 -> "1.5M"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	if n < 1000000 {
		return fmt.Sprintf("%.1fK", float64(n)/1000)
	}
	return fmt.Sprintf("%.1fM", float64(n)/1000000)
}

// FormatDurationMs renders a millisecond duration at minute precision,
// or seconds when under a minute. Examples: 45000 -> "45s", 10800000 -> "3h0m".
func FormatDurationMs(ms int64) string {
	if ms <= 0 {
		return "-"
	}
	d := time.Duration(ms) * time.Millisecond
	if d < time.Minute {
		return d.Round(time.Second).String()
	}
	d = d.Round(time.Minute)
	h := int64(d / time.Hour)
	m := int64((d % time.Hour) / time.Minute)
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	if h >= 48 {
		return fmt.Sprintf("%dd%dh", h/24, h%24)
	}
	return fmt.Sprintf("%dh%dm", h, m)
}

// FormatDateHuman formats a YYYY-MM-DD day as "Jan 2".
// Returns the original string if parsing fails.
func FormatDateHuman(day string) string {
	t, err := time.Parse(time.DateOnly, day)
	if err != nil {
		return day
	}
	return t.Format("Jan 2")
}
