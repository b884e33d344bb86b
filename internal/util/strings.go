// Package util provides shared formatting helpers for CLI output.
package util

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// TruncateANSI truncates a string to maxWidth visual columns, adding "..." if truncated.
// This function properly handles ANSI escape codes and wide characters, making it
// suitable for terminal output with styling.
func TruncateANSI(s string, maxWidth int) string {
	if maxWidth <= 3 {
		return "..."
	}
	if lipgloss.Width(s) <= maxWidth {
		return s
	}
	// ansi.Truncate includes the tail in the final width calculation
	return ansi.Truncate(s, maxWidth, "...")
}

// TruncateLeft keeps the last maxWidth visual columns of s, prefixing "..."
// if anything was cut. Paths stay recognisable by their file name.
func TruncateLeft(s string, maxWidth int) string {
	if maxWidth <= 3 {
		return "..."
	}
	w := ansi.StringWidth(s)
	if w <= maxWidth {
		return s
	}
	return ansi.TruncateLeft(s, w-maxWidth+3, "...")
}

// FormatCount renders n with a k/M suffix once it passes a thousand.
func FormatCount(n int64) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fk", float64(n)/1_000)
	default:
		return fmt.Sprintf("%d", n)
	}
}

// FormatRate renders a per-second rate using FormatCount.
func FormatRate(perSecond float64) string {
	return FormatCount(int64(perSecond)) + "/s"
}

// FormatDuration rounds d for display: milliseconds below a second,
// otherwise hundredths of a second.
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(10 * time.Millisecond).String()
}
