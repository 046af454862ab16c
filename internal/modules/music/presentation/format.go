package presentation

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseTimestamp parses "ss", "mm:ss", or "hh:mm:ss" into a duration.
func ParseTimestamp(s string) (time.Duration, error) {
	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("invalid timestamp %q", s)
	}

	var total time.Duration
	for _, part := range parts {
		value, err := strconv.Atoi(part)
		if err != nil || value < 0 {
			return 0, fmt.Errorf("invalid timestamp %q", s)
		}
		total = total*60 + time.Duration(value)*time.Second
	}
	return total, nil
}

// FormatDuration renders a duration as "mm:ss", or "hh:mm:ss" once it
// reaches an hour.
func FormatDuration(d time.Duration) string {
	total := int(d / time.Second)
	hours := total / 3600
	minutes := total % 3600 / 60
	seconds := total % 60

	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

// Truncate shortens s to at most max bytes, marking the cut with an ellipsis.
func Truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
