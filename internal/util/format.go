package util //nolint:revive // package name util hosts shared formatting helpers used across progress reporting

import (
	"fmt"
	"time"
)

// FormatDuration renders a duration for progress messages: "Xm Ys" below an
// hour, "Xh Ym" at or above. Negative durations render as zero.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)

	if d < time.Hour {
		m := int(d / time.Minute)
		s := int(d%time.Minute) / int(time.Second)
		return fmt.Sprintf("%dm %ds", m, s)
	}

	h := int(d / time.Hour)
	m := int(d%time.Hour) / int(time.Minute)
	return fmt.Sprintf("%dh %dm", h, m)
}
