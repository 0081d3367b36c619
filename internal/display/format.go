package display

import (
	"fmt"
	"math"
	"time"

	"github.com/dustin/go-humanize"
)

// FormatBytes returns an IEC size such as "512 B", "1.5 KiB" or "700 MiB".
// Negative sizes (unknown) render as "unknown".
func FormatBytes(bytes int64) string {
	if bytes < 0 {
		return "unknown"
	}
	return humanize.IBytes(uint64(bytes))
}

// FormatTimestamp renders a position in seconds as H:MM:SS, or MM:SS when
// under an hour. Fractions are truncated; negative and NaN inputs clamp to 0.
func FormatTimestamp(seconds float64) string {
	if math.IsNaN(seconds) || seconds < 0 {
		seconds = 0
	}
	total := int64(seconds)
	h, m, s := total/3600, (total/60)%60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// FormatElapsed renders a wall-clock duration for summaries: "850ms",
// "42.3s" or "3m07s".
func FormatElapsed(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		d = d.Round(time.Second)
		return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
	}
}
