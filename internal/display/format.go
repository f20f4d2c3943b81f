package display

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// FormatBytes returns a human-readable binary size ("2.1 GiB").
func FormatBytes(bytes int64) string {
	if bytes < 0 {
		return "-" + humanize.IBytes(uint64(-bytes))
	}
	return humanize.IBytes(uint64(bytes))
}

// FormatProportion renders a stream-size fraction in the per-mille form the
// subtitle rules are written in ("0.052‰" reads poorly in ASCII logs, so
// the unit is spelled out).
func FormatProportion(fraction float64) string {
	return fmt.Sprintf("%.3f per-mille", fraction*1000)
}

// YesNo renders a boolean for table cells.
func YesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
