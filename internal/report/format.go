package report

import "fmt"

// FormatChangePercentage renders a period-over-period delta with one
// decimal place and an explicit plus sign for non-negative values,
// e.g. "+12.5%" or "-3.0%".
func FormatChangePercentage(pct float64) string {
	return fmt.Sprintf("%+.1f%%", pct)
}
