package utils

import "fmt"

// FormatCount formats a count in short notation, e.g. 12k instead of 12000
func FormatCount(value int64) string {
	switch {
	case value >= 1_000_000:
		return fmt.Sprintf("%.2fM", float64(value)/1_000_000)
	case value >= 10_000:
		return fmt.Sprintf("%dk", value/1_000)
	case value >= 1_000:
		return fmt.Sprintf("%.1fk", float64(value)/1_000)
	default:
		return fmt.Sprintf("%d", value)
	}
}
