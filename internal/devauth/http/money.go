package http

import (
	"fmt"
	"math"
)

// Amounts travel as major units (naira) and are kept as minor units (kobo).

func toMinor(major float64) int64 { return int64(math.Round(major * 100)) }

func toMajor(minor int64) float64 { return float64(minor) / 100 }

// formatMinor renders a non-negative minor-unit amount as a decimal string.
func formatMinor(minor int64) string {
	return fmt.Sprintf("%d.%02d", minor/100, minor%100)
}
