package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Placeholder is rendered for values that are absent, such as a missing
// next-funding timestamp.
const Placeholder = "-"

// Num renders an optional quantity with at most places decimals, trimming
// trailing zeros. Absent values render as empty, never as zero.
func Num(d decimal.NullDecimal, places int32) string {
	if !d.Valid {
		return ""
	}
	return Trimmed(d.Decimal, places)
}

// Trimmed renders a required quantity with at most places decimals, without
// trailing zeros.
func Trimmed(d decimal.Decimal, places int32) string {
	s := d.StringFixed(places)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimRight(s, ".")
	}
	return s
}

// Fixed renders a required quantity at exactly places decimals, the way the
// funding columns are shown.
func Fixed(d decimal.Decimal, places int32) string {
	return d.StringFixed(places)
}

// Countdown formats the time remaining until deadline as zero-padded
// HH:MM:SS, clamped at zero once the deadline passes. A nil deadline renders
// the placeholder.
func Countdown(deadline *time.Time, now time.Time) string {
	if deadline == nil {
		return Placeholder
	}
	remaining := deadline.Sub(now)
	if remaining < 0 {
		remaining = 0
	}

	hours := int(remaining / time.Hour)
	minutes := int(remaining%time.Hour) / int(time.Minute)
	seconds := int(remaining%time.Minute) / int(time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}
