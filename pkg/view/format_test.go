package view

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func null() decimal.NullDecimal {
	return decimal.NullDecimal{}
}

func val(s string) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: decimal.RequireFromString(s), Valid: true}
}

func TestNum(t *testing.T) {
	cases := []struct {
		in     decimal.NullDecimal
		places int32
		want   string
	}{
		{null(), 6, ""},
		{val("0"), 6, "0"},
		{val("0.5"), 6, "0.5"},
		{val("0.500000"), 6, "0.5"},
		{val("43000.123456789"), 8, "43000.12345679"},
		{val("-12.300"), 6, "-12.3"},
		{val("100"), 6, "100"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Num(tc.in, tc.places), "Num(%v, %d)", tc.in, tc.places)
	}
}

func TestFixedKeepsTrailingZeros(t *testing.T) {
	assert.Equal(t, "0.0100", Fixed(decimal.RequireFromString("0.01"), 4))
	assert.Equal(t, "-0.0025", Fixed(decimal.RequireFromString("-0.0025"), 4))
}

func TestCountdownFormatting(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		remaining time.Duration
		want      string
	}{
		{0, "00:00:00"},
		{time.Second, "00:00:01"},
		{59 * time.Second, "00:00:59"},
		{time.Minute, "00:01:00"},
		{time.Hour + 2*time.Minute + 3*time.Second, "01:02:03"},
		{23*time.Hour + 59*time.Minute + 59*time.Second, "23:59:59"},
	}
	for _, tc := range cases {
		deadline := now.Add(tc.remaining)
		assert.Equal(t, tc.want, Countdown(&deadline, now), "remaining %v", tc.remaining)
	}
}

func TestCountdownClampsPastDeadlines(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	past := now.Add(-3 * time.Hour)
	assert.Equal(t, "00:00:00", Countdown(&past, now))
}

func TestCountdownPlaceholder(t *testing.T) {
	assert.Equal(t, "-", Countdown(nil, time.Now()))
}
