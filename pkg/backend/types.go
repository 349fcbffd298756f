package backend

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FlexTime decodes the backend's ISO timestamps, which arrive with or
// without a timezone suffix, and tolerates null.
type FlexTime struct {
	Time  time.Time
	Valid bool
}

var flexLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
}

func (t *FlexTime) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" || s == "" {
		*t = FlexTime{}
		return nil
	}
	for _, layout := range flexLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			*t = FlexTime{Time: parsed, Valid: true}
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", s)
}

// Ptr returns the time as an optional, nil when absent.
func (t FlexTime) Ptr() *time.Time {
	if !t.Valid {
		return nil
	}
	tt := t.Time
	return &tt
}

// GapRow is one row of GET /api/gap. Rates are fractions of notional; the
// poller scales them to percentage units.
type GapRow struct {
	Symbol          string          `json:"symbol"`
	BinanceRate     decimal.Decimal `json:"binance_rate"`
	BitgetRate      decimal.Decimal `json:"bitget_rate"`
	NextFundingTime FlexTime        `json:"next_funding_time"`
}

// BitgetLatestRow is one row of GET /api/bitget/latest, rate as a fraction.
type BitgetLatestRow struct {
	Symbol          string          `json:"symbol"`
	FundingRate     decimal.Decimal `json:"funding_rate"`
	NextFundingTime FlexTime        `json:"next_funding_time"`
}
