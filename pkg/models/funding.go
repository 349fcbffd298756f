package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DisplayPlaces is the precision funding rates are shown at. GapPct rounds to
// the same precision so a recomputed gap always matches what the table shows.
const DisplayPlaces = 4

// FundingRow compares one symbol's funding rate across the two exchanges.
// Rates are held in percentage units (already scaled from the wire fraction).
type FundingRow struct {
	Symbol         string          `json:"symbol"`
	BinanceRatePct decimal.Decimal `json:"binance_rate"`
	BitgetRatePct  decimal.Decimal `json:"bitget_rate"`
	NextFundingAt  *time.Time      `json:"next_funding_time,omitempty"`
}

// GapPct is the absolute funding-rate difference in percentage units. It is
// derived on demand, never stored, so it can never drift from its inputs.
func (r FundingRow) GapPct() decimal.Decimal {
	return r.BinanceRatePct.Sub(r.BitgetRatePct).Abs().Round(DisplayPlaces)
}

// BitgetRow is one symbol from the bitget-only funding endpoint.
type BitgetRow struct {
	Symbol        string          `json:"symbol"`
	RatePct       decimal.Decimal `json:"funding_rate"`
	NextFundingAt *time.Time      `json:"next_funding_time,omitempty"`
}
