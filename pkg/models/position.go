package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

type Exchange string

const (
	ExchangeBinance Exchange = "binance"
	ExchangeBitget  Exchange = "bitget"
)

type Side string

const (
	SideLong    Side = "LONG"
	SideShort   Side = "SHORT"
	SideUnknown Side = ""
)

// ParseSide maps whatever the feed sends ("long", "LONG", "FLAT", garbage)
// onto a known side. Anything unrecognized is SideUnknown so rendering can
// show a blank cell instead of failing.
func ParseSide(s string) Side {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "LONG":
		return SideLong
	case "SHORT":
		return SideShort
	default:
		return SideUnknown
	}
}

// PositionRecord is one open position on one exchange. Records carry no
// identity across updates: every inbound snapshot replaces the whole set.
type PositionRecord struct {
	Exchange   Exchange            `json:"exchange"`
	Symbol     string              `json:"symbol"`
	Side       Side                `json:"side"`
	Size       decimal.Decimal     `json:"size"`
	EntryPrice decimal.NullDecimal `json:"entryPrice"`
	MarkPrice  decimal.NullDecimal `json:"markPrice"`
	LiqPrice   decimal.NullDecimal `json:"liqPrice"`
	Margin     decimal.NullDecimal `json:"margin"`
	UPL        decimal.NullDecimal `json:"upl"`
}
