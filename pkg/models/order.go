package models

import (
	"github.com/shopspring/decimal"
)

// OrderAction is the button the user pressed, before any exchange-specific
// side mapping is applied.
type OrderAction string

const (
	ActionBuy        OrderAction = "BUY"
	ActionSell       OrderAction = "SELL"
	ActionCloseLong  OrderAction = "CLOSE_LONG"
	ActionCloseShort OrderAction = "CLOSE_SHORT"
)

// OrderRequest is the body posted to /api/{exchange}/order. Side carries the
// already-mapped exchange parameter, not the raw action.
type OrderRequest struct {
	Symbol     string              `json:"symbol"`
	Side       string              `json:"side"`
	USDAmount  decimal.Decimal     `json:"usdAmount"`
	Price      decimal.NullDecimal `json:"price"`
	Leverage   int                 `json:"leverage,omitempty"`
	MarginMode string              `json:"marginMode,omitempty"`
	StopLoss   decimal.NullDecimal `json:"stopLoss"`
}

// OrderResult is the backend's response, surfaced to the user verbatim.
type OrderResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}
