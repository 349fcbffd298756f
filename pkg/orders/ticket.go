// Package orders turns a user's order form into the exchange-specific
// request the backend expects.
package orders

import (
	"fmt"
	"strings"

	"github.com/dhkim/gapboard/pkg/models"
	"github.com/shopspring/decimal"
)

// Form is the raw user input before validation and side mapping.
type Form struct {
	Symbol     string              `json:"symbol"`
	USDAmount  decimal.Decimal     `json:"usdAmount"`
	Price      decimal.NullDecimal `json:"price"`
	Leverage   int                 `json:"leverage"`
	MarginMode string              `json:"marginMode"`
	StopLoss   decimal.NullDecimal `json:"stopLoss"`
}

// MapSide converts a UI action into the side parameter each exchange
// expects. Binance takes the action verbatim; bitget uses its open/close
// vocabulary.
func MapSide(exchange models.Exchange, action models.OrderAction) (string, error) {
	switch action {
	case models.ActionBuy, models.ActionSell, models.ActionCloseLong, models.ActionCloseShort:
	default:
		return "", fmt.Errorf("unknown order action %q", action)
	}

	if exchange != models.ExchangeBitget {
		return string(action), nil
	}

	switch action {
	case models.ActionBuy:
		return "open_long", nil
	case models.ActionSell:
		return "open_short", nil
	case models.ActionCloseLong:
		return "close_long", nil
	default:
		return "close_short", nil
	}
}

// BuildTicket validates the form and produces the request body for
// POST /api/{exchange}/order.
func BuildTicket(exchange models.Exchange, action models.OrderAction, form Form) (models.OrderRequest, error) {
	symbol := strings.TrimSpace(form.Symbol)
	if symbol == "" {
		return models.OrderRequest{}, fmt.Errorf("symbol is required")
	}
	if !form.USDAmount.IsPositive() {
		return models.OrderRequest{}, fmt.Errorf("usdAmount must be greater than zero")
	}

	side, err := MapSide(exchange, action)
	if err != nil {
		return models.OrderRequest{}, err
	}

	return models.OrderRequest{
		Symbol:     symbol,
		Side:       side,
		USDAmount:  form.USDAmount,
		Price:      form.Price,
		Leverage:   form.Leverage,
		MarginMode: form.MarginMode,
		StopLoss:   form.StopLoss,
	}, nil
}
