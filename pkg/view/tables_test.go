package view

import (
	"strings"
	"testing"
	"time"

	"github.com/dhkim/gapboard/pkg/models"
	"github.com/dhkim/gapboard/pkg/poller"
	"github.com/dhkim/gapboard/pkg/stream"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestWriteFundingTable(t *testing.T) {
	next := time.Date(2026, 8, 31, 16, 0, 0, 0, time.UTC)
	now := time.Date(2026, 8, 31, 14, 30, 15, 0, time.UTC)

	model := poller.RenderModel{
		Rows: []models.FundingRow{
			{
				Symbol:         "BTCUSDT",
				BinanceRatePct: decimal.RequireFromString("0.01"),
				BitgetRatePct:  decimal.RequireFromString("0.03"),
				NextFundingAt:  &next,
			},
			{
				Symbol:         "ETHUSDT",
				BinanceRatePct: decimal.RequireFromString("-0.0025"),
				BitgetRatePct:  decimal.RequireFromString("0.0075"),
			},
		},
		State: poller.ViewState{SortColumn: poller.ColumnGap, SortDirection: poller.DirectionAsc},
	}

	var sb strings.Builder
	WriteFundingTable(&sb, model, now)
	out := sb.String()

	assert.Contains(t, out, "GAP% ▲", "active column should carry the asc marker")
	assert.NotContains(t, out, "SYMBOL ▲")
	assert.Contains(t, out, "0.0200", "gap for (0.01, 0.03)")
	assert.Contains(t, out, "01:29:45", "countdown from 14:30:15 to 16:00:00")
	assert.Contains(t, out, "0.0100")
	// Row without a funding time renders the placeholder.
	assert.Contains(t, out, "-")
}

func TestWritePositionsTableEmpty(t *testing.T) {
	var sb strings.Builder
	WritePositionsTable(&sb, stream.Snapshot{Kind: stream.SnapshotEmpty, Notice: "nothing open"})
	assert.Contains(t, sb.String(), "nothing open")

	sb.Reset()
	WritePositionsTable(&sb, stream.Snapshot{Kind: stream.SnapshotEmpty})
	assert.Contains(t, sb.String(), "no open positions")
}

func TestWritePositionsTableRows(t *testing.T) {
	snap := stream.Snapshot{
		Kind: stream.SnapshotMany,
		Records: []models.PositionRecord{
			{
				Exchange: models.ExchangeBinance,
				Symbol:   "BTCUSDT",
				Side:     models.SideLong,
				Size:     decimal.RequireFromString("0.500000"),
				UPL:      decimal.NullDecimal{Decimal: decimal.RequireFromString("49.75"), Valid: true},
			},
			{
				Exchange: models.ExchangeBitget,
				Symbol:   "ETHUSDT",
				Side:     models.SideUnknown,
				Size:     decimal.RequireFromString("2"),
			},
		},
	}

	var sb strings.Builder
	WritePositionsTable(&sb, snap)
	out := sb.String()

	assert.Contains(t, out, "BTCUSDT")
	assert.Contains(t, out, "LONG")
	assert.Contains(t, out, "0.5")
	assert.Contains(t, out, "49.75")
	// Unknown side and absent optionals render blank, not zero.
	assert.NotContains(t, out, "FLAT")
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, 3, "header plus two rows")
}
