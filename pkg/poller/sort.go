package poller

import (
	"sort"

	"github.com/dhkim/gapboard/pkg/models"
	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
)

// sortRows orders a copy of rows for display. With no active sort the rows
// follow originalIndex, the first-seen ordering captured on the initial
// fetch. Sorting is stable so equal keys keep their relative order.
func sortRows(rows []models.FundingRow, state ViewState, originalIndex map[string]int, coll *collate.Collator) []models.FundingRow {
	out := make([]models.FundingRow, len(rows))
	copy(out, rows)

	if !state.Active() {
		sort.SliceStable(out, func(i, j int) bool {
			return originalIndex[out[i].Symbol] < originalIndex[out[j].Symbol]
		})
		return out
	}

	asc := state.SortDirection == DirectionAsc
	sort.SliceStable(out, func(i, j int) bool {
		var cmp int
		if state.SortColumn == ColumnSymbol {
			cmp = coll.CompareString(out[i].Symbol, out[j].Symbol)
		} else {
			cmp = columnValue(out[i], state.SortColumn).Cmp(columnValue(out[j], state.SortColumn))
		}
		if asc {
			return cmp < 0
		}
		return cmp > 0
	})
	return out
}

func columnValue(r models.FundingRow, c Column) decimal.Decimal {
	switch c {
	case ColumnBinanceRate:
		return r.BinanceRatePct
	case ColumnBitgetRate:
		return r.BitgetRatePct
	default:
		return r.GapPct()
	}
}
