package view

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dhkim/gapboard/pkg/models"
	"github.com/dhkim/gapboard/pkg/poller"
	"github.com/dhkim/gapboard/pkg/stream"
)

const noPositionsNotice = "no open positions"

func sortMarker(state poller.ViewState, c poller.Column) string {
	if state.SortColumn != c {
		return ""
	}
	switch state.SortDirection {
	case poller.DirectionAsc:
		return " ▲"
	case poller.DirectionDesc:
		return " ▼"
	}
	return ""
}

// WriteFundingTable renders the funding comparison with the active sort
// marker on its column and a live countdown per row.
func WriteFundingTable(w io.Writer, model poller.RenderModel, now time.Time) {
	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "SYMBOL%s\tBINANCE%%%s\tBITGET%%%s\tGAP%%%s\tNEXT FUNDING\n",
		sortMarker(model.State, poller.ColumnSymbol),
		sortMarker(model.State, poller.ColumnBinanceRate),
		sortMarker(model.State, poller.ColumnBitgetRate),
		sortMarker(model.State, poller.ColumnGap),
	)
	for _, row := range model.Rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			row.Symbol,
			Fixed(row.BinanceRatePct, models.DisplayPlaces),
			Fixed(row.BitgetRatePct, models.DisplayPlaces),
			Fixed(row.GapPct(), models.DisplayPlaces),
			Countdown(row.NextFundingAt, now),
		)
	}
	tw.Flush()
}

// WriteBitgetTable renders the bitget-only funding snapshot.
func WriteBitgetTable(w io.Writer, rows []models.BitgetRow, now time.Time) {
	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SYMBOL\tRATE%\tNEXT FUNDING")
	for _, row := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\n",
			row.Symbol,
			Fixed(row.RatePct, models.DisplayPlaces),
			Countdown(row.NextFundingAt, now),
		)
	}
	tw.Flush()
}

// WritePositionsTable renders the latest position snapshot, or a single
// placeholder line when there is nothing open.
func WritePositionsTable(w io.Writer, snap stream.Snapshot) {
	if snap.Empty() {
		notice := snap.Notice
		if notice == "" {
			notice = noPositionsNotice
		}
		fmt.Fprintf(w, "  %s\n", notice)
		return
	}

	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "EXCHANGE\tSYMBOL\tSIDE\tSIZE\tUPL\tENTRY\tMARK\tLIQ\tMARGIN")
	for _, p := range snap.Records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			p.Exchange,
			p.Symbol,
			p.Side,
			Trimmed(p.Size, 6),
			Num(p.UPL, 6),
			Num(p.EntryPrice, 8),
			Num(p.MarkPrice, 8),
			Num(p.LiqPrice, 8),
			Num(p.Margin, 6),
		)
	}
	tw.Flush()
}
