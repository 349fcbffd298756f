package poller

// Column identifies a sortable funding-table column.
type Column string

const (
	ColumnNone        Column = ""
	ColumnSymbol      Column = "symbol"
	ColumnBinanceRate Column = "binance_rate"
	ColumnBitgetRate  Column = "bitget_rate"
	ColumnGap         Column = "gap"
)

// ParseColumn validates a user-supplied column name.
func ParseColumn(s string) (Column, bool) {
	switch Column(s) {
	case ColumnSymbol, ColumnBinanceRate, ColumnBitgetRate, ColumnGap:
		return Column(s), true
	}
	return ColumnNone, false
}

// Direction is the sort direction for the active column.
type Direction string

const (
	DirectionNone Direction = "none"
	DirectionAsc  Direction = "asc"
	DirectionDesc Direction = "desc"
)

// ViewState is the user's sort choice. Only one column is active at a time;
// direction none means the table shows the first-seen original order.
type ViewState struct {
	SortColumn    Column
	SortDirection Direction
}

// Toggle advances the sort state for a header click: the same column cycles
// asc, desc, none; a different column always starts over at asc.
func (v *ViewState) Toggle(c Column) {
	if v.SortColumn != c {
		v.SortColumn = c
		v.SortDirection = DirectionAsc
		return
	}
	switch v.SortDirection {
	case DirectionAsc:
		v.SortDirection = DirectionDesc
	case DirectionDesc:
		v.SortDirection = DirectionNone
	default:
		v.SortDirection = DirectionAsc
	}
}

// Active reports whether an explicit sort order is applied.
func (v ViewState) Active() bool {
	return v.SortColumn != ColumnNone && v.SortDirection != DirectionNone
}
