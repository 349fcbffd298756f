package stream

import (
	"bytes"
	"encoding/json"

	"github.com/dhkim/gapboard/pkg/models"
	"github.com/shopspring/decimal"
)

// positionWire tolerates the feed's loose encoding: the exchange may arrive
// as "source" or "exchange", numeric fields may be numbers or quoted strings,
// and a pure status message only has "msg" set. "_test" marks heartbeats.
type positionWire struct {
	Source     string              `json:"source"`
	Exchange   string              `json:"exchange"`
	Symbol     string              `json:"symbol"`
	Side       string              `json:"side"`
	Size       decimal.NullDecimal `json:"size"`
	EntryPrice decimal.NullDecimal `json:"entryPrice"`
	MarkPrice  decimal.NullDecimal `json:"markPrice"`
	LiqPrice   decimal.NullDecimal `json:"liqPrice"`
	Margin     decimal.NullDecimal `json:"margin"`
	UPL        decimal.NullDecimal `json:"upl"`
	Msg        string              `json:"msg"`
	Test       json.RawMessage     `json:"_test"`
}

func (w positionWire) record() models.PositionRecord {
	rec := models.PositionRecord{
		Exchange:   models.Exchange(w.Exchange),
		Symbol:     w.Symbol,
		Side:       models.ParseSide(w.Side),
		EntryPrice: w.EntryPrice,
		MarkPrice:  w.MarkPrice,
		LiqPrice:   w.LiqPrice,
		Margin:     w.Margin,
		UPL:        w.UPL,
	}
	if rec.Exchange == "" {
		rec.Exchange = models.Exchange(w.Source)
	}
	// Size is required and non-negative; the binance leg reports shorts as a
	// negative position amount.
	if w.Size.Valid {
		rec.Size = w.Size.Decimal.Abs()
	}
	return rec
}

// Normalize parses one raw feed message into a Snapshot. ok is false when the
// message is a heartbeat to be ignored. A non-nil error means the payload was
// malformed; callers drop the message and keep the connection open.
func Normalize(raw []byte) (snap Snapshot, ok bool, err error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var wires []positionWire
		if err := json.Unmarshal(trimmed, &wires); err != nil {
			return Snapshot{}, false, err
		}
		return fromWires(wires, SnapshotMany), true, nil
	}

	var wire positionWire
	if err := json.Unmarshal(trimmed, &wire); err != nil {
		return Snapshot{}, false, err
	}
	if wire.Test != nil {
		return Snapshot{}, false, nil
	}
	if wire.Msg != "" {
		return Snapshot{Kind: SnapshotEmpty, Notice: wire.Msg}, true, nil
	}
	return fromWires([]positionWire{wire}, SnapshotSingle), true, nil
}

func fromWires(wires []positionWire, kind SnapshotKind) Snapshot {
	records := make([]models.PositionRecord, 0, len(wires))
	var notice string
	for _, w := range wires {
		if w.Msg != "" {
			// A one-element array carrying only a status message is the
			// feed's "no data" shape.
			notice = w.Msg
			continue
		}
		records = append(records, w.record())
	}
	if len(records) == 0 {
		return Snapshot{Kind: SnapshotEmpty, Notice: notice}
	}
	return Snapshot{Kind: kind, Records: records}
}
