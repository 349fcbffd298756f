package stream

import (
	"github.com/dhkim/gapboard/pkg/models"
)

// SnapshotKind tags the normalized shape of an inbound feed message.
type SnapshotKind int

const (
	// SnapshotEmpty is a "no open positions" notice carrying no records.
	SnapshotEmpty SnapshotKind = iota
	// SnapshotSingle is a bare position object coerced to a one-element set.
	SnapshotSingle
	// SnapshotMany is an array of position objects.
	SnapshotMany
)

// Snapshot is the normalized form of one feed message. Rendering consumes
// Records and Notice only; the shape branching happens exactly once, in
// Normalize.
type Snapshot struct {
	Kind    SnapshotKind
	Notice  string
	Records []models.PositionRecord
}

// Empty reports whether the snapshot carries no positions.
func (s Snapshot) Empty() bool {
	return s.Kind == SnapshotEmpty || len(s.Records) == 0
}
