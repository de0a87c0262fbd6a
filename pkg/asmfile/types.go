// Package asmfile holds the in-memory model shared by the assembly
// export parsers: parts keyed by identifier and board side, with the
// placement and pad data points collected for each part.
package asmfile

import (
	"time"
)

// Side is the board side code as it appears in the source files.
// The exports use single uppercase letters; no case normalization is
// performed anywhere, so callers must pass codes verbatim.
type Side string

const (
	SideTop    Side = "T"
	SideBottom Side = "B"
)

// Unit conversion factors applied to coordinates at emission time.
const (
	FactorMetric = 1.0
	FactorInch   = 25.4
)

// PlacementPoint is one component position from the placement ("BOM")
// export: board coordinates, rotation, and the descriptive tokens kept
// for output generation.
type PlacementPoint struct {
	X        float64
	Y        float64
	Rotation float64
	Grid     string
	Shape    string
	Device   string
	Outline  string
}

// PadPoint is one per-pin pad position from the PINS export.
type PadPoint struct {
	Pin   string
	X     float64
	Y     float64
	Layer int
	Net   string
}

// PartRecord collects every data point seen for one (identifier, side)
// pair. Placements are deduplicated by their (x, y, rotation) triple;
// pads keep arrival order and are never deduplicated.
type PartRecord struct {
	ID   string
	Side Side

	Placements []PlacementPoint
	Pads       []PadPoint

	seen map[string]struct{} // placement dedup keys
}

// ParseResult is the outcome of parsing one export file.
type ParseResult struct {
	Parts   *PartSet
	OK      bool
	Factor  float64
	Message string
	Elapsed time.Duration
}
