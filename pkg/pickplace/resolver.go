// Package pickplace turns the aggregated part model into the CSV
// artifacts consumed by pick-and-place and test equipment: per-side
// placement files and, when PINS data is available, per-side pad files
// built from the BOM x PINS cross-reference.
package pickplace

import (
	"github.com/pcbflow/thtgen/pkg/asmfile"
)

// PadPair joins one placement of a BOM part with one pad of the
// matching PINS part. The placement side carries the device name used
// for the program identifier; the pad side carries the coordinates.
type PadPair struct {
	Placement asmfile.PlacementPoint
	Pad       asmfile.PadPoint
}

// Resolver joins BOM parts against an independently parsed PINS part
// set by identifier and side. A nil PINS set resolves nothing.
type Resolver struct {
	pins *asmfile.PartSet
}

// NewResolver creates a resolver over the given PINS part set, which
// may be nil when no PINS data was supplied.
func NewResolver(pins *asmfile.PartSet) *Resolver {
	return &Resolver{pins: pins}
}

// Resolve pairs every placement of the BOM part with every pad of the
// PINS part sharing its identifier and side. No match means no pairs;
// that is expected, not an error.
func (r *Resolver) Resolve(part *asmfile.PartRecord) []PadPair {
	if r.pins == nil {
		return nil
	}
	match, ok := r.pins.Lookup(part.ID, part.Side)
	if !ok || len(match.Pads) == 0 {
		return nil
	}

	pairs := make([]PadPair, 0, len(part.Placements)*len(match.Pads))
	for _, pl := range part.Placements {
		for _, pad := range match.Pads {
			pairs = append(pairs, PadPair{Placement: pl, Pad: pad})
		}
	}
	return pairs
}
