package asmfile

import (
	"fmt"
	"strconv"
)

type partKey struct {
	id   string
	side Side
}

// PartSet aggregates parsed records into per-part, per-side buckets.
// Lookup is by exact string equality on identifier and side code. The
// set preserves the order in which parts were first seen.
type PartSet struct {
	byKey map[partKey]*PartRecord
	byID  map[string]*PartRecord
	parts []*PartRecord
}

// NewPartSet creates an empty part set.
func NewPartSet() *PartSet {
	return &PartSet{
		byKey: make(map[partKey]*PartRecord),
		byID:  make(map[string]*PartRecord),
	}
}

// ensure returns the record for (id, side), creating it if this is the
// first reference to that pair.
func (s *PartSet) ensure(id string, side Side) *PartRecord {
	key := partKey{id, side}
	if rec, ok := s.byKey[key]; ok {
		return rec
	}
	rec := &PartRecord{
		ID:   id,
		Side: side,
		seen: make(map[string]struct{}),
	}
	s.byKey[key] = rec
	if _, ok := s.byID[id]; !ok {
		s.byID[id] = rec
	}
	s.parts = append(s.parts, rec)
	return rec
}

// Touch creates the (id, side) bucket without adding a data point. Used
// by the PINS parser when a part header is seen before any pad line.
func (s *PartSet) Touch(id string, side Side) *PartRecord {
	return s.ensure(id, side)
}

// AddPlacement inserts a placement point into the (id, side) bucket.
// Returns false if a point with the same (x, y, rotation) triple was
// already present for that bucket.
func (s *PartSet) AddPlacement(id string, side Side, p PlacementPoint) bool {
	rec := s.ensure(id, side)
	key := dedupKey(p.X, p.Y, p.Rotation)
	if _, dup := rec.seen[key]; dup {
		return false
	}
	rec.seen[key] = struct{}{}
	rec.Placements = append(rec.Placements, p)
	return true
}

// AddPad appends a pad point to the (id, side) bucket. Pads are kept in
// arrival order and never deduplicated.
func (s *PartSet) AddPad(id string, side Side, p PadPoint) {
	rec := s.ensure(id, side)
	rec.Pads = append(rec.Pads, p)
}

// Lookup returns the record for (id, side) if one exists.
func (s *PartSet) Lookup(id string, side Side) (*PartRecord, bool) {
	rec, ok := s.byKey[partKey{id, side}]
	return rec, ok
}

// LookupID returns the first-seen record for an identifier regardless
// of side. PINS table rows name a part without restating the side it
// was introduced under; this lets them attach to the existing record.
func (s *PartSet) LookupID(id string) (*PartRecord, bool) {
	rec, ok := s.byID[id]
	return rec, ok
}

// Parts returns all records in first-seen order.
func (s *PartSet) Parts() []*PartRecord {
	return s.parts
}

// Len returns the number of (id, side) buckets.
func (s *PartSet) Len() int {
	return len(s.parts)
}

// PointCount returns the total number of data points across all parts.
func (s *PartSet) PointCount() int {
	n := 0
	for _, rec := range s.parts {
		n += len(rec.Placements) + len(rec.Pads)
	}
	return n
}

// dedupKey builds the x|y|rotation key used to suppress duplicate
// placement records. FormatFloat keeps distinct values distinct; this
// is an identity key, not a display format.
func dedupKey(x, y, rot float64) string {
	return fmt.Sprintf("%s|%s|%s",
		strconv.FormatFloat(x, 'g', -1, 64),
		strconv.FormatFloat(y, 'g', -1, 64),
		strconv.FormatFloat(rot, 'g', -1, 64))
}
