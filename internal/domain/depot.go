package domain

// DepotSet is the ordered, de-duplicated list of depot coordinates derived
// from every enabled vehicle's start depot and TSP origin. Indices 0..D-1 in
// any Matrix built for a run are reserved for depots, in this order.
type DepotSet struct {
	coords []Coordinate
	index  map[Coordinate]int
}

// NewDepotSet derives a DepotSet from the fleet's start depots and TSP
// origins, preserving first-seen order. A spec's TSP origin is registered
// alongside its start depot even when the two coincide (the common case,
// deduplicated by the underlying map) so the post-optimizer always has a
// real matrix node to re-sequence from.
func NewDepotSet(specs []VehicleSpec) *DepotSet {
	ds := &DepotSet{index: make(map[Coordinate]int)}
	for _, raw := range specs {
		if !raw.Enabled {
			continue
		}
		s := raw
		s.Normalize()
		ds.add(s.StartDepot)
		ds.add(s.TSPOrigin)
	}
	return ds
}

func (d *DepotSet) add(c Coordinate) int {
	if idx, ok := d.index[c]; ok {
		return idx
	}
	idx := len(d.coords)
	d.coords = append(d.coords, c)
	d.index[c] = idx
	return idx
}

// IndexOf returns the matrix index reserved for coordinate c, adding it if
// it has not been seen (defensive: every start depot should already have
// been registered via NewDepotSet, but callers may probe defensively).
func (d *DepotSet) IndexOf(c Coordinate) int {
	return d.add(c)
}

// Lookup returns the matrix index for c without registering it, so callers
// that must not grow the set past what the matrix was actually built for
// can detect a miss and fall back instead.
func (d *DepotSet) Lookup(c Coordinate) (int, bool) {
	idx, ok := d.index[c]
	return idx, ok
}

// Coordinates returns the depots in matrix-index order.
func (d *DepotSet) Coordinates() []Coordinate {
	return d.coords
}

// Len returns the number of distinct depots (== D in spec.md's Matrix model).
func (d *DepotSet) Len() int {
	return len(d.coords)
}
