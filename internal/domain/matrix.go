package domain

import "fmt"

// Matrix is an N×N grid of distances (meters) and durations (seconds)
// between an ordered list of locations. Diagonal is always zero; symmetry is
// not assumed. Once built it is read-only and safe to share across
// goroutines.
type Matrix struct {
	N           int
	Locations   []Coordinate
	DistanceM   []int64 // row-major, N*N
	DurationS   []int64 // row-major, N*N
	Degraded    []bool  // row-major, N*N: true where the cell came from haversine fallback
	degradedCnt int
}

// NewMatrix allocates a zeroed N×N matrix over the given locations.
func NewMatrix(locations []Coordinate) *Matrix {
	n := len(locations)
	return &Matrix{
		N:         n,
		Locations: locations,
		DistanceM: make([]int64, n*n),
		DurationS: make([]int64, n*n),
		Degraded:  make([]bool, n*n),
	}
}

func (m *Matrix) idx(i, j int) int { return i*m.N + j }

// Distance returns the distance in meters from i to j.
func (m *Matrix) Distance(i, j int) int64 { return m.DistanceM[m.idx(i, j)] }

// Duration returns the duration in seconds from i to j.
func (m *Matrix) Duration(i, j int) int64 { return m.DurationS[m.idx(i, j)] }

// Set writes a cell. degraded marks whether this cell is a haversine fallback.
func (m *Matrix) Set(i, j int, distanceM, durationS int64, degraded bool) {
	k := m.idx(i, j)
	m.DistanceM[k] = distanceM
	m.DurationS[k] = durationS
	if degraded && !m.Degraded[k] {
		m.degradedCnt++
	}
	if !degraded && m.Degraded[k] {
		m.degradedCnt--
	}
	m.Degraded[k] = degraded
}

// SetDuration overwrites only the duration of a cell, preserving its
// distance and degraded flag. Used by the traffic adjuster, which never
// touches distances.
func (m *Matrix) SetDuration(i, j int, durationS int64) {
	m.DurationS[m.idx(i, j)] = durationS
}

// ZeroDiagonal forces every self-distance/self-duration to zero, per the
// Matrix invariant in spec.md §3.
func (m *Matrix) ZeroDiagonal() {
	for i := 0; i < m.N; i++ {
		k := m.idx(i, i)
		m.DistanceM[k] = 0
		m.DurationS[k] = 0
	}
}

// DegradedCount returns how many cells were filled by the haversine
// fallback rather than an upstream provider.
func (m *Matrix) DegradedCount() int { return m.degradedCnt }

// Validate checks the structural invariants spec.md §3/§8 require.
func (m *Matrix) Validate() error {
	if m.N != len(m.Locations) {
		return fmt.Errorf("matrix: location count %d does not match N %d", len(m.Locations), m.N)
	}
	if len(m.DistanceM) != m.N*m.N || len(m.DurationS) != m.N*m.N {
		return fmt.Errorf("matrix: grid size mismatch for N=%d", m.N)
	}
	for i := 0; i < m.N; i++ {
		if m.Distance(i, i) != 0 || m.Duration(i, i) != 0 {
			return fmt.Errorf("matrix: non-zero diagonal at index %d", i)
		}
	}
	for k, d := range m.DistanceM {
		if d < 0 {
			return fmt.Errorf("matrix: negative distance at cell %d", k)
		}
	}
	for k, d := range m.DurationS {
		if d < 0 {
			return fmt.Errorf("matrix: negative duration at cell %d", k)
		}
	}
	return nil
}

// Clone returns a deep, independent copy.
func (m *Matrix) Clone() *Matrix {
	out := &Matrix{
		N:           m.N,
		Locations:   append([]Coordinate(nil), m.Locations...),
		DistanceM:   append([]int64(nil), m.DistanceM...),
		DurationS:   append([]int64(nil), m.DurationS...),
		Degraded:    append([]bool(nil), m.Degraded...),
		degradedCnt: m.degradedCnt,
	}
	return out
}
