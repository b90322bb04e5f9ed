package domain

// Stop is a single customer visit within a Route, in visiting order.
type Stop struct {
	CustomerID    string
	ArrivalSecond int
	DepartSecond  int
}

// Route is one vehicle's full itinerary for a run: the physical unit that
// operated it, the ordered stops it serves, and the totals accumulated while
// building or validating it.
type Route struct {
	VehicleSpecIndex int
	VehicleUnitIndex int
	Class            VehicleClass

	Stops []Stop

	DemandUnits    int
	DistanceMeters int64
	DurationSecs   int64

	// Feasible reports whether the route is considered to meet its vehicle's
	// constraints. solver.Extract sets it to true for every route it builds,
	// greedy-fallback routes included (greedy checks capacity, distance,
	// stops and time on each insertion).
	Feasible bool
}

// CustomerIDs returns the visiting order as bare IDs, the shape the TSP
// post-optimizer and solver backends exchange routes in.
func (r Route) CustomerIDs() []string {
	ids := make([]string, len(r.Stops))
	for i, s := range r.Stops {
		ids[i] = s.CustomerID
	}
	return ids
}

// StopCount returns the number of customer stops, excluding depot legs —
// the quantity the solver's stops dimension tracks.
func (r Route) StopCount() int {
	return len(r.Stops)
}

// Solution is the outcome of a full planning run: the routes chosen, the
// customers that could not be routed (handled to the warehouse instead),
// and whether the result came from a degraded code path.
type Solution struct {
	Routes  []Route
	Dropped []string // customer IDs routed to the warehouse instead

	TotalDistanceMeters int64
	TotalDurationSecs   int64
	TotalDemandUnits    int

	// Degraded is true if any component (matrix build, solver) fell back
	// to a lower-fidelity path to produce this solution.
	Degraded bool

	// Strategy names the winning solver strategy/backend, for diagnostics.
	Strategy string

	// Fitness is the score used to compare candidate solutions; lower is
	// better. See services/solver for its composition.
	Fitness float64
}

// Recompute derives the aggregate totals from the current Routes slice.
func (s *Solution) Recompute() {
	var dist, dur int64
	var demand int
	for _, r := range s.Routes {
		dist += r.DistanceMeters
		dur += r.DurationSecs
		demand += r.DemandUnits
	}
	s.TotalDistanceMeters = dist
	s.TotalDurationSecs = dur
	s.TotalDemandUnits = demand
}

// RoutedCustomerCount returns how many customers ended up on a route, as
// opposed to being dropped to the warehouse.
func (s Solution) RoutedCustomerCount() int {
	n := 0
	for _, r := range s.Routes {
		n += len(r.Stops)
	}
	return n
}
