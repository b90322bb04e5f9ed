package domain

// VehicleClass is a closed set of fleet categories known at compile time.
// Each class carries its own center-zone cost rule (see services/solver).
type VehicleClass string

const (
	VehicleClassInternal VehicleClass = "internal"
	VehicleClassCenter   VehicleClass = "center"
	VehicleClassExternal VehicleClass = "external"
	VehicleClassSpecial  VehicleClass = "special"
	VehicleClassRegional VehicleClass = "regional"
)

// DefaultServiceMinutes returns the per-stop service time baked into this
// class when a VehicleSpec does not override it.
func (c VehicleClass) DefaultServiceMinutes() int {
	switch c {
	case VehicleClassCenter:
		return 4
	case VehicleClassExternal:
		return 6
	case VehicleClassSpecial:
		return 8
	case VehicleClassRegional:
		return 10
	default: // internal
		return 5
	}
}

// DefaultStartMinute returns the default start-of-day minute for this class.
func (c VehicleClass) DefaultStartMinute() int {
	switch c {
	case VehicleClassRegional:
		return 6 * 60
	default:
		return 8 * 60
	}
}

// Valid reports whether c is one of the five known classes.
func (c VehicleClass) Valid() bool {
	switch c {
	case VehicleClassInternal, VehicleClassCenter, VehicleClassExternal, VehicleClassSpecial, VehicleClassRegional:
		return true
	default:
		return false
	}
}

// VehicleSpec describes one logical vehicle definition: every physical
// vehicle of this class in the fleet shares all of these limits.
type VehicleSpec struct {
	Class VehicleClass

	// Capacity is the maximum cumulative demand a single vehicle may carry.
	Capacity int

	// FleetCount is how many physical vehicles of this class exist.
	FleetCount int

	// MaxDistanceMeters is an optional per-route distance ceiling. Zero means unset.
	MaxDistanceMeters int

	// MaxTimeMinutes is the per-route time budget, including service time.
	MaxTimeMinutes int

	// ServiceMinutesPerStop overrides Class.DefaultServiceMinutes() when > 0.
	ServiceMinutesPerStop int

	// StartMinuteOfDay overrides Class.DefaultStartMinute() when > 0.
	StartMinuteOfDay int

	// MaxStops is an optional per-route stop-count ceiling. Zero means unset.
	MaxStops int

	Enabled bool

	StartDepot Coordinate

	// TSPOrigin is the coordinate the post-optimizer re-sequences from.
	// Defaults to StartDepot when zero-valued (see Normalize).
	TSPOrigin Coordinate
}

// Normalize fills class defaults and defaults TSPOrigin to StartDepot.
func (v *VehicleSpec) Normalize() {
	if v.ServiceMinutesPerStop <= 0 {
		v.ServiceMinutesPerStop = v.Class.DefaultServiceMinutes()
	}
	if v.StartMinuteOfDay <= 0 {
		v.StartMinuteOfDay = v.Class.DefaultStartMinute()
	}
	if v.TSPOrigin == (Coordinate{}) {
		v.TSPOrigin = v.StartDepot
	}
}

// MaxTimeSeconds is a convenience accessor used throughout the solver.
func (v VehicleSpec) MaxTimeSeconds() int {
	return v.MaxTimeMinutes * 60
}

// ServiceSecondsPerStop is a convenience accessor used throughout the solver.
func (v VehicleSpec) ServiceSecondsPerStop() int {
	return v.ServiceMinutesPerStop * 60
}

// VehicleUnit is a single physical vehicle expanded from a VehicleSpec: the
// CVRP solver operates over units, not specs, since a spec with
// FleetCount=3 contributes three independent routable vehicles.
type VehicleUnit struct {
	Spec       VehicleSpec
	SpecIndex  int // index into the originating []VehicleSpec
	UnitIndex  int // 0-based index within the spec's fleet
	StartNode  int // index into the Matrix/DepotSet
	EndNode    int // same as StartNode unless reconfigured
	TSPOrigin  Coordinate
	StartDepot Coordinate
}

// ExpandFleet expands enabled vehicle specs into individually routable units,
// one per physical vehicle. Disabled specs are skipped entirely.
func ExpandFleet(specs []VehicleSpec, depotIndex func(Coordinate) int) []VehicleUnit {
	units := make([]VehicleUnit, 0, len(specs))
	for si, raw := range specs {
		spec := raw
		if !spec.Enabled || spec.FleetCount <= 0 {
			continue
		}
		spec.Normalize()

		startNode := depotIndex(spec.StartDepot)
		for ui := 0; ui < spec.FleetCount; ui++ {
			units = append(units, VehicleUnit{
				Spec:       spec,
				SpecIndex:  si,
				UnitIndex:  ui,
				StartNode:  startNode,
				EndNode:    startNode,
				TSPOrigin:  spec.TSPOrigin,
				StartDepot: spec.StartDepot,
			})
		}
	}
	return units
}
