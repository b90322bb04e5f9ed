// Package dto holds the wire shapes the HTTP API exchanges, kept separate
// from domain types so a request/response field rename never forces a
// domain change and vice versa.
package dto

import "cvrp-optimizer/internal/domain"

// PlanRequest triggers one planning run. Every field is optional. The plan
// handler validates the body against this shape but does not apply its
// fields; runs use the server's loaded configuration.
type PlanRequest struct {
	DepartureSecond int    `json:"departure_second"`
	CostingProfile  string `json:"costing_profile"`
}

// StopResponse is one customer visit within a planned route.
type StopResponse struct {
	CustomerID    string `json:"customer_id"`
	ArrivalSecond int    `json:"arrival_second"`
	DepartSecond  int    `json:"depart_second"`
}

// RouteResponse is one vehicle's full itinerary.
type RouteResponse struct {
	VehicleSpecIndex int            `json:"vehicle_spec_index"`
	VehicleUnitIndex int            `json:"vehicle_unit_index"`
	Class            string         `json:"class"`
	Stops            []StopResponse `json:"stops"`
	DemandUnits      int            `json:"demand_units"`
	DistanceMeters   int64          `json:"distance_meters"`
	DurationSeconds  int64          `json:"duration_seconds"`
	Feasible         bool           `json:"feasible"`
}

// PlanResponse is the full outcome of one planning run.
type PlanResponse struct {
	Routes              []RouteResponse `json:"routes"`
	Dropped             []string        `json:"dropped"`
	TotalDistanceMeters int64           `json:"total_distance_meters"`
	TotalDurationSeconds int64          `json:"total_duration_seconds"`
	TotalDemandUnits    int             `json:"total_demand_units"`
	Degraded            bool            `json:"degraded"`
	Strategy            string          `json:"strategy"`
	Fitness             float64         `json:"fitness"`
	RunID               int64           `json:"run_id,omitempty"`
}

// FromSolution converts a completed domain.Solution (plus the run id a
// history write produced, if any) into its wire shape.
func FromSolution(sol domain.Solution, degraded bool, runID int64) PlanResponse {
	routes := make([]RouteResponse, 0, len(sol.Routes))
	for _, r := range sol.Routes {
		stops := make([]StopResponse, 0, len(r.Stops))
		for _, s := range r.Stops {
			stops = append(stops, StopResponse{
				CustomerID:    s.CustomerID,
				ArrivalSecond: s.ArrivalSecond,
				DepartSecond:  s.DepartSecond,
			})
		}
		routes = append(routes, RouteResponse{
			VehicleSpecIndex: r.VehicleSpecIndex,
			VehicleUnitIndex: r.VehicleUnitIndex,
			Class:            string(r.Class),
			Stops:            stops,
			DemandUnits:      r.DemandUnits,
			DistanceMeters:   r.DistanceMeters,
			DurationSeconds:  r.DurationSecs,
			Feasible:         r.Feasible,
		})
	}

	return PlanResponse{
		Routes:               routes,
		Dropped:              sol.Dropped,
		TotalDistanceMeters:  sol.TotalDistanceMeters,
		TotalDurationSeconds: sol.TotalDurationSecs,
		TotalDemandUnits:     sol.TotalDemandUnits,
		Degraded:             degraded,
		Strategy:             sol.Strategy,
		Fitness:              sol.Fitness,
		RunID:                runID,
	}
}
