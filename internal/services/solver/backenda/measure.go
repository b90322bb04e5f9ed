package backenda

import "cvrp-optimizer/internal/services/solver"

// arcCostMeasure adapts solver.ArcCost (a per-vehicle-class cost table
// keyed by Problem matrix node indices) to route.ByIndex, the SDK's
// custom-measure interface, which the router addresses using its own node
// space: stops 0..len(stops)-1 in input order, followed by each vehicle's
// start/end position pair. nodeToMatrix translates from the router's node
// space back to solver.Problem's matrix node space (depots 0..D-1,
// customers D..D+C-1) so the same cost table drives both backends.
type arcCostMeasure struct {
	cost         solver.ArcCost
	nodeToMatrix []int
}

// Cost implements route.ByIndex.
func (m arcCostMeasure) Cost(from, to int) float64 {
	matrixFrom := m.nodeToMatrix[from]
	matrixTo := m.nodeToMatrix[to]
	return m.cost.CostNodeToNode(matrixFrom, matrixTo)
}

// buildNodeToMatrix constructs the router-node-index → matrix-node-index
// table described on arcCostMeasure.
func buildNodeToMatrix(p solver.Problem) []int {
	n := len(p.Customers) + 2*len(p.Units)
	table := make([]int, n)
	for i := range p.Customers {
		table[i] = p.CustomerNode(i)
	}
	base := len(p.Customers)
	for u, unit := range p.Units {
		table[base+2*u] = unit.StartNode
		table[base+2*u+1] = unit.EndNode
	}
	return table
}
