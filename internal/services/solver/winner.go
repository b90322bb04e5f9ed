package solver

// SelectWinner filters to feasible candidates and returns the one
// minimizing fitness, breaking ties by maximum served demand, then lowest
// vehicle count, then solution id — the order spec.md's winner-selection
// rule names. Returns false if no candidate is feasible.
func SelectWinner(p Problem, candidates []Candidate) (Candidate, bool) {
	feasible := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Feasible {
			feasible = append(feasible, c)
		}
	}
	if len(feasible) == 0 {
		return Candidate{}, false
	}

	best := feasible[0]
	bestServed := servedDemand(p, best)
	for _, c := range feasible[1:] {
		served := servedDemand(p, c)
		if better(c, best, served, bestServed) {
			best = c
			bestServed = served
		}
	}
	return best, true
}

func better(c, best Candidate, servedC, servedBest int) bool {
	if c.Fitness != best.Fitness {
		return c.Fitness < best.Fitness
	}
	if servedC != servedBest {
		return servedC > servedBest
	}
	if c.VehicleUsed != best.VehicleUsed {
		return c.VehicleUsed < best.VehicleUsed
	}
	return c.SolutionID < best.SolutionID
}

func servedDemand(p Problem, c Candidate) int {
	total := 0
	for _, customers := range c.RouteCustomers {
		for _, ci := range customers {
			total += p.Customers[ci].DemandUnits
		}
	}
	return total
}
