package bnb

import "github.com/anescall/callsched/internal/optimize"

// tryImprovePositions looks for a single pairwise swap of peel positions
// between two Unassigned physicians on the same day (across every day)
// that improves the objective, applies the first one found, and returns
// the new Result. Returns nil if no improving swap exists.
func tryImprovePositions(plans []*dayPlan, fixedPoints, weekdaysWorked map[string]int, w optimize.Weights, currentBest float64) *optimize.Result {
	for _, plan := range plans {
		phys := make([]string, 0, len(plan.peel))
		for p := range plan.peel {
			phys = append(phys, p)
		}
		for i := 0; i < len(phys); i++ {
			for j := i + 1; j < len(phys); j++ {
				a, b := phys[i], phys[j]
				plan.peel[a], plan.peel[b] = plan.peel[b], plan.peel[a]

				res := evaluate(plans, fixedPoints, weekdaysWorked, w)
				if res.Objective.Total > currentBest {
					return &res
				}
				plan.peel[a], plan.peel[b] = plan.peel[b], plan.peel[a]
			}
		}
	}
	return nil
}

// tryImproveElections looks for a single day's charge or cardiac election
// that can be swapped for an alternate eligible candidate, improving the
// objective while preserving the no-consecutive-charge and
// no-charge-equals-cardiac constraints. Returns nil if no improving swap
// exists.
func tryImproveElections(plans []*dayPlan, fixedPoints, weekdaysWorked map[string]int, w optimize.Weights, currentBest float64) *optimize.Result {
	for i, plan := range plans {
		d := plan.day
		prevCharge, nextCharge := "", ""
		if i > 0 {
			prevCharge = plans[i-1].charge
		}
		if i+1 < len(plans) {
			nextCharge = plans[i+1].charge
		}

		for _, cand := range chargeCandidates(d) {
			if cand == plan.charge || cand == prevCharge || cand == nextCharge || cand == plan.cardiac {
				continue
			}
			old := plan.charge
			plan.charge = cand
			res := evaluate(plans, fixedPoints, weekdaysWorked, w)
			if res.Objective.Total > currentBest {
				return &res
			}
			plan.charge = old
		}

		for _, cand := range d.PotentialCardiac {
			if cand == plan.cardiac || cand == plan.charge {
				continue
			}
			old := plan.cardiac
			plan.cardiac = cand
			res := evaluate(plans, fixedPoints, weekdaysWorked, w)
			if res.Objective.Total > currentBest {
				return &res
			}
			plan.cardiac = old
		}
	}
	return nil
}
