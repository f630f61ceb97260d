// Package bnb is the reference in-process backend for the optimization
// core's abstract solver oracle. It has no external MILP dependency: it
// builds a feasible incumbent by a greedy construction pass ordered by
// running point totals, then improves it with a bounded local search
// (position swaps within a day, charge/cardiac re-elections) guided by the
// same weighted objective the core reports, keeping the best incumbent
// found until the configured time limit elapses or no further improving
// move exists. It satisfies optimize.Solver; any real MILP engine meeting
// the same build/solve/iis contract is a drop-in replacement.
package bnb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/anescall/callsched/internal/model"
	"github.com/anescall/callsched/internal/optimize"
)

// Solver is the reference backend.
type Solver struct{}

// New returns a ready-to-use reference solver.
func New() *Solver { return &Solver{} }

// IIS delegates to the shared textual diagnostic scan.
func (s *Solver) IIS(p *optimize.Program) []string { return optimize.IIS(p) }

// dayPlan is one workday's current decisions.
type dayPlan struct {
	day     *model.Day
	peel    map[string]int // unassigned physician -> position
	charge  string
	cardiac string
}

// Solve runs the greedy-construct-then-improve search.
func (s *Solver) Solve(ctx context.Context, p *optimize.Program) (*optimize.Result, error) {
	start := time.Now()
	deadline := start.Add(p.Config.TimeLimit)

	fixedPoints, weekdaysWorked := staticTotals(p)

	plans := make([]*dayPlan, len(p.Workdays))
	for i, d := range p.Workdays {
		plans[i] = &dayPlan{day: d, peel: map[string]int{}}
	}

	if !greedyConstruct(plans, fixedPoints) {
		return &optimize.Result{
			Status: optimize.StatusInfeasible,
			Telemetry: optimize.Telemetry{
				RunID:          uuid.NewString(),
				NumVariables:   p.VariableCount(),
				NumConstraints: p.ConstraintCount(),
				Status:         optimize.StatusInfeasible,
				Elapsed:        time.Since(start),
			},
		}, nil
	}

	best := evaluate(plans, fixedPoints, weekdaysWorked, p.Config.Weights)
	status := optimize.StatusOptimal

	for improved := true; improved; {
		improved = false
		if time.Now().After(deadline) {
			status = optimize.StatusTimeLimit
			break
		}
		select {
		case <-ctx.Done():
			status = optimize.StatusTimeLimit
		default:
		}
		if status == optimize.StatusTimeLimit {
			break
		}

		cand := tryImprovePositions(plans, fixedPoints, weekdaysWorked, p.Config.Weights, best.Objective.Total)
		if cand != nil {
			best = *cand
			improved = true
			continue
		}
		cand = tryImproveElections(plans, fixedPoints, weekdaysWorked, p.Config.Weights, best.Objective.Total)
		if cand != nil {
			best = *cand
			improved = true
		}
	}

	best.Telemetry = optimize.Telemetry{
		RunID:          uuid.NewString(),
		NumVariables:   p.VariableCount(),
		NumConstraints: p.ConstraintCount(),
		Status:         status,
		Elapsed:        time.Since(start),
	}
	best.Status = status
	return &best, nil
}

// staticTotals precomputes each physician's fixed (non-Unassigned) point
// contribution for the week and the number of workdays they appear in
// working(d), neither of which any search decision changes.
func staticTotals(p *optimize.Program) (fixed map[string]int, weekdays map[string]int) {
	fixed = map[string]int{}
	weekdays = map[string]int{}

	for _, d := range p.Workdays {
		for pos, phys := range d.Preassigned {
			fixed[phys] += pos
			weekdays[phys]++
		}
		for _, phys := range d.Unassigned {
			weekdays[phys]++
		}
		for _, phys := range d.Admin {
			if phys == "" {
				continue
			}
			fixed[phys] += model.AdminPoints
		}
	}
	return fixed, weekdays
}

// chargeCandidates returns the candidates eligible for election given the
// charge_order peel-fixation rule: any potential_charge member not drawn
// from the Unassigned pool, plus any Unassigned member whose ChargeOrder
// position actually falls inside the Unassigned range (never true under
// the reference position numbering, but checked generically rather than
// special-cased, in case a future schedule construction changes that).
func chargeCandidates(d *model.Day) []string {
	unassigned := map[string]bool{}
	for _, p := range d.Unassigned {
		unassigned[p] = true
	}
	var out []string
	for _, a := range d.PotentialCharge {
		if !unassigned[a] {
			out = append(out, a)
			continue
		}
		if d.ChargeOrder >= d.UnassignedLo && d.ChargeOrder <= d.UnassignedHi {
			out = append(out, a)
		}
	}
	return out
}

// greedyConstruct builds a feasible incumbent: each day, in week order,
// Unassigned physicians peel in descending order of their running total
// (highest total leaves earliest, taking the smallest position, to pull
// totals back toward the mean), and charge/cardiac go to whichever
// feasible candidate currently holds the role least often.
func greedyConstruct(plans []*dayPlan, fixedPoints map[string]int) bool {
	running := map[string]int{}
	for a, v := range fixedPoints {
		running[a] = v
	}
	chargeCount := map[string]int{}
	cardiacCount := map[string]int{}
	var prevCharge string

	for _, plan := range plans {
		d := plan.day

		unassigned := append([]string(nil), d.Unassigned...)
		sort.Slice(unassigned, func(i, j int) bool {
			if running[unassigned[i]] != running[unassigned[j]] {
				return running[unassigned[i]] > running[unassigned[j]]
			}
			return unassigned[i] < unassigned[j]
		})
		positions := make([]int, 0, len(unassigned))
		for p := d.UnassignedLo; p <= d.UnassignedHi; p++ {
			if _, pinned := d.Preassigned[p]; pinned {
				continue
			}
			positions = append(positions, p)
		}
		for i, phys := range unassigned {
			plan.peel[phys] = positions[i]
			running[phys] += positions[i]
		}

		candidates := chargeCandidates(d)
		chosenCharge := ""
		bestScore := -1
		for _, a := range candidates {
			if a == prevCharge {
				continue
			}
			score := chargeCount[a]
			if chosenCharge == "" || score < bestScore || (score == bestScore && isCallDuty(d, a)) {
				chosenCharge = a
				bestScore = score
			}
		}
		if chosenCharge == "" {
			return false
		}
		plan.charge = chosenCharge
		chargeCount[chosenCharge]++
		prevCharge = chosenCharge

		chosenCardiac := ""
		bestScore = -1
		for _, a := range d.PotentialCardiac {
			if a == chosenCharge {
				continue
			}
			score := cardiacCount[a]
			if chosenCardiac == "" || score < bestScore {
				chosenCardiac = a
				bestScore = score
			}
		}
		if chosenCardiac == "" {
			return false
		}
		plan.cardiac = chosenCardiac
		cardiacCount[chosenCardiac]++
	}

	return true
}

func isCallDuty(d *model.Day, a string) bool {
	return a == d.OnCall || a == d.OnLate
}

// evaluate computes the full Result (including the best-fit mu) for a
// given plan set.
func evaluate(plans []*dayPlan, fixedPoints, weekdaysWorked map[string]int, w optimize.Weights) optimize.Result {
	totals := map[string]int{}
	for a, v := range fixedPoints {
		totals[a] = v
	}
	chargeCount := map[string]int{}
	cardiacCount := map[string]int{}
	bothCount := map[string]int{}
	chargePreference := 0.0

	days := make([]optimize.DayAssignment, 0, len(plans))
	for _, plan := range plans {
		for phys, pos := range plan.peel {
			totals[phys] += pos
		}
		chargeCount[plan.charge]++
		cardiacCount[plan.cardiac]++
		if plan.charge == plan.cardiac {
			bothCount[plan.charge]++
		}
		if isCallDuty(plan.day, plan.charge) {
			chargePreference++
		}
		days = append(days, optimize.DayAssignment{
			Date:    plan.day.Date,
			Peel:    copyIntMap(plan.peel),
			Charge:  plan.charge,
			Cardiac: plan.cardiac,
		})
	}

	mw, mz, mwz := 0, 0, 0
	for _, c := range cardiacCount {
		if c > mw {
			mw = c
		}
	}
	for _, c := range chargeCount {
		if c > mz {
			mz = c
		}
	}
	everElected := map[string]bool{}
	for a := range chargeCount {
		everElected[a] = true
	}
	for a := range cardiacCount {
		everElected[a] = true
	}
	for a := range everElected {
		sum := chargeCount[a] + cardiacCount[a]
		if sum > mwz {
			mwz = sum
		}
	}

	ratios := map[string]float64{}
	for phys, days := range weekdaysWorked {
		if days == 0 {
			continue
		}
		ratios[phys] = float64(totals[phys]) / float64(days)
	}

	mu, equity := bestMu(ratios)

	roleConcentration := float64(mw + mz + mwz)
	total := w.Alpha*equity - w.Beta*roleConcentration + w.Gamma*chargePreference

	return optimize.Result{
		Days: days,
		Mu:   mu,
		Mw:   mw,
		Mz:   mz,
		Mwz:  mwz,
		Objective: optimize.Objective{
			Equity:            equity,
			RoleConcentration: roleConcentration,
			ChargePreference:  chargePreference,
			Total:             total,
		},
	}
}

// bestMu searches the candidate set of achieved ratios for the mu that
// maximizes the weighted equity-band sum; a full continuous search is
// unnecessary since the score only changes at the band boundaries around
// each physician's ratio.
func bestMu(ratios map[string]float64) (float64, float64) {
	if len(ratios) == 0 {
		return 0, 0
	}

	var candidates []float64
	sum := 0.0
	for _, r := range ratios {
		candidates = append(candidates, r)
		sum += r
	}
	candidates = append(candidates, sum/float64(len(ratios)))

	bestMu, bestScore := candidates[0], -1.0
	for _, mu := range candidates {
		score := equityScore(ratios, mu)
		if score > bestScore {
			bestScore = score
			bestMu = mu
		}
	}
	return bestMu, bestScore
}

func equityScore(ratios map[string]float64, mu float64) float64 {
	score := 0.0
	for _, band := range optimize.EpsilonBands {
		for _, r := range ratios {
			diff := r - mu
			if diff < 0 {
				diff = -diff
			}
			if diff <= band.Epsilon {
				score += band.Weight
			}
		}
	}
	return score
}

func copyIntMap(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
