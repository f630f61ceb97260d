package reporting

import (
	"encoding/json"
	"os"

	"github.com/anescall/callsched/internal/model"
	"github.com/anescall/callsched/internal/optimize"
)

// Solution is the solved-schedule JSON payload's extra object: per-day
// peel/charge/cardiac picks, per-physician totals, the target mean, the
// objective breakdown, and solver telemetry.
type Solution struct {
	Peel      map[string]map[string]int `json:"Peel"`
	Charge    map[string]string         `json:"Charge"`
	Cardiac   map[string]string         `json:"Cardiac"`
	Points    map[string][2]int         `json:"Points"` // [total, preassigned]
	Mu        float64                   `json:"Mu"`
	Objective optimize.Objective        `json:"Objective"`
	Telemetry optimize.Telemetry        `json:"Telemetry"`
}

// SolvedDocument is the persisted solved schedule: the derived schedule
// plus the Solution object.
type SolvedDocument struct {
	*model.DerivedSchedule
	Solution Solution `json:"Solution"`
}

// BuildSolution assembles the Solution object from a solved Schedule and
// Result.
func BuildSolution(s *model.Schedule, result *optimize.Result) Solution {
	fixed := map[string]int{}
	for _, d := range s.Days {
		for pos, phys := range d.Preassigned {
			fixed[phys] += pos
		}
		for _, phys := range d.Admin {
			if phys != "" {
				fixed[phys] += model.AdminPoints
			}
		}
	}

	sol := Solution{
		Peel:      map[string]map[string]int{},
		Charge:    map[string]string{},
		Cardiac:   map[string]string{},
		Points:    map[string][2]int{},
		Mu:        result.Mu,
		Objective: result.Objective,
		Telemetry: result.Telemetry,
	}

	totals := map[string]int{}
	for a, v := range fixed {
		totals[a] = v
	}
	for _, da := range result.Days {
		sol.Peel[da.Date] = da.Peel
		sol.Charge[da.Date] = da.Charge
		sol.Cardiac[da.Date] = da.Cardiac
		for phys, pos := range da.Peel {
			totals[phys] += pos
		}
	}
	for phys, total := range totals {
		sol.Points[phys] = [2]int{total, fixed[phys]}
	}

	return sol
}

// Save writes a SolvedDocument to path as indented JSON.
func Save(path string, derived *model.DerivedSchedule, sol Solution) error {
	doc := SolvedDocument{DerivedSchedule: derived, Solution: sol}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
