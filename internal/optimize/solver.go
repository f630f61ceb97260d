package optimize

import (
	"context"
	"fmt"
)

// Solver is the abstract MILP oracle contract the optimization core treats
// the backend as (§4.6.5): build a program, solve it within a time limit,
// and on infeasibility, explain why.
type Solver interface {
	Solve(ctx context.Context, p *Program) (*Result, error)
	IIS(p *Program) []string
}

// IIS produces the textual infeasibility diagnostic every backend can
// share: a scan over the program's workdays for the explicit cases the
// design calls out, independent of whatever internal search the backend
// performed.
func IIS(p *Program) []string {
	var out []string
	for _, d := range p.Workdays {
		if len(d.PotentialCharge) == 0 {
			out = append(out, fmt.Sprintf("%s: no potential charge physician", d.Date))
		}
		if len(d.PotentialCardiac) == 0 {
			out = append(out, fmt.Sprintf("%s: no potential cardiac physician", d.Date))
		}
		if len(d.PotentialCharge) == 1 && len(d.PotentialCardiac) == 1 && d.PotentialCharge[0] == d.PotentialCardiac[0] {
			out = append(out, fmt.Sprintf("%s: same physician %s is the only option for both charge and cardiac", d.Date, d.PotentialCharge[0]))
		}
		union := map[string]bool{}
		for _, a := range d.PotentialCharge {
			union[a] = true
		}
		for _, a := range d.PotentialCardiac {
			union[a] = true
		}
		if len(union) < 2 {
			out = append(out, fmt.Sprintf("%s: potential_charge union potential_cardiac has fewer than 2 physicians", d.Date))
		}
		out = append(out, fmt.Sprintf("%s: potential_charge=%v potential_cardiac=%v whine=%v admin=%v preassigned=%v",
			d.Date, d.PotentialCharge, d.PotentialCardiac, d.Unassigned, d.Admin, d.Preassigned))
	}
	return out
}
