package optimize

import (
	"fmt"

	"github.com/anescall/callsched/internal/model"
	"github.com/anescall/callsched/internal/scheduleerr"
	"github.com/anescall/callsched/internal/staff"
)

// Program is the built mixed-integer program: a reference to the frozen
// Schedule it was built from, the config it solves under, and the
// per-workday candidate structure a Solver backend searches over. It plays
// the role of the opaque "Program" the solver oracle contract (§4.6.5)
// accepts.
type Program struct {
	Schedule *model.Schedule
	Config   Config
	Workdays []*model.Day
	Registry *staff.Registry
}

// Build constructs a Program from a frozen Schedule. It does not itself
// search for a solution; that is the Solver's job.
func Build(s *model.Schedule, reg *staff.Registry, cfg Config) (*Program, error) {
	p := &Program{Schedule: s, Config: cfg, Registry: reg}
	for _, d := range s.Days {
		if d.Kind != model.Workday {
			continue
		}
		if len(d.PotentialCharge) == 0 || len(d.PotentialCardiac) == 0 {
			return nil, scheduleerr.Infeasible("optimize",
				fmt.Sprintf("day %s has no eligible charge or cardiac physician", d.Date))
		}
		p.Workdays = append(p.Workdays, d)
	}
	return p, nil
}

// VariableCount estimates the number of decision variables the program
// represents, for solver telemetry: x[a,d,p] for each day's working set
// times its position count, plus z/w per day times eligible candidates,
// plus the three y[eps,a] bands per active physician, plus mu/Mw/Mz/Mwz.
func (p *Program) VariableCount() int {
	n := 0
	for _, d := range p.Workdays {
		n += len(d.Working()) * d.LastOrder
		n += len(d.PotentialCharge)
		n += len(d.PotentialCardiac)
	}
	n += 3 * len(p.Schedule.Doctors)
	n += 4
	return n
}

// ConstraintCount estimates the number of linear constraints the program
// represents, one count per constraint family in §4.6.3 times its index
// set size.
func (p *Program) ConstraintCount() int {
	n := 0
	for i, d := range p.Workdays {
		n += d.LastOrder               // peel uniqueness
		n += len(d.Unassigned)         // each Unassigned physician placed
		n += len(d.Preassigned)        // pre-assignment fixation
		n++                            // charge election
		n += len(d.PotentialCharge)    // charge must occupy its peel
		n++                            // cardiac election
		n += len(d.PotentialCharge)    // no charge+cardiac same day (over C∩H, approximated by charge set)
		if i > 0 {
			n += len(d.PotentialCharge) // no consecutive charge
		}
	}
	n += 3                    // role-count maxima
	n += 3 * len(p.Schedule.Doctors) * 2 // equity bands, two inequalities per band per physician
	return n
}
