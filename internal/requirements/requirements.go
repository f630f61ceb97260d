// Package requirements implements the Requirements Loader (C7): overlaying
// user-supplied admin assignments and peel-position pinnings onto a
// constructed Schedule before optimization. Grounded on the Schedule
// Model's re-derivation behavior described alongside original_source's
// data_handler.py Admin/Whine handling.
package requirements

import (
	"sort"

	"github.com/anescall/callsched/internal/model"
	"github.com/anescall/callsched/internal/scheduleerr"
	"github.com/anescall/callsched/internal/staff"
)

// WhinePin pins a physician to an explicit peel position on a day.
type WhinePin struct {
	Physician string
	Position  int
}

// Overlay is the requests overlay: per-date admin lists (nil meaning
// "leave untouched") and per-date Whine pinnings.
type Overlay struct {
	Admin map[string][]string
	Whine map[string][]WhinePin
}

// Apply returns a fresh Schedule with the overlay's admin and peel-pinning
// requests applied, per C7's builder design: the input Schedule is never
// mutated.
func Apply(s *model.Schedule, overlay Overlay) (*model.Schedule, error) {
	out := &model.Schedule{
		Period:  s.Period,
		Doctors: append([]string(nil), s.Doctors...),
	}

	for _, d := range s.Days {
		nd := cloneDay(d)
		out.Days = append(out.Days, nd)

		if nd.Kind != model.Workday {
			continue
		}

		if admin, ok := overlay.Admin[nd.Date]; ok {
			if err := applyAdmin(nd, admin); err != nil {
				return nil, err
			}
		}

		if pins, ok := overlay.Whine[nd.Date]; ok {
			if err := applyWhine(nd, pins); err != nil {
				return nil, err
			}
		}
	}

	return out, nil
}

func cloneDay(d *model.Day) *model.Day {
	nd := &model.Day{
		Date:             d.Date,
		Kind:             d.Kind,
		OnCall:           d.OnCall,
		OnLate:           d.OnLate,
		Transitions:      map[model.Label]string{},
		Admin:            append([]string(nil), d.Admin...),
		Offsite:          append([]string(nil), d.Offsite...),
		Unassigned:       append([]string(nil), d.Unassigned...),
		Preassigned:      map[int]string{},
		PotentialCharge:  append([]string(nil), d.PotentialCharge...),
		PotentialCardiac: append([]string(nil), d.PotentialCardiac...),
		UnassignedLo:       d.UnassignedLo,
		UnassignedHi:       d.UnassignedHi,
		PreUnassignedCount: d.PreUnassignedCount,
		ChargeOrder:        d.ChargeOrder,
		LastOrder:          d.LastOrder,
	}
	for k, v := range d.Transitions {
		nd.Transitions[k] = v
	}
	for k, v := range d.Preassigned {
		nd.Preassigned[k] = v
	}
	return nd
}

// applyAdmin pins each named physician (other than the admin sentinel) to
// an admin slot, removing them from Unassigned and Offsite, and re-derives
// the day's Unassigned-dependent position numbering.
func applyAdmin(d *model.Day, admin []string) error {
	pinned := map[string]bool{}
	for _, a := range admin {
		if a == "" || a == staff.AdminIdentifier {
			continue
		}
		pinned[a] = true
	}

	d.Unassigned = removeAll(d.Unassigned, pinned)
	d.Offsite = removeAll(d.Offsite, pinned)
	d.Admin = append([]string(nil), admin...)

	renumber(d)
	return nil
}

// applyWhine adds explicit peel-position pinnings to preassigned(d).
// Rejected if the position is already occupied or the physician is not in
// that day's Unassigned pool.
func applyWhine(d *model.Day, pins []WhinePin) error {
	unassigned := map[string]bool{}
	for _, p := range d.Unassigned {
		unassigned[p] = true
	}

	for _, pin := range pins {
		if !unassigned[pin.Physician] {
			return scheduleerr.RequirementsConflict("requirements", d.Date,
				pin.Physician+" is not in the working Unassigned pool for "+d.Date)
		}
		if _, occupied := d.Preassigned[pin.Position]; occupied {
			return scheduleerr.RequirementsConflict("requirements", d.Date,
				"peel position already occupied for "+d.Date)
		}
		if pin.Position < d.UnassignedLo || pin.Position > d.UnassignedHi {
			return scheduleerr.RequirementsConflict("requirements", d.Date,
				"pinned position is outside the Unassigned range for "+d.Date)
		}

		d.Preassigned[pin.Position] = pin.Physician
		d.Unassigned = removeOne(d.Unassigned, pin.Physician)
	}

	return nil
}

// renumber re-derives UnassignedLo/Hi, ChargeOrder, and LastOrder after the
// Unassigned pool's size has changed, re-walking TURN_ORDER the same way
// buildPositions does: the transition-role positions at the head are
// untouched (PreUnassignedCount never changes here), but OnLate/OnCall sit
// immediately after the Unassigned range and must shift to the new
// ChargeOrder/ChargeOrder+1 whenever that range's size changes.
func renumber(d *model.Day) {
	for pos := range d.Preassigned {
		if pos > d.PreUnassignedCount {
			delete(d.Preassigned, pos)
		}
	}

	order := d.PreUnassignedCount + 1

	if len(d.Unassigned) > 0 {
		d.UnassignedLo = order
		d.UnassignedHi = order + len(d.Unassigned) - 1
		order = d.UnassignedHi + 1
	} else {
		d.UnassignedLo = 0
		d.UnassignedHi = 0
	}
	d.ChargeOrder = order

	if d.OnLate != "" {
		d.Preassigned[order] = d.OnLate
		order++
	}
	if d.OnCall != "" {
		d.Preassigned[order] = d.OnCall
		order++
	}
	d.LastOrder = order - 1
}

func removeAll(list []string, remove map[string]bool) []string {
	out := list[:0:0]
	for _, v := range list {
		if !remove[v] {
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

func removeOne(list []string, target string) []string {
	out := list[:0:0]
	for _, v := range list {
		if v != target {
			out = append(out, v)
		}
	}
	return out
}
