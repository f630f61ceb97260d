package model

import (
	"sort"
	"time"

	"github.com/anescall/callsched/internal/scheduleerr"
	"github.com/anescall/callsched/internal/staff"
)

// Day is the Schedule Model's per-day view: working/off-site sets,
// preassigned peel positions, potential-charge/cardiac sets, and the
// position bookkeeping the optimizer needs.
type Day struct {
	Date string
	Kind DayKind

	OnCall string
	OnLate string

	Transitions map[Label]string // PostCall/PostHoliday/PostLate/PreCall/PreHoliday -> physician, absent if null

	Admin      []string
	Offsite    []string
	Unassigned []string

	// Preassigned maps a fixed peel position to the physician occupying it:
	// every working physician except the Unassigned pool.
	Preassigned map[int]string

	PotentialCharge  []string
	PotentialCardiac []string

	// UnassignedLo/UnassignedHi is the contiguous peel-position range the
	// Unassigned pool occupies; zero value (0,0) on weekends or when the
	// pool is empty.
	UnassignedLo int
	UnassignedHi int

	// PreUnassignedCount is the number of fixed peel positions numbered
	// before the Unassigned block (the transition-role group's size).
	PreUnassignedCount int

	// ChargeOrder is the smallest peel position greater than every
	// Unassigned peel position (spec definition), reserved for the charge
	// physician when charge is drawn from Unassigned.
	ChargeOrder int

	// LastOrder is the last peel position in use on this day.
	LastOrder int
}

// Working returns every physician holding a peel position this day
// (transitions, OnCall/OnLate, and Unassigned), in no particular order.
func (d *Day) Working() []string {
	var out []string
	for _, p := range d.Preassigned {
		out = append(out, p)
	}
	out = append(out, d.Unassigned...)
	return out
}

// Orders returns 1..LastOrder.
func (d *Day) Orders() []int {
	out := make([]int, 0, d.LastOrder)
	for i := 1; i <= d.LastOrder; i++ {
		out = append(out, i)
	}
	return out
}

// CallSet returns the day's OnCall and OnLate physicians (the two
// "call duty" roles eligible to be elected charge or cardiac alongside
// Unassigned physicians, per the charge rule, or alone for cardiac).
func (d *Day) CallSet() []string {
	var out []string
	if d.OnCall != "" {
		out = append(out, d.OnCall)
	}
	if d.OnLate != "" {
		out = append(out, d.OnLate)
	}
	return out
}

// Schedule is the in-memory representation of one week's derived schedule,
// built from a DerivedSchedule and a Registry.
type Schedule struct {
	Period   Period
	Doctors  []string
	Days     []*Day
	registry *staff.Registry
}

// DayByDate returns the Day for a given calendar date, or nil.
func (s *Schedule) DayByDate(date string) *Day {
	for _, d := range s.Days {
		if d.Date == date {
			return d
		}
	}
	return nil
}

// FromDerived builds a Schedule from a C4 DerivedSchedule, numbering peel
// positions in TURN_ORDER sequence and computing potential-charge/cardiac
// sets and the charge_order boundary for each workday.
func FromDerived(derived *DerivedSchedule, reg *staff.Registry) (*Schedule, error) {
	s := &Schedule{
		Period:   derived.Period,
		Doctors:  append([]string(nil), derived.Doctors...),
		registry: reg,
	}

	for i := 0; i < derived.NumDays(); i++ {
		day := &Day{
			Date:        derived.Order[i],
			Kind:        derived.Day[i],
			Transitions: map[Label]string{},
			Preassigned: map[int]string{},
		}

		if i < len(derived.Admin) {
			day.Admin = derived.Admin[i]
		}
		if i < len(derived.Offsite) {
			day.Offsite = derived.Offsite[i]
		}
		if i < len(derived.Unassigned) {
			day.Unassigned = append([]string(nil), derived.Unassigned[i]...)
			sort.Strings(day.Unassigned)
		}

		if s := derefStr(derived.OnCall, i); s != "" {
			day.OnCall = s
		}
		if s := derefStr(derived.OnLate, i); s != "" {
			day.OnLate = s
		}
		assignTransition(day, LabelPostCall, derived.PostCall, i)
		assignTransition(day, LabelPostHoliday, derived.PostHoliday, i)
		assignTransition(day, LabelPostLate, derived.PostLate, i)
		assignTransition(day, LabelPreCall, derived.PreCall, i)
		assignTransition(day, LabelPreHoliday, derived.PreHoliday, i)

		if day.Kind == Workday {
			buildPositions(day)
			buildPotentialSets(day, reg)
		}

		s.Days = append(s.Days, day)
	}

	return s, nil
}

func derefStr(arr []*string, i int) string {
	if i >= len(arr) || arr[i] == nil {
		return ""
	}
	return *arr[i]
}

func assignTransition(day *Day, label Label, arr []*string, i int) {
	if v := derefStr(arr, i); v != "" {
		day.Transitions[label] = v
	}
}

// buildPositions numbers peel positions in TURN_ORDER sequence: the
// transition-role groups first (in TURN_ORDER order, excluding
// Unassigned/OnLate/OnCall/Admin), then the contiguous Unassigned range,
// then OnLate, then OnCall. Admin carries a fixed point value and is not
// assigned a peel position.
func buildPositions(day *Day) {
	order := 1

	preUnassigned := []Label{LabelPostCall, LabelPostHoliday, LabelPostLate, LabelPreCall}
	for _, label := range preUnassigned {
		if phys, ok := day.Transitions[label]; ok {
			day.Preassigned[order] = phys
			order++
		}
	}

	day.PreUnassignedCount = order - 1

	if len(day.Unassigned) > 0 {
		day.UnassignedLo = order
		day.UnassignedHi = order + len(day.Unassigned) - 1
		order = day.UnassignedHi + 1
	} else {
		day.UnassignedLo = 0
		day.UnassignedHi = 0
	}

	day.ChargeOrder = order

	if day.OnLate != "" {
		day.Preassigned[order] = day.OnLate
		order++
	}
	if day.OnCall != "" {
		day.Preassigned[order] = day.OnCall
		order++
	}

	day.LastOrder = order - 1
}

// buildPotentialSets computes potential_charge(day) and
// potential_cardiac(day) per the Schedule Model design.
func buildPotentialSets(day *Day, reg *staff.Registry) {
	chargeCapable := map[string]bool{}
	for _, id := range reg.ChargeDoctors() {
		chargeCapable[id] = true
	}
	cardiacCapable := map[string]bool{}
	for _, id := range reg.CardiacDoctors() {
		cardiacCapable[id] = true
	}

	candidates := map[string]bool{}
	for _, p := range day.CallSet() {
		candidates[p] = true
	}
	for _, p := range day.Unassigned {
		candidates[p] = true
	}
	for p := range candidates {
		if chargeCapable[p] {
			day.PotentialCharge = append(day.PotentialCharge, p)
		}
	}
	sort.Strings(day.PotentialCharge)

	for _, p := range day.CallSet() {
		if cardiacCapable[p] {
			day.PotentialCardiac = append(day.PotentialCardiac, p)
		}
	}
	sort.Strings(day.PotentialCardiac)
}

// Validate checks every invariant from the data model's validator section
// against the Schedule, returning the first violation found.
func (s *Schedule) Validate() error {
	from, err1 := time.Parse("2006-01-02", s.Period.Start)
	to, err2 := time.Parse("2006-01-02", s.Period.End)
	if err1 != nil || err2 != nil {
		return scheduleerr.InputMalformed("schedule", "period range malformed")
	}

	expected := s.registry.Everyone(from, to)
	expectedSet := map[string]bool{}
	for _, id := range expected {
		expectedSet[id] = true
	}
	actualSet := map[string]bool{}
	for _, id := range s.Doctors {
		actualSet[id] = true
	}
	if len(expectedSet) != len(actualSet) {
		return scheduleerr.ValidationFailed("schedule", "", "physician-list-matches-registry",
			"schedule physician list does not match the active staff registry")
	}
	for id := range expectedSet {
		if !actualSet[id] {
			return scheduleerr.ValidationFailed("schedule", "", "physician-list-matches-registry",
				"physician "+id+" is active in the registry but missing from the schedule")
		}
	}

	for _, d := range s.Days {
		if d.Kind != Workday {
			continue
		}

		working := map[string]bool{}
		for _, p := range d.Working() {
			if working[p] {
				return scheduleerr.ValidationFailed("schedule", d.Date, "no-duplicate-working",
					"physician "+p+" appears twice in the working set")
			}
			working[p] = true
		}

		offsite := map[string]bool{}
		for _, p := range d.Offsite {
			if offsite[p] {
				return scheduleerr.ValidationFailed("schedule", d.Date, "no-duplicate-offsite",
					"physician "+p+" appears twice in the off-site set")
			}
			offsite[p] = true
			if working[p] {
				return scheduleerr.ValidationFailed("schedule", d.Date, "working-offsite-disjoint",
					"physician "+p+" is both working and off-site")
			}
		}

		if len(d.PotentialCharge) == 0 {
			return scheduleerr.ValidationFailed("schedule", d.Date, "potential-charge-nonempty",
				"no eligible charge physician")
		}
		if len(d.PotentialCardiac) == 0 {
			return scheduleerr.ValidationFailed("schedule", d.Date, "potential-cardiac-nonempty",
				"no eligible cardiac physician")
		}
		union := map[string]bool{}
		for _, p := range d.PotentialCharge {
			union[p] = true
		}
		for _, p := range d.PotentialCardiac {
			union[p] = true
		}
		if len(union) < 2 {
			return scheduleerr.ValidationFailed("schedule", d.Date, "potential-union-min-2",
				"potential charge/cardiac union has fewer than 2 physicians")
		}

		adminSet := map[string]bool{}
		for _, p := range d.Admin {
			if p == staff.AdminIdentifier {
				continue
			}
			adminSet[p] = true
			if working[p] {
				return scheduleerr.ValidationFailed("schedule", d.Date, "admin-unassigned-disjoint",
					"physician "+p+" is both admin and Unassigned")
			}
		}
	}

	return nil
}
