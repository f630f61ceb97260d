package model

// Period is the inclusive calendar range a derived week covers.
type Period struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// DerivedSchedule is the output of the Shift Deriver (C4): the transposed,
// per-field parallel-array form of a week's transition roles, admin slots,
// off-site set, and Unassigned pool, ordered by date.
type DerivedSchedule struct {
	Order       []string  `json:"Order"`
	Day         []DayKind `json:"Day"`
	OnCall      []*string `json:"OnCall"`
	OnLate      []*string `json:"OnLate"`
	PostCall    []*string `json:"Post-Call"`
	PostHoliday []*string `json:"Post-Holiday"`
	PostLate    []*string `json:"Post-Late"`
	PreCall     []*string `json:"Pre-Call"`
	PreHoliday  []*string `json:"Pre-Holiday"`
	Admin       [][]string `json:"Admin"`
	Offsite     [][]string `json:"Offsite"`
	Unassigned  [][]string `json:"Unassigned"`
	Doctors     []string  `json:"Doctors"`
	Period      Period    `json:"Period"`
}

// NumDays returns the number of calendar days in the derived week.
func (d *DerivedSchedule) NumDays() int { return len(d.Order) }
