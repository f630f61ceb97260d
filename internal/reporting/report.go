// Package reporting implements the Reporting component (C8): rendering a
// solved Schedule as a human-readable peel table and per-physician
// summary, and persisting it as a structured JSON document. Grounded on
// original_source's doctor_schedule.py print_schedule/print_doctors
// (ANSI blue=charge, red=cardiac, purple=both), re-expressed with
// olekukonko/tablewriter and fatih/color.
package reporting

import (
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/anescall/callsched/internal/model"
	"github.com/anescall/callsched/internal/optimize"
	"github.com/anescall/callsched/internal/staff"
)

// physicianColor returns the ANSI-coded display string for a physician
// identifier, colored by role capability: blue for charge-capable, red for
// cardiac-capable, purple for both, uncolored otherwise.
func physicianColor(reg *staff.Registry, id string, enabled bool) string {
	if !enabled || id == "" {
		return id
	}
	p, ok := reg.Get(id)
	if !ok {
		return id
	}
	switch {
	case p.CanBeCharge && p.CanBeCardiac:
		return color.New(color.FgMagenta).Sprint(id)
	case p.CanBeCharge:
		return color.New(color.FgBlue).Sprint(id)
	case p.CanBeCardiac:
		return color.New(color.FgRed).Sprint(id)
	default:
		return id
	}
}

// PeelTable writes the day-by-day peel table: one row per TURN_ORDER label
// (the Unassigned group shown as its solved "Assigned" row) plus Charge and
// Cardiac rows, and one column per day. Peel-role cells show the physician
// followed by its peel position in parentheses; Admin, Charge and Cardiac
// cells show physicians only.
func PeelTable(w io.Writer, s *model.Schedule, result *optimize.Result, reg *staff.Registry, colorize bool) {
	peelByDate := map[string]optimize.DayAssignment{}
	for _, da := range result.Days {
		peelByDate[da.Date] = da
	}

	header := []string{"Role"}
	for _, d := range s.Days {
		header = append(header, d.Date)
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)

	addRow := func(label string, cellFor func(d *model.Day) string) {
		row := []string{label}
		for _, d := range s.Days {
			row = append(row, cellFor(d))
		}
		table.Append(row)
	}

	for _, label := range model.TurnOrder {
		switch label {
		case model.LabelUnassigned:
			addRow("Assigned", func(d *model.Day) string {
				da, ok := peelByDate[d.Date]
				if !ok || d.Kind != model.Workday {
					return ""
				}
				names := make([]string, 0, len(da.Peel))
				for phys, pos := range da.Peel {
					names = append(names, fmt.Sprintf("%s(%d)", physicianColor(reg, phys, colorize), pos))
				}
				sort.Strings(names)
				return fmt.Sprintf("%v", names)
			})
		case model.LabelAdmin:
			addRow("Admin", func(d *model.Day) string {
				return fmt.Sprintf("%v", d.Admin)
			})
		default:
			addRow(string(label), func(d *model.Day) string {
				phys, ok := d.Transitions[label]
				if label == model.LabelOnCall {
					phys, ok = d.OnCall, d.OnCall != ""
				}
				if label == model.LabelOnLate {
					phys, ok = d.OnLate, d.OnLate != ""
				}
				if !ok || phys == "" {
					return ""
				}
				for pos, p := range d.Preassigned {
					if p == phys {
						return fmt.Sprintf("%s(%d)", physicianColor(reg, phys, colorize), pos)
					}
				}
				return physicianColor(reg, phys, colorize)
			})
		}
	}

	addRow("Charge", func(d *model.Day) string {
		return physicianColor(reg, peelByDate[d.Date].Charge, colorize)
	})
	addRow("Cardiac", func(d *model.Day) string {
		return physicianColor(reg, peelByDate[d.Date].Cardiac, colorize)
	})

	table.Render()
}

// physicianSummary is one row of the per-physician summary.
type physicianSummary struct {
	Physician       string
	PreassignedPts  int
	TotalPts        int
	Delta           float64
	ChargeDays      int
	CardiacDays     int
}

// Summary writes the per-physician summary table: pre-assigned points,
// total points, delta from the target mean, charge/cardiac day counts,
// followed by aggregate average/median/min/max and a histogram of |delta|
// bands 0, 1, 2, >=3.
func Summary(w io.Writer, s *model.Schedule, result *optimize.Result) {
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

	totals := map[string]int{}
	for a, v := range fixed {
		totals[a] = v
	}
	chargeDays := map[string]int{}
	cardiacDays := map[string]int{}
	for _, da := range result.Days {
		for phys, pos := range da.Peel {
			totals[phys] += pos
		}
		if da.Charge != "" {
			chargeDays[da.Charge]++
		}
		if da.Cardiac != "" {
			cardiacDays[da.Cardiac]++
		}
	}

	var rows []physicianSummary
	for _, phys := range s.Doctors {
		if phys == staff.Placeholder {
			continue
		}
		total, ok := totals[phys]
		if !ok {
			continue
		}
		rows = append(rows, physicianSummary{
			Physician:      phys,
			PreassignedPts: fixed[phys],
			TotalPts:       total,
			Delta:          float64(total) - result.Mu,
			ChargeDays:     chargeDays[phys],
			CardiacDays:    cardiacDays[phys],
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Physician < rows[j].Physician })

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Physician", "Preassigned", "Total", "Delta", "Charge Days", "Cardiac Days"})
	for _, r := range rows {
		table.Append([]string{
			r.Physician,
			fmt.Sprintf("%d", r.PreassignedPts),
			fmt.Sprintf("%d", r.TotalPts),
			fmt.Sprintf("%.2f", r.Delta),
			fmt.Sprintf("%d", r.ChargeDays),
			fmt.Sprintf("%d", r.CardiacDays),
		})
	}
	table.Render()

	if len(rows) == 0 {
		return
	}

	totalsOnly := make([]float64, len(rows))
	for i, r := range rows {
		totalsOnly[i] = float64(r.TotalPts)
	}
	sort.Float64s(totalsOnly)

	avg, median, min, max := aggregate(totalsOnly)
	histogram := map[string]int{"0": 0, "1": 0, "2": 0, ">=3": 0}
	for _, r := range rows {
		d := math.Abs(r.Delta)
		switch {
		case d < 0.5:
			histogram["0"]++
		case d < 1.5:
			histogram["1"]++
		case d < 2.5:
			histogram["2"]++
		default:
			histogram[">=3"]++
		}
	}

	fmt.Fprintf(w, "\naverage=%.2f median=%.2f min=%.2f max=%.2f\n", avg, median, min, max)
	fmt.Fprintf(w, "|delta| histogram: 0=%d 1=%d 2=%d >=3=%d\n",
		histogram["0"], histogram["1"], histogram["2"], histogram[">=3"])
	fmt.Fprintf(w, "run %s: %s in %s (%d variables, %d constraints)\n",
		result.Telemetry.RunID, result.Status, result.Telemetry.Elapsed,
		result.Telemetry.NumVariables, result.Telemetry.NumConstraints)
}

func aggregate(sorted []float64) (avg, median, min, max float64) {
	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	avg = sum / float64(len(sorted))
	min = sorted[0]
	max = sorted[len(sorted)-1]
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		median = (sorted[mid-1] + sorted[mid]) / 2
	} else {
		median = sorted[mid]
	}
	return
}
