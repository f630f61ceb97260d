// Package deriver implements the Shift Deriver (C4): given three adjacent
// flattened weekly snapshots (previous, current, next), it derives each
// workday's transition roles, admin slots, off-site set, and Unassigned
// pool for the current week. Grounded on original_source's
// data/derive_shifts_from_schedule.py, with the OnLate-side PreHoliday role
// and offsite/on-call-collision tie-breakers the spec adds beyond it.
package deriver

import (
	"fmt"
	"sort"
	"time"

	"github.com/anescall/callsched/internal/calendar"
	"github.com/anescall/callsched/internal/model"
	"github.com/anescall/callsched/internal/scheduleerr"
	"github.com/anescall/callsched/internal/staff"
	"github.com/anescall/callsched/pkg/logger"
)

var weekdayAbbrev = [...]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// dayValues holds the shift value(s) available for one calendar date: a
// single record for workdays, or an AM/PM pair for weekend/holiday dates.
type dayValues struct {
	am, pm model.DayRecord
}

func (v dayValues) onCall() string { return v.pm.Call.First }
func (v dayValues) onLate() string { return v.pm.Call.Second }

// window is the Go analogue of WeeklySchedule: a date range classified
// into workday/weekend buckets with lookup helpers.
type window struct {
	dates []time.Time
	kind  map[string]model.DayKind
	rec   map[string]dayValues
}

func buildWindow(flat model.FlatWeek, start, end time.Time, cal *calendar.Calendar, log logger.Logger) (*window, error) {
	w := &window{kind: map[string]model.DayKind{}, rec: map[string]dayValues{}}

	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		key := d.Format("2006-01-02")
		workday, _ := cal.IsWorkday(d)
		abbr := weekdayAbbrev[int(d.Weekday())]

		if workday {
			single, ok := flat[abbr]
			if !ok {
				return nil, scheduleerr.InputMalformed("deriver", fmt.Sprintf("missing shift record %q for workday %s", abbr, key))
			}
			w.kind[key] = model.Workday
			w.rec[key] = dayValues{am: single, pm: single}
		} else {
			am, amOK := flat[abbr+" AM"]
			pm, pmOK := flat[abbr+" PM"]
			switch {
			case amOK && pmOK:
				w.kind[key] = model.Weekend
				w.rec[key] = dayValues{am: am, pm: pm}
			case amOK != pmOK:
				single := am
				if pmOK {
					single = pm
				}
				if log != nil {
					log.Warn("single shift record on weekend/holiday day, treating AM and PM as equal", "date", key)
				}
				w.kind[key] = model.Weekend
				w.rec[key] = dayValues{am: single, pm: single}
			default:
				if single, ok := flat[abbr]; ok {
					if log != nil {
						log.Warn("single shift record on weekend/holiday day, treating AM and PM as equal", "date", key)
					}
					w.kind[key] = model.Weekend
					w.rec[key] = dayValues{am: single, pm: single}
				} else {
					return nil, scheduleerr.InputMalformed("deriver", fmt.Sprintf("missing shift record for weekend/holiday day %s", key))
				}
			}
		}
		w.dates = append(w.dates, d)
	}

	return w, nil
}

func (w *window) nextOfKind(given time.Time, kind model.DayKind) (time.Time, dayValues, bool) {
	for _, d := range w.dates {
		if d.After(given) && w.kind[d.Format("2006-01-02")] == kind {
			return d, w.rec[d.Format("2006-01-02")], true
		}
	}
	return time.Time{}, dayValues{}, false
}

func (w *window) prevOfKind(given time.Time, kind model.DayKind) (time.Time, dayValues, bool) {
	for i := len(w.dates) - 1; i >= 0; i-- {
		d := w.dates[i]
		if d.Before(given) && w.kind[d.Format("2006-01-02")] == kind {
			return d, w.rec[d.Format("2006-01-02")], true
		}
	}
	return time.Time{}, dayValues{}, false
}

// searchNext looks for the next day of kind, current window first, then
// the adjacent window, reporting whether the found date is exactly
// given+1 day.
func searchNext(given time.Time, this, adjacent *window, kind model.DayKind) (dayValues, bool, error) {
	if d, v, ok := this.nextOfKind(given, kind); ok {
		return v, d.Equal(given.AddDate(0, 0, 1)), nil
	}
	if d, v, ok := adjacent.nextOfKind(given, kind); ok {
		return v, d.Equal(given.AddDate(0, 0, 1)), nil
	}
	return dayValues{}, false, scheduleerr.InputMalformed("deriver", fmt.Sprintf("no %s day found after %s", kind, given.Format("2006-01-02")))
}

func searchPrev(given time.Time, this, adjacent *window, kind model.DayKind) (dayValues, bool, error) {
	if d, v, ok := this.prevOfKind(given, kind); ok {
		return v, d.Equal(given.AddDate(0, 0, -1)), nil
	}
	if d, v, ok := adjacent.prevOfKind(given, kind); ok {
		return v, d.Equal(given.AddDate(0, 0, -1)), nil
	}
	return dayValues{}, false, scheduleerr.InputMalformed("deriver", fmt.Sprintf("no %s day found before %s", kind, given.Format("2006-01-02")))
}

// DeriveWeek derives the Derived Weekly Schedule for [start, end] (inclusive,
// must span exactly 7 days) from three flattened weekly snapshots.
func DeriveWeek(prev, current, next model.FlatWeek, start, end time.Time, cal *calendar.Calendar, reg *staff.Registry, log logger.Logger) (*model.DerivedSchedule, error) {
	if end.Sub(start) != 6*24*time.Hour {
		return nil, scheduleerr.InputMalformed("deriver", "current week range must span exactly 7 days")
	}

	curWin, err := buildWindow(current, start, end, cal, log)
	if err != nil {
		return nil, err
	}
	prevWin, err := buildWindow(prev, start.AddDate(0, 0, -7), start.AddDate(0, 0, -1), cal, log)
	if err != nil {
		return nil, err
	}
	nextWin, err := buildWindow(next, end.AddDate(0, 0, 1), end.AddDate(0, 0, 7), cal, log)
	if err != nil {
		return nil, err
	}

	out := &model.DerivedSchedule{
		Period: model.Period{Start: start.Format("2006-01-02"), End: end.Format("2006-01-02")},
	}

	everyone := reg.Everyone(start, end)
	out.Doctors = everyone

	for _, date := range curWin.dates {
		key := date.Format("2006-01-02")
		kind := curWin.kind[key]
		vals := curWin.rec[key]

		out.Order = append(out.Order, key)
		out.Day = append(out.Day, kind)

		onCall := vals.onCall()
		onLate := vals.onLate()
		out.OnCall = append(out.OnCall, strPtr(onCall))
		out.OnLate = append(out.OnLate, strPtr(onLate))

		var admin []string
		if vals.pm.Admin > 0 {
			for i := 0; i < vals.pm.Admin; i++ {
				admin = append(admin, staff.AdminIdentifier)
			}
		}
		out.Admin = append(out.Admin, admin)

		var offsite []string
		for _, phys := range vals.pm.Offsite {
			if phys == onCall || phys == onLate {
				continue
			}
			offsite = append(offsite, phys)
		}
		out.Offsite = append(out.Offsite, offsite)

		if kind == model.Weekend {
			out.PostCall = append(out.PostCall, nil)
			out.PostHoliday = append(out.PostHoliday, nil)
			out.PostLate = append(out.PostLate, nil)
			out.PreCall = append(out.PreCall, nil)
			out.PreHoliday = append(out.PreHoliday, nil)
			out.Unassigned = append(out.Unassigned, nil)
			continue
		}

		nextWeekday, nextIsTomorrow, err := searchNext(date, curWin, nextWin, model.Workday)
		if err != nil {
			return nil, err
		}
		prevWeekday, prevIsYesterday, err := searchPrev(date, curWin, prevWin, model.Workday)
		if err != nil {
			return nil, err
		}

		if onLate != "" && onLate == nextWeekday.onCall() {
			return nil, scheduleerr.ValidationFailed("deriver", key, "no-on-late-then-on-call",
				fmt.Sprintf("physician %s is on-late on %s and on-call on the next workday", onLate, key))
		}

		var preCall, preHoliday string
		if nextIsTomorrow {
			preCall = nextWeekday.onCall()
		} else {
			nextWeekend, _, err := searchNext(date, curWin, nextWin, model.Weekend)
			if err != nil {
				return nil, err
			}
			preCall = nextWeekend.am.Call.First
			preHoliday = nextWeekend.am.Call.Second
		}

		var postCall, postLate, postHoliday string
		if prevIsYesterday {
			postCall = prevWeekday.onCall()
			postLate = prevWeekday.onLate()
		} else {
			prevWeekend, _, err := searchPrev(date, curWin, prevWin, model.Weekend)
			if err != nil {
				return nil, err
			}
			postCall = prevWeekend.pm.Call.First
			postLate = prevWeekend.pm.Call.Second
			postHoliday = prevWeekend.am.Call.First
			if postHoliday != "" && (postHoliday == postCall || postHoliday == postLate) {
				postHoliday = ""
			}
		}

		if postLate != "" && postLate == preCall {
			preCall = ""
		}
		if preCall != "" && (preCall == postCall || preCall == postLate || preCall == postHoliday) {
			preCall = ""
		}

		offsiteSet := map[string]bool{}
		for _, o := range offsite {
			offsiteSet[o] = true
		}
		drop := func(v string) string {
			if v == "" {
				return v
			}
			if offsiteSet[v] {
				return ""
			}
			if v == onCall || v == onLate {
				return ""
			}
			return v
		}
		postCall = drop(postCall)
		postLate = drop(postLate)
		postHoliday = drop(postHoliday)
		preCall = drop(preCall)
		preHoliday = drop(preHoliday)

		out.PostCall = append(out.PostCall, strPtr(postCall))
		out.PostLate = append(out.PostLate, strPtr(postLate))
		out.PostHoliday = append(out.PostHoliday, strPtr(postHoliday))
		out.PreCall = append(out.PreCall, strPtr(preCall))
		out.PreHoliday = append(out.PreHoliday, strPtr(preHoliday))

		assigned := map[string]bool{onCall: true, onLate: true}
		for _, v := range []string{postCall, postLate, postHoliday, preCall, preHoliday} {
			if v != "" {
				assigned[v] = true
			}
		}
		for _, o := range offsite {
			assigned[o] = true
		}
		for range admin {
			assigned[staff.AdminIdentifier] = true
		}
		delete(assigned, "")

		var unassigned []string
		for _, id := range everyone {
			if !assigned[id] {
				unassigned = append(unassigned, id)
			}
		}
		sort.Strings(unassigned)
		out.Unassigned = append(out.Unassigned, unassigned)
	}

	return out, nil
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
