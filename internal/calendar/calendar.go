// Package calendar classifies calendar dates as workdays, weekends, or
// holidays. It implements the fixed US federal holiday algorithm (with
// observed long-weekend extensions) plus a custom holiday overlay read
// from a side file, per the specification's Calendar component.
package calendar

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"time"
)

// Holiday names recognized by the fixed algorithm.
const (
	NewYearsDay     = "New Year's Day"
	IndependenceDay = "Independence Day"
	Christmas       = "Christmas"
	MemorialDay     = "Memorial Day"
	LaborDay        = "Labor Day"
	Thanksgiving    = "Thanksgiving"
)

// Calendar answers workday/holiday questions for a range of dates. It loads
// its fixed holiday table lazily, per year, and is read-only once the
// custom overlay has been loaded: safe to share across a run.
type Calendar struct {
	custom map[string]string // "YYYY-MM-DD" -> label
}

// New returns a Calendar with no custom holidays.
func New() *Calendar {
	return &Calendar{custom: map[string]string{}}
}

// LoadCustomHolidays reads a CSV file of (date, label) rows and overlays
// them onto the fixed table. A custom entry for a date that is already a
// fixed holiday replaces its label.
func LoadCustomHolidays(path string) (*Calendar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open custom holidays file: %w", err)
	}
	defer f.Close()

	cal := New()
	r := csv.NewReader(f)
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read custom holidays file: %w", err)
		}
		if len(row) < 2 {
			continue
		}
		if _, err := time.Parse("2006-01-02", row[0]); err != nil {
			return nil, fmt.Errorf("custom holiday date %q: %w", row[0], err)
		}
		cal.custom[row[0]] = row[1]
	}
	return cal, nil
}

func dateKey(d time.Time) string { return d.Format("2006-01-02") }

func dateOnly(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

// nthWeekday returns the date of the nth occurrence of weekday in month m
// of year y. n must be >= 1.
func nthWeekday(y int, m time.Month, weekday time.Weekday, n int) time.Time {
	d := dateOnly(y, m, 1)
	offset := (int(weekday) - int(d.Weekday()) + 7) % 7
	d = d.AddDate(0, 0, offset+7*(n-1))
	return d
}

// lastWeekday returns the date of the last occurrence of weekday in month m
// of year y.
func lastWeekday(y int, m time.Month, weekday time.Weekday) time.Time {
	// first day of next month, minus one day, is the last day of m.
	next := dateOnly(y, m+1, 1)
	if m == time.December {
		next = dateOnly(y+1, time.January, 1)
	}
	last := next.AddDate(0, 0, -1)
	offset := (int(last.Weekday()) - int(weekday) + 7) % 7
	return last.AddDate(0, 0, -offset)
}

// fixedHolidaySpan returns the observed closure span for a fixed-date
// holiday landing on actual, following the Tue-Thu/Mon/Fri/Sat/Sun rule.
func fixedHolidaySpan(actual time.Time) []time.Time {
	switch actual.Weekday() {
	case time.Tuesday, time.Wednesday, time.Thursday:
		return []time.Time{actual}
	case time.Monday:
		return []time.Time{actual.AddDate(0, 0, -2), actual.AddDate(0, 0, -1), actual}
	case time.Friday:
		return []time.Time{actual, actual.AddDate(0, 0, 1), actual.AddDate(0, 0, 2)}
	case time.Saturday:
		return []time.Time{actual.AddDate(0, 0, -1), actual, actual.AddDate(0, 0, 1)}
	case time.Sunday:
		return []time.Time{actual.AddDate(0, 0, -1), actual, actual.AddDate(0, 0, 1)}
	}
	return []time.Time{actual}
}

// span3Ending returns a 3-day span [d-2, d-1, d] (Sat-Mon when d is Monday).
func span3Ending(d time.Time) []time.Time {
	return []time.Time{d.AddDate(0, 0, -2), d.AddDate(0, 0, -1), d}
}

// span4Starting returns a 4-day span [d, d+1, d+2, d+3] (Thu-Sun when d is Thursday).
func span4Starting(d time.Time) []time.Time {
	return []time.Time{d, d.AddDate(0, 0, 1), d.AddDate(0, 0, 2), d.AddDate(0, 0, 3)}
}

// fixedHolidaysForYear returns the set of (date -> label) entries
// contributed by the fixed algorithm for year y.
func fixedHolidaysForYear(y int) map[string]string {
	out := map[string]string{}
	add := func(label string, dates []time.Time) {
		for _, d := range dates {
			out[dateKey(d)] = label
		}
	}

	add(NewYearsDay, fixedHolidaySpan(dateOnly(y, time.January, 1)))
	add(IndependenceDay, fixedHolidaySpan(dateOnly(y, time.July, 4)))
	add(Christmas, fixedHolidaySpan(dateOnly(y, time.December, 25)))
	add(MemorialDay, span3Ending(lastWeekday(y, time.May, time.Monday)))
	add(LaborDay, span3Ending(nthWeekday(y, time.September, time.Monday, 1)))
	add(Thanksgiving, span4Starting(nthWeekday(y, time.November, time.Thursday, 4)))

	// The next New Year's Day observed span can reach back into December
	// of y (Jan 1 on a Monday pulls in the preceding Saturday/Sunday; on a
	// Saturday or Sunday it pulls in Dec 31). Pull that span in too so a
	// lookup for a late-December date of y finds it.
	add(NewYearsDay, fixedHolidaySpan(dateOnly(y+1, time.January, 1)))

	return out
}

// HolidayLabel returns the label covering d, if any (fixed or custom;
// custom takes precedence), and whether d is covered by any holiday span.
func (c *Calendar) HolidayLabel(d time.Time) (string, bool) {
	key := dateKey(d)
	if label, ok := c.custom[key]; ok {
		return label, true
	}
	fixed := fixedHolidaysForYear(d.Year())
	if label, ok := fixed[key]; ok {
		return label, true
	}
	return "", false
}

// HolidaysInYear returns every date in year y covered by a holiday span
// (fixed or custom), mapped to its label, for warehousing purposes.
func (c *Calendar) HolidaysInYear(y int) map[string]string {
	out := map[string]string{}
	yearPrefix := fmt.Sprintf("%04d-", y)
	for key, label := range fixedHolidaysForYear(y) {
		if len(key) > len(yearPrefix) && key[:len(yearPrefix)] == yearPrefix {
			out[key] = label
		}
	}
	for key, label := range c.custom {
		d, err := time.Parse("2006-01-02", key)
		if err != nil || d.Year() != y {
			continue
		}
		out[key] = label
	}
	return out
}

// IsWorkday reports whether d is a true workday: not a Saturday/Sunday and
// not within any holiday's extended observed span. When false, it also
// returns the responsible label ("Weekend" for a plain Sat/Sun with no
// holiday name).
func (c *Calendar) IsWorkday(d time.Time) (bool, string) {
	if label, ok := c.HolidayLabel(d); ok {
		return false, label
	}
	if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
		return false, "Weekend"
	}
	return true, ""
}
