// Package weeksplit implements the Week Splitter (C3): decomposing a
// multi-month quarterly input into ISO-8601 week buckets, and the
// corresponding round-trip recombination used to verify the split was
// lossless. Grounded on original_source's
// data/quarterly_json_week_splitter.py.
package weeksplit

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/anescall/callsched/internal/model"
	"github.com/anescall/callsched/internal/scheduleerr"
)

var monthNumbers = map[string]int{
	"Jan": 1, "Feb": 2, "Mar": 3, "Apr": 4,
	"May": 5, "Jun": 6, "Jul": 7, "Aug": 8,
	"Sep": 9, "Oct": 10, "Nov": 11, "Dec": 12,
}

var monthNames = func() map[int]string {
	out := map[int]string{}
	for k, v := range monthNumbers {
		out[v] = k
	}
	return out
}()

// WeeklyBucket maps an ISO week key ("YYYY-weekNN") to the per-date day
// records that fall inside it.
type WeeklyBucket map[string]map[string]model.QuarterDay

// Split partitions a QuarterInput into ISO-8601 week buckets.
func Split(data model.QuarterInput) (WeeklyBucket, error) {
	out := WeeklyBucket{}

	years := sortedKeys(data)
	for _, year := range years {
		months := sortedKeys(data[year])
		for _, month := range months {
			monthNum, ok := monthNumbers[month]
			if !ok {
				return nil, scheduleerr.InputMalformed("weeksplit", fmt.Sprintf("unrecognized month name %q", month))
			}
			days := sortedKeys(data[year][month])
			for _, day := range days {
				yearNum, err := strconv.Atoi(year)
				if err != nil {
					return nil, scheduleerr.InputMalformed("weeksplit", fmt.Sprintf("malformed year %q", year))
				}
				dayNum, err := strconv.Atoi(day)
				if err != nil {
					return nil, scheduleerr.InputMalformed("weeksplit", fmt.Sprintf("malformed day %q", day))
				}
				date := time.Date(yearNum, time.Month(monthNum), dayNum, 0, 0, 0, 0, time.UTC)
				isoYear, isoWeek := date.ISOWeek()
				weekKey := fmt.Sprintf("%d-week%02d", isoYear, isoWeek)
				dateKey := date.Format("2006-01-02")

				if out[weekKey] == nil {
					out[weekKey] = map[string]model.QuarterDay{}
				}
				out[weekKey][dateKey] = data[year][month][day]
			}
		}
	}

	return out, nil
}

// PartialSuffix is appended to a week bucket's output filename when that
// week's bucket doesn't cover all 7 calendar dates of its ISO week (the
// quarterly input's first and/or last week, clipped at a month boundary).
const PartialSuffix = "-partial"

// Filenames returns the sorted week keys from a split, each suffixed with
// PartialSuffix when that specific week's bucket is missing one or more of
// its ISO week's 7 calendar dates.
func Filenames(buckets WeeklyBucket) []string {
	keys := sortedKeys(buckets)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		name := k
		if !isFullWeek(k, buckets[k]) {
			name += PartialSuffix
		}
		out = append(out, name)
	}
	return out
}

// isFullWeek reports whether week (keyed by date) contains all 7 calendar
// dates of the ISO week named by weekKey ("YYYY-weekNN").
func isFullWeek(weekKey string, week map[string]model.QuarterDay) bool {
	var isoYear, isoWeek int
	if _, err := fmt.Sscanf(weekKey, "%d-week%d", &isoYear, &isoWeek); err != nil {
		return false
	}
	monday := isoWeekMonday(isoYear, isoWeek)
	for i := 0; i < 7; i++ {
		if _, ok := week[monday.AddDate(0, 0, i).Format("2006-01-02")]; !ok {
			return false
		}
	}
	return true
}

// isoWeekMonday returns the Monday that starts ISO week isoWeek of isoYear.
// ISO week 1 is the week containing January 4th.
func isoWeekMonday(isoYear, isoWeek int) time.Time {
	jan4 := time.Date(isoYear, 1, 4, 0, 0, 0, 0, time.UTC)
	isoWeekday := int(jan4.Weekday())
	if isoWeekday == 0 {
		isoWeekday = 7
	}
	week1Monday := jan4.AddDate(0, 0, -(isoWeekday - 1))
	return week1Monday.AddDate(0, 0, (isoWeek-1)*7)
}

// Combine recombines a set of weekly buckets back into a QuarterInput, the
// inverse of Split.
func Combine(buckets WeeklyBucket) (model.QuarterInput, error) {
	out := model.QuarterInput{}
	for _, week := range buckets {
		for dateKey, day := range week {
			date, err := time.Parse("2006-01-02", dateKey)
			if err != nil {
				return nil, scheduleerr.InputMalformed("weeksplit", fmt.Sprintf("malformed date key %q", dateKey))
			}
			year := strconv.Itoa(date.Year())
			month := monthNames[int(date.Month())]
			dayStr := strconv.Itoa(date.Day())

			if out[year] == nil {
				out[year] = map[string]map[string]model.QuarterDay{}
			}
			if out[year][month] == nil {
				out[year][month] = map[string]model.QuarterDay{}
			}
			out[year][month][dayStr] = day
		}
	}
	return out, nil
}

// Flatten collapses a QuarterInput to date-key -> day record, used by
// VerifyRoundTrip to compare the split-then-combined result against the
// original input.
func Flatten(data model.QuarterInput) map[string]model.QuarterDay {
	out := map[string]model.QuarterDay{}
	for year, months := range data {
		for month, days := range months {
			monthNum := monthNumbers[month]
			for day, rec := range days {
				dayNum, err := strconv.Atoi(day)
				if err != nil {
					continue
				}
				key := fmt.Sprintf("%s-%02d-%02d", year, monthNum, dayNum)
				out[key] = rec
			}
		}
	}
	return out
}

// VerifyRoundTrip asserts that flattening Combine(Split(data)) reproduces
// Flatten(data), per the round-trip property every split run checks: the
// same dates, and per date the same shift keys with equal Call, Admin and
// Requests values and the same Offsite members (order ignored). Day
// records hold no floating-point fields, so there is no NaN case.
func VerifyRoundTrip(original model.QuarterInput, buckets WeeklyBucket) error {
	combined, err := Combine(buckets)
	if err != nil {
		return err
	}

	want := Flatten(original)
	got := Flatten(combined)

	if len(want) != len(got) {
		return scheduleerr.ValidationFailed("weeksplit", "", "round-trip",
			fmt.Sprintf("combined data has %d dates, original has %d", len(got), len(want)))
	}
	for date, rec := range want {
		gotRec, ok := got[date]
		if !ok {
			return scheduleerr.ValidationFailed("weeksplit", date, "round-trip",
				"date present in original but missing after split/combine")
		}
		if !dayRecordsEqual(rec, gotRec) {
			return scheduleerr.ValidationFailed("weeksplit", date, "round-trip",
				"day record changed across split/combine")
		}
	}
	return nil
}

func dayRecordsEqual(a, b model.QuarterDay) bool {
	if len(a) != len(b) {
		return false
	}
	for shiftKey, recA := range a {
		recB, ok := b[shiftKey]
		if !ok {
			return false
		}
		if recA.Call != recB.Call || recA.Requests != recB.Requests {
			return false
		}
		if recA.Admin != recB.Admin {
			return false
		}
		if !stringSliceEqual(recA.Offsite, recB.Offsite) {
			return false
		}
	}
	return true
}

func stringSliceEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	am := map[string]int{}
	for _, v := range a {
		am[v]++
	}
	for _, v := range b {
		am[v]--
	}
	for _, c := range am {
		if c != 0 {
			return false
		}
	}
	return true
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
