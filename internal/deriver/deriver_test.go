package deriver

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anescall/callsched/internal/calendar"
	"github.com/anescall/callsched/internal/model"
	"github.com/anescall/callsched/internal/staff"
)

// buildFlatWeek constructs a FlatWeek where every weekday (Mon-Fri) carries
// a single Call record, and Saturday/Sunday carry identical AM/PM records,
// from a day-abbreviation -> (onCall, onLate) map.
func buildFlatWeek(days map[string][2]string) model.FlatWeek {
	out := model.FlatWeek{}
	for _, abbr := range []string{"Mon", "Tue", "Wed", "Thu", "Fri"} {
		pair := days[abbr]
		out[abbr] = model.DayRecord{Call: model.Call{First: pair[0], Second: pair[1]}}
	}
	for _, abbr := range []string{"Sat", "Sun"} {
		pair := days[abbr]
		rec := model.DayRecord{Call: model.Call{First: pair[0], Second: pair[1]}}
		out[abbr+" AM"] = rec
		out[abbr+" PM"] = rec
	}
	return out
}

func testRegistry(t *testing.T) *staff.Registry {
	t.Helper()
	csv := `id,cardiac,charge,name,aliases,start,end
A,FALSE,FALSE,A,,2020-01-01,
B,FALSE,FALSE,B,,2020-01-01,
C,FALSE,FALSE,C,,2020-01-01,
D,FALSE,FALSE,D,,2020-01-01,
E,FALSE,FALSE,E,,2020-01-01,
F,FALSE,FALSE,F,,2020-01-01,
P,FALSE,FALSE,P,,2020-01-01,
Q,FALSE,FALSE,Q,,2020-01-01,
`
	path := filepath.Join(t.TempDir(), "staff.csv")
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o644))
	reg, err := staff.Load(path)
	require.NoError(t, err)
	return reg
}

func TestDeriveWeekTransitionRoles(t *testing.T) {
	reg := testRegistry(t)
	cal := calendar.New()

	prev := buildFlatWeek(map[string][2]string{
		"Mon": {"P", "Q"}, "Tue": {"P", "Q"}, "Wed": {"P", "Q"}, "Thu": {"P", "Q"}, "Fri": {"P", "Q"},
		"Sat": {"P", "Q"}, "Sun": {"P", "Q"},
	})
	current := buildFlatWeek(map[string][2]string{
		"Mon": {"C", "D"}, "Tue": {"A", "B"}, "Wed": {"E", "F"}, "Thu": {"P", "Q"}, "Fri": {"P", "Q"},
		"Sat": {"P", "Q"}, "Sun": {"P", "Q"},
	})
	next := buildFlatWeek(map[string][2]string{
		"Mon": {"P", "Q"}, "Tue": {"P", "Q"}, "Wed": {"P", "Q"}, "Thu": {"P", "Q"}, "Fri": {"P", "Q"},
		"Sat": {"P", "Q"}, "Sun": {"P", "Q"},
	})

	start := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)  // Monday
	end := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)   // Sunday

	derived, err := DeriveWeek(prev, current, next, start, end, cal, reg, nil)
	require.NoError(t, err)

	require.Len(t, derived.Order, 7)
	tueIdx := indexOf(derived.Order, "2024-03-05")
	require.GreaterOrEqual(t, tueIdx, 0)

	t.Run("Tuesday picks up Monday's call pair as Post-Call/Post-Late", func(t *testing.T) {
		assert.Equal(t, "C", strVal(derived.PostCall[tueIdx]))
		assert.Equal(t, "D", strVal(derived.PostLate[tueIdx]))
		assert.Equal(t, "", strVal(derived.PostHoliday[tueIdx]))
	})

	t.Run("Tuesday picks up Wednesday's on-call as Pre-Call", func(t *testing.T) {
		assert.Equal(t, "E", strVal(derived.PreCall[tueIdx]))
		assert.Equal(t, "", strVal(derived.PreHoliday[tueIdx]))
	})

	t.Run("Tuesday's own on-call/on-late are preserved", func(t *testing.T) {
		assert.Equal(t, "A", strVal(derived.OnCall[tueIdx]))
		assert.Equal(t, "B", strVal(derived.OnLate[tueIdx]))
	})

	t.Run("Tuesday's Unassigned pool excludes everyone already placed", func(t *testing.T) {
		assert.ElementsMatch(t, []string{"F", "P", "Q"}, derived.Unassigned[tueIdx])
	})

	t.Run("weekend days carry no transition roles", func(t *testing.T) {
		satIdx := indexOf(derived.Order, "2024-03-09")
		require.GreaterOrEqual(t, satIdx, 0)
		assert.Equal(t, model.Weekend, derived.Day[satIdx])
		assert.Nil(t, derived.PostCall[satIdx])
		assert.Nil(t, derived.Unassigned[satIdx])
	})
}

func TestDeriveWeekRejectsOnLateIntoOnCall(t *testing.T) {
	reg := testRegistry(t)
	cal := calendar.New()

	prev := buildFlatWeek(map[string][2]string{
		"Mon": {"P", "Q"}, "Tue": {"P", "Q"}, "Wed": {"P", "Q"}, "Thu": {"P", "Q"}, "Fri": {"P", "Q"},
		"Sat": {"P", "Q"}, "Sun": {"P", "Q"},
	})
	// Tuesday's on-late (B) is Wednesday's on-call: a 2021-Week29-style collision.
	current := buildFlatWeek(map[string][2]string{
		"Mon": {"C", "D"}, "Tue": {"A", "B"}, "Wed": {"B", "F"}, "Thu": {"P", "Q"}, "Fri": {"P", "Q"},
		"Sat": {"P", "Q"}, "Sun": {"P", "Q"},
	})
	next := buildFlatWeek(map[string][2]string{
		"Mon": {"P", "Q"}, "Tue": {"P", "Q"}, "Wed": {"P", "Q"}, "Thu": {"P", "Q"}, "Fri": {"P", "Q"},
		"Sat": {"P", "Q"}, "Sun": {"P", "Q"},
	})

	start := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	_, err := DeriveWeek(prev, current, next, start, end, cal, reg, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no-on-late-then-on-call")
}

func TestDeriveWeekFiltersOnCallFromOffsite(t *testing.T) {
	reg := testRegistry(t)
	cal := calendar.New()

	prev := buildFlatWeek(map[string][2]string{
		"Mon": {"P", "Q"}, "Tue": {"P", "Q"}, "Wed": {"P", "Q"}, "Thu": {"P", "Q"}, "Fri": {"P", "Q"},
		"Sat": {"P", "Q"}, "Sun": {"P", "Q"},
	})
	current := buildFlatWeek(map[string][2]string{
		"Mon": {"C", "D"}, "Tue": {"A", "B"}, "Wed": {"E", "F"}, "Thu": {"P", "Q"}, "Fri": {"P", "Q"},
		"Sat": {"P", "Q"}, "Sun": {"P", "Q"},
	})
	next := buildFlatWeek(map[string][2]string{
		"Mon": {"P", "Q"}, "Tue": {"P", "Q"}, "Wed": {"P", "Q"}, "Thu": {"P", "Q"}, "Fri": {"P", "Q"},
		"Sat": {"P", "Q"}, "Sun": {"P", "Q"},
	})
	// Monday's record erroneously lists its own on-call (C) and on-late (D)
	// as off-site, alongside a genuinely off-site physician (F).
	monRec := current["Mon"]
	monRec.Offsite = []string{"C", "D", "F"}
	current["Mon"] = monRec

	start := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	derived, err := DeriveWeek(prev, current, next, start, end, cal, reg, nil)
	require.NoError(t, err)

	monIdx := indexOf(derived.Order, "2024-03-04")
	require.GreaterOrEqual(t, monIdx, 0)
	assert.Equal(t, []string{"F"}, derived.Offsite[monIdx])
}

func strVal(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func indexOf(s []string, v string) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return -1
}
