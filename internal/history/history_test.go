package history

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anescall/callsched/internal/model"
	"github.com/anescall/callsched/internal/optimize"
	"github.com/anescall/callsched/internal/staff"
)

func ptr(s string) *string { return &s }

func testRegistry(t *testing.T) *staff.Registry {
	t.Helper()
	csv := `id,cardiac,charge,name,aliases,start,end
A,TRUE,TRUE,Alpha,,2020-01-01,
B,TRUE,TRUE,Bravo,,2020-01-01,
C,FALSE,TRUE,Charlie,,2020-01-01,
D,TRUE,FALSE,Delta,,2020-01-01,
`
	path := filepath.Join(t.TempDir(), "staff.csv")
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o644))
	reg, err := staff.Load(path)
	require.NoError(t, err)
	return reg
}

func testSchedule(t *testing.T) (*model.Schedule, *optimize.Result) {
	t.Helper()
	reg := testRegistry(t)
	derived := &model.DerivedSchedule{
		Order:       []string{"2024-03-04"},
		Day:         []model.DayKind{model.Workday},
		OnCall:      []*string{ptr("A")},
		OnLate:      []*string{ptr("B")},
		PostCall:    []*string{nil},
		PostHoliday: []*string{nil},
		PostLate:    []*string{nil},
		PreCall:     []*string{nil},
		PreHoliday:  []*string{nil},
		Admin:       [][]string{nil},
		Offsite:     [][]string{nil},
		Unassigned:  [][]string{{"C", "D"}},
		Doctors:     []string{"A", "B", "C", "D"},
		Period:      model.Period{Start: "2024-03-04", End: "2024-03-04"},
	}
	sched, err := model.FromDerived(derived, reg)
	require.NoError(t, err)

	result := &optimize.Result{
		Status: optimize.StatusOptimal,
		Days: []optimize.DayAssignment{
			{Date: "2024-03-04", Peel: map[string]int{"C": 1, "D": 2}, Charge: "A", Cardiac: "B"},
		},
	}
	return sched, result
}

func TestRecordWeekAndWorkedWithCount(t *testing.T) {
	sched, result := testSchedule(t)

	store, err := Open(filepath.Join(t.TempDir(), "history.kuzu"))
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.RecordWeek(sched, result))

	t.Run("every working pair is recorded exactly once", func(t *testing.T) {
		count, err := store.WorkedWithCount("A", "B")
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("recording the same week again does not double the edge", func(t *testing.T) {
		require.NoError(t, store.RecordWeek(sched, result))
		count, err := store.WorkedWithCount("A", "B")
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("unrelated pairs have no recorded relationship", func(t *testing.T) {
		count, err := store.WorkedWithCount("A", "Z")
		require.NoError(t, err)
		assert.Equal(t, 0, count)
	})
}
