package bnb

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

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

func oneWorkdayProgram(t *testing.T) (*model.Schedule, *optimize.Program) {
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
	require.NoError(t, sched.Validate())

	cfg := optimize.Config{Weights: optimize.DefaultWeights(), TimeLimit: time.Second}
	p, err := optimize.Build(sched, reg, cfg)
	require.NoError(t, err)
	return sched, p
}

func TestSolveProducesAFeasibleAssignment(t *testing.T) {
	sched, p := oneWorkdayProgram(t)

	result, err := New().Solve(context.Background(), p)
	require.NoError(t, err)

	t.Run("solves to optimal within the time limit", func(t *testing.T) {
		assert.Equal(t, optimize.StatusOptimal, result.Status)
	})

	t.Run("stamps a non-empty run id", func(t *testing.T) {
		assert.NotEmpty(t, result.Telemetry.RunID)
	})

	t.Run("both Unassigned physicians receive a peel position", func(t *testing.T) {
		require.Len(t, result.Days, 1)
		peel := result.Days[0].Peel
		assert.Contains(t, peel, "C")
		assert.Contains(t, peel, "D")
	})

	t.Run("charge and cardiac come from the eligible sets", func(t *testing.T) {
		day := sched.Days[0]
		assert.Contains(t, day.PotentialCharge, result.Days[0].Charge)
		assert.Contains(t, day.PotentialCardiac, result.Days[0].Cardiac)
	})

	t.Run("charge and cardiac are never the same physician", func(t *testing.T) {
		assert.NotEqual(t, result.Days[0].Charge, result.Days[0].Cardiac)
	})
}

func TestEvaluateMwzCoversCardiacOnlyElections(t *testing.T) {
	// D is never elected charge (chargeCount has no entry for it) but wins
	// cardiac on both days, so D's true w+z total (0+2=2) must still be
	// reflected in Mwz even though the old code only walked chargeCount's
	// keys and would have missed D entirely.
	plans := []*dayPlan{
		{
			day:     &model.Day{Date: "2024-03-04", OnCall: "A", OnLate: "B"},
			peel:    map[string]int{},
			charge:  "A",
			cardiac: "D",
		},
		{
			day:     &model.Day{Date: "2024-03-05", OnCall: "A", OnLate: "B"},
			peel:    map[string]int{},
			charge:  "B",
			cardiac: "D",
		},
	}

	result := evaluate(plans, map[string]int{}, map[string]int{}, optimize.DefaultWeights())
	assert.GreaterOrEqual(t, result.Mwz, 2)
}

func TestIISReportsMissingCardiacCandidate(t *testing.T) {
	_, p := oneWorkdayProgram(t)
	p.Workdays[0].PotentialCardiac = nil

	diag := New().IIS(p)
	found := false
	for _, line := range diag {
		if line == "2024-03-04: no potential cardiac physician" {
			found = true
		}
	}
	assert.True(t, found)
}
