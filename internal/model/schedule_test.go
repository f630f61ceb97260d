package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anescall/callsched/internal/staff"
)

func ptr(s string) *string { return &s }

func testRegistry(t *testing.T) *staff.Registry {
	t.Helper()
	csv := `id,cardiac,charge,name,aliases,start,end
ABC,TRUE,TRUE,Alice,,2020-01-01,
DEF,FALSE,TRUE,David,,2020-01-01,
GHI,TRUE,FALSE,Grace,,2020-01-01,
JKL,TRUE,TRUE,Jack,,2020-01-01,
`
	path := filepath.Join(t.TempDir(), "staff.csv")
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o644))
	reg, err := staff.Load(path)
	require.NoError(t, err)
	return reg
}

func oneWorkdayDerived() *DerivedSchedule {
	return &DerivedSchedule{
		Order:       []string{"2024-03-04"},
		Day:         []DayKind{Workday},
		OnCall:      []*string{ptr("JKL")},
		OnLate:      []*string{ptr("GHI")},
		PostCall:    []*string{ptr("ABC")},
		PostHoliday: []*string{nil},
		PostLate:    []*string{nil},
		PreCall:     []*string{nil},
		PreHoliday:  []*string{nil},
		Admin:       [][]string{nil},
		Offsite:     [][]string{nil},
		Unassigned:  [][]string{{"DEF"}},
		Doctors:     []string{"ABC", "DEF", "GHI", "JKL"},
		Period:      Period{Start: "2024-03-04", End: "2024-03-04"},
	}
}

func TestFromDerivedPositionNumbering(t *testing.T) {
	reg := testRegistry(t)
	sched, err := FromDerived(oneWorkdayDerived(), reg)
	require.NoError(t, err)

	d := sched.Days[0]

	t.Run("transition role takes position 1", func(t *testing.T) {
		assert.Equal(t, "ABC", d.Preassigned[1])
		assert.Equal(t, 1, d.PreUnassignedCount)
	})

	t.Run("Unassigned pool occupies the next contiguous range", func(t *testing.T) {
		assert.Equal(t, 2, d.UnassignedLo)
		assert.Equal(t, 2, d.UnassignedHi)
	})

	t.Run("charge_order is one past the Unassigned block", func(t *testing.T) {
		assert.Equal(t, 3, d.ChargeOrder)
	})

	t.Run("OnLate then OnCall take the final two positions", func(t *testing.T) {
		assert.Equal(t, "GHI", d.Preassigned[3])
		assert.Equal(t, "JKL", d.Preassigned[4])
		assert.Equal(t, 4, d.LastOrder)
	})

	t.Run("Working returns every fixed and Unassigned physician", func(t *testing.T) {
		assert.ElementsMatch(t, []string{"ABC", "DEF", "GHI", "JKL"}, d.Working())
	})
}

func TestPotentialChargeCardiacSets(t *testing.T) {
	reg := testRegistry(t)
	sched, err := FromDerived(oneWorkdayDerived(), reg)
	require.NoError(t, err)
	d := sched.Days[0]

	t.Run("potential charge draws from call duty and Unassigned", func(t *testing.T) {
		assert.Contains(t, d.PotentialCharge, "JKL") // OnCall, charge-capable
		assert.Contains(t, d.PotentialCharge, "DEF") // Unassigned, charge-capable
		assert.NotContains(t, d.PotentialCharge, "GHI") // OnLate but not charge-capable
	})

	t.Run("potential cardiac draws only from call duty", func(t *testing.T) {
		assert.Contains(t, d.PotentialCardiac, "GHI") // OnLate, cardiac-capable
		assert.Contains(t, d.PotentialCardiac, "JKL") // OnCall, cardiac-capable
		assert.NotContains(t, d.PotentialCardiac, "DEF") // Unassigned, not call duty
	})
}

func TestValidateDetectsDuplicateWorking(t *testing.T) {
	reg := testRegistry(t)
	derived := oneWorkdayDerived()
	sched, err := FromDerived(derived, reg)
	require.NoError(t, err)

	sched.Days[0].Unassigned = append(sched.Days[0].Unassigned, "ABC") // duplicate of PostCall

	err = sched.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no-duplicate-working")
}

func TestValidateRequiresMatchingRegistry(t *testing.T) {
	reg := testRegistry(t)
	derived := oneWorkdayDerived()
	derived.Doctors = []string{"ABC", "DEF"} // missing GHI, JKL
	sched, err := FromDerived(derived, reg)
	require.NoError(t, err)

	err = sched.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "physician-list-matches-registry")
}
