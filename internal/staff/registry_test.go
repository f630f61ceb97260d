package staff

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `id,cardiac,charge,name,aliases,start,end
ABC,TRUE,TRUE,Alice B. Carter,Alice;A. Carter,2020-01-01,
DEF,FALSE,TRUE,David E. Foster,Dave,2020-01-01,2024-06-30
GHI,TRUE,FALSE,Grace H. Ibarra,,2024-01-01,
`

func TestLoadRegistry(t *testing.T) {
	reg, err := load(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	t.Run("parses capability flags and aliases", func(t *testing.T) {
		p, ok := reg.Get("ABC")
		require.True(t, ok)
		assert.True(t, p.CanBeCharge)
		assert.True(t, p.CanBeCardiac)
		assert.Equal(t, []string{"Alice", "A. Carter"}, p.Aliases)
	})

	t.Run("missing end date defaults to the far future", func(t *testing.T) {
		p, _ := reg.Get("ABC")
		assert.Equal(t, 9999, p.End.Year())
	})

	t.Run("placeholder is always present", func(t *testing.T) {
		p, ok := reg.Get(Placeholder)
		require.True(t, ok)
		assert.Equal(t, "X", p.ID)
	})
}

func TestLoadRegistryRejectsDuplicates(t *testing.T) {
	csv := sampleCSV + "ABC,TRUE,TRUE,Alice Dupe,,2020-01-01,\n"
	_, err := load(strings.NewReader(csv))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate physician id")
}

func TestResolve(t *testing.T) {
	reg, err := load(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	t.Run("resolves by id, name, and alias case-insensitively", func(t *testing.T) {
		id, err := reg.Resolve("abc")
		require.NoError(t, err)
		assert.Equal(t, "ABC", id)

		id, err = reg.Resolve("david e. foster")
		require.NoError(t, err)
		assert.Equal(t, "DEF", id)

		id, err = reg.Resolve("DAVE")
		require.NoError(t, err)
		assert.Equal(t, "DEF", id)
	})

	t.Run("unresolvable text returns NotFoundError", func(t *testing.T) {
		_, err := reg.Resolve("Dr. Nobody")
		require.Error(t, err)
		var nf *NotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, "Dr. Nobody", nf.Text)
	})
}

func TestEveryoneRespectsActiveRange(t *testing.T) {
	reg, err := load(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	from := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 7, 31, 0, 0, 0, 0, time.UTC)
	everyone := reg.Everyone(from, to)

	assert.Contains(t, everyone, "ABC")
	assert.Contains(t, everyone, "GHI")
	assert.NotContains(t, everyone, "DEF") // ended 2024-06-30
	assert.NotContains(t, everyone, Placeholder)
}

func TestChargeAndCardiacDoctors(t *testing.T) {
	reg, err := load(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	assert.Equal(t, []string{"ABC", "DEF"}, reg.ChargeDoctors())
	assert.Equal(t, []string{"ABC", "GHI"}, reg.CardiacDoctors())
}
