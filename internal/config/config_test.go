package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.json"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	cfg := Default()
	cfg.Solver.Alpha = 2.5
	cfg.Data.StaffFile = "roster.csv"
	cfg.Server.ListenAddr = "0.0.0.0:9090"

	path := filepath.Join(t.TempDir(), "callsched.json")
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"solver":{"time_limit":0,"alpha":1},"data":{"staff_file":"x.csv"},"server":{"read_timeout":1,"write_timeout":1,"shutdown_timeout":1}}`), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestValidate(t *testing.T) {
	t.Run("default config is valid", func(t *testing.T) {
		assert.NoError(t, Default().Validate())
	})

	t.Run("empty staff file is rejected", func(t *testing.T) {
		cfg := Default()
		cfg.Data.StaffFile = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("non-positive alpha is rejected", func(t *testing.T) {
		cfg := Default()
		cfg.Solver.Alpha = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("non-positive server timeout is rejected", func(t *testing.T) {
		cfg := Default()
		cfg.Server.WriteTimeout = 0
		assert.Error(t, cfg.Validate())
	})
}
