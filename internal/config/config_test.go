package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/windsim/internal/turbine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, DefaultAddr, cfg.Server.Addr)
	assert.Equal(t, 30, cfg.Animation.Frames)
	assert.Equal(t, 30, cfg.Animation.FPS)
	assert.Equal(t, 3, cfg.Animation.FanBlades)
	require.NoError(t, cfg.Turbine.Validate())
}

func TestPresetsValid(t *testing.T) {
	for _, name := range ListPresets() {
		in, ok := GetPreset(name)
		require.True(t, ok, name)
		assert.NoError(t, in.Validate(), name)
	}

	_, ok := GetPreset("nonexistent")
	assert.False(t, ok)
}

func TestListPresetsSorted(t *testing.T) {
	names := ListPresets()
	require.NotEmpty(t, names)
	for i := 1; i < len(names); i++ {
		assert.Less(t, names[i-1], names[i])
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "windsim.yaml")

	cfg := DefaultConfig()
	cfg.Turbine.Material = turbine.Aluminum
	cfg.Turbine.Adjustment = turbine.AdjustSubtract
	cfg.Turbine.WindSpeed = 18
	cfg.Server.Addr = ":9090"

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, turbine.Aluminum, loaded.Turbine.Material)
	assert.Equal(t, turbine.AdjustSubtract, loaded.Turbine.Adjustment)
	assert.Equal(t, 18.0, loaded.Turbine.WindSpeed)
	assert.Equal(t, ":9090", loaded.Server.Addr)
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	data := []byte("turbine:\n  material: carbon fiber\n  adjustment: add\n  wind_speed: 20\n")
	require.NoError(t, os.WriteFile(path, data, 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, turbine.CarbonFiber, cfg.Turbine.Material)
	assert.Equal(t, turbine.AdjustAdd, cfg.Turbine.Adjustment)
	assert.Equal(t, 20.0, cfg.Turbine.WindSpeed)
	assert.Equal(t, 25.0, cfg.Turbine.BladeLength)
	assert.Equal(t, DefaultFPS, cfg.Animation.FPS)
}

func TestLoadRejectsUnknownMaterial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("turbine:\n  material: wood\n"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("WINDSIM_ADDR", ":7000")
	t.Setenv("WINDSIM_DATA_DIR", "/tmp/designs")
	t.Setenv("WINDSIM_LOG_LEVEL", "DEBUG")
	t.Setenv("WINDSIM_FPS", "12")
	t.Setenv("WINDSIM_THEME", "sunset")

	cfg := DefaultConfig()
	cfg.ApplyEnv()

	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, "/tmp/designs", cfg.DataDir)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 12, cfg.Animation.FPS)
	assert.Equal(t, "sunset", cfg.Dashboard.Theme)
}

func TestApplyEnvIgnoresInvalidNumbers(t *testing.T) {
	t.Setenv("WINDSIM_FPS", "fast")

	cfg := DefaultConfig()
	cfg.ApplyEnv()
	assert.Equal(t, DefaultFPS, cfg.Animation.FPS)
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("WINDSIM_TEST_ONLY=from-file\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("WINDSIM_TEST_ONLY") })

	require.NoError(t, LoadEnv(filepath.Join(dir, "missing.env"), envPath))
	assert.Equal(t, "from-file", os.Getenv("WINDSIM_TEST_ONLY"))
}

func TestNormalize(t *testing.T) {
	cfg := &Config{Turbine: turbine.Inputs{BladeLength: 200, Blades: 1}}
	cfg.Normalize()

	assert.Equal(t, 60.0, cfg.Turbine.BladeLength)
	assert.Equal(t, 2, cfg.Turbine.Blades)
	assert.Equal(t, DefaultFrames, cfg.Animation.Frames)
	assert.Equal(t, DefaultFPS, cfg.Animation.FPS)
	assert.Equal(t, DefaultSamples, cfg.Dashboard.CurveSamples)
}
