package config_test

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/lapwatch/internal/core/lap"
	"github.com/samirrijal/lapwatch/internal/pkg/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("lapwatch-test", nil)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.EqualValues(t, 111, cfg.Session.CID)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "lapwatch-test", cfg.Telemetry.ServiceName)
	assert.Equal(t, lap.DefaultConfig(), cfg.Core())
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("LAPWATCH_LAPS_OUTER_RADIUS", "80")
	t.Setenv("LAPWATCH_LAPS_PERIOD", "5")
	t.Setenv("LAPWATCH_ACTION_COMMAND", "dock")

	cfg, err := config.Load("lapwatch-test", nil)
	require.NoError(t, err)

	assert.Equal(t, 80.0, cfg.Laps.OuterRadius)
	assert.EqualValues(t, 5, cfg.Laps.Period)
	assert.Equal(t, "dock", cfg.Action.Command)
}

func TestLoad_RejectsInvertedRadii(t *testing.T) {
	t.Setenv("LAPWATCH_LAPS_INNER_RADIUS", "60")

	_, err := config.Load("lapwatch-test", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "laps.inner_radius")
}

func TestValidate_RejectsNonFiniteRadii(t *testing.T) {
	for _, outer := range []float64{math.Inf(1), math.Inf(-1), math.NaN()} {
		cfg, err := config.Load("lapwatch-test", nil)
		require.NoError(t, err)

		cfg.Laps.OuterRadius = outer
		err = cfg.Validate()
		require.Error(t, err, "outer=%v", outer)
		assert.Contains(t, err.Error(), lap.ErrInvalidThresholds.Error())
		assert.Contains(t, err.Error(), "finite")

		_, err = lap.NewProcessor(cfg.Core())
		assert.ErrorIs(t, err, lap.ErrInvalidThresholds)
	}
}

func TestLoad_Flags(t *testing.T) {
	fs := config.Flags("lapwatch")
	require.NoError(t, fs.Parse([]string{"--cid=42", "--verbose"}))

	cfg, err := config.Load("lapwatch-test", fs)
	require.NoError(t, err)

	assert.EqualValues(t, 42, cfg.Session.CID)
	assert.True(t, cfg.Log.Verbose)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "opendlv.42.geodetic", cfg.Subject("geodetic"))
	assert.Equal(t, "opendlv:42:lap_status", cfg.StatusKey())
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lapwatch.yaml")
	body := strings.Join([]string{
		"laps:",
		"  outer_radius: 120",
		"  inner_radius: 15",
		"  reference_sender: 7",
		"nats:",
		"  subject_prefix: track",
	}, "\n")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	fs := config.Flags("lapwatch")
	require.NoError(t, fs.Parse([]string{"--config", path}))

	cfg, err := config.Load("lapwatch-test", fs)
	require.NoError(t, err)

	core := cfg.Core()
	assert.Equal(t, lap.Thresholds{Outer: 120, Inner: 15}, core.Thresholds)
	assert.EqualValues(t, 7, core.ReferenceSender)
	assert.Equal(t, "track.111.lap_completed", cfg.Subject("lap_completed"))
}

func TestLoad_MissingConfigFile(t *testing.T) {
	fs := config.Flags("lapwatch")
	require.NoError(t, fs.Parse([]string{"--config", filepath.Join(t.TempDir(), "nope.yaml")}))

	_, err := config.Load("lapwatch-test", fs)
	assert.Error(t, err)
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := &config.Config{}
	err := cfg.Validate()
	require.Error(t, err)

	for _, want := range []string{"server.port", "nats.url", "laps.period", "action.address", "action.command"} {
		assert.Contains(t, err.Error(), want)
	}
}
