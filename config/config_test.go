package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSettings() RunSettings {
	return RunSettings{
		Seed:               "42",
		Tree:               Tree{Fanout: 4, Depth: 3, GroupSize: 3},
		AverageFailureTime: 10000,
		HealthCheckPeriod:  500,
		Costs:              Costs{Crypto: 10, Comm: 20, Compute: 5},
	}
}

func TestValidateAcceptsGoodSettings(t *testing.T) {
	assert.NoError(t, validSettings().Validate())
}

func TestValidateRejectsNonPositiveAverageFailureTime(t *testing.T) {
	s := validSettings()
	s.AverageFailureTime = 0
	assert.Error(t, s.Validate())

	s.AverageFailureTime = -1
	assert.Error(t, s.Validate())
}

func TestValidateRejectsZeroGroupSize(t *testing.T) {
	s := validSettings()
	s.Tree.GroupSize = 0
	assert.Error(t, s.Validate())
}

func TestParseFailureHandling(t *testing.T) {
	for input, want := range map[string]FailureHandling{
		"full":                    FullFailurePropagation,
		"FullFailurePropagation":  FullFailurePropagation,
		"local":                   LocalFailurePropagation,
		"LocalFailurePropagation": LocalFailurePropagation,
		"replacement":             NodeReplacement,
		"NodeReplacement":         NodeReplacement,
	} {
		got, err := ParseFailureHandling(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	_, err := ParseFailureHandling("bogus")
	assert.Error(t, err)
}

func TestTreeConstructionLatency(t *testing.T) {
	s := validSettings()
	// depth*4*crypto + 2*comm = 3*4*10 + 2*20
	assert.Equal(t, 160.0, s.TreeConstructionLatency())
}

func TestReplacementUnitCost(t *testing.T) {
	s := validSettings()
	// 10*crypto + 8*comm = 100 + 160
	assert.Equal(t, 260.0, s.ReplacementUnitCost())
}

func TestLoadFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.toml")
	contents := `
seed = "str"
fanout = 4
depth = 3
group_size = 3
failure_handling = "local"
average_failure_time = 10000.0
health_check_period = 500.0
crypto_cost = 10.0
comm_cost = 20.0
compute_cost = 5.0
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	settings, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "str", settings.Seed)
	assert.Equal(t, Tree{Fanout: 4, Depth: 3, GroupSize: 3}, settings.Tree)
	assert.Equal(t, LocalFailurePropagation, settings.BuildingBlocks.FailureHandling)
	assert.Equal(t, 10000.0, settings.AverageFailureTime)
	assert.Equal(t, Costs{Crypto: 10, Comm: 20, Compute: 5}, settings.Costs)
}

func TestLoadFileRejectsInvalidSettings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.toml")
	contents := `
seed = "str"
fanout = 4
depth = 3
group_size = 0
failure_handling = "full"
average_failure_time = 10000.0
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	_, err := LoadFile(path)
	assert.Error(t, err)
}
