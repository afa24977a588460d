package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadCreatesDefaultOnFirstRun(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, NetworkMainnet, cfg.Network)
	require.Equal(t, ModeProduction, cfg.Mode)
	require.Equal(t, DefaultListenAddress(NetworkMainnet), cfg.ListenAddress)
	require.NotEmpty(t, cfg.ValidatorKey)
	require.InDelta(t, 2.0/3.0, cfg.InstantFinalityThreshold, 1e-9)
	require.InDelta(t, 4.0/5.0, cfg.BlockFinalizationThreshold, 1e-9)
	require.Equal(t, int64(5000), cfg.InstantFinalityTimeoutMS)
	require.Equal(t, int64(259200), cfg.UptimeResetSecs)
	require.Equal(t, DefaultBootstrapThreshold, cfg.BootstrapNodeThreshold)

	if _, statErr := os.Stat(path); statErr != nil {
		t.Fatalf("expected default config file to be written: %v", statErr)
	}
}

func TestLoadPersistsGeneratedValidatorKey(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	contents := `ListenAddress = ":16001"
DataDir = "./data"
Network = "testnet"
Mode = "development"
InstantFinalityThreshold = 0.667
BlockFinalizationThreshold = 0.8
InstantFinalityTimeoutMS = 5000
HeartbeatGraceSecs = 600
UptimeResetSecs = 259200
BootstrapNodeThreshold = 3
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NotEmpty(t, cfg.ValidatorKey)
	require.Equal(t, NetworkTestnet, cfg.Network)
	require.Equal(t, ModeDevelopment, cfg.Mode)

	reloaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.ValidatorKey, reloaded.ValidatorKey)
}

func TestInstantFinalityRatioIsExact(t *testing.T) {
	cfg := &Config{InstantFinalityThreshold: 2.0 / 3.0}
	ratio := cfg.InstantFinalityRatio()
	got, _ := ratio.Float64()
	require.InDelta(t, 2.0/3.0, got, 1e-9)
}

func TestStrategyTimeoutForFallsBackWhenUnset(t *testing.T) {
	cfg := &Config{StrategyTimeouts: []StrategyTimeout{{Strategy: "RotateLeader", TimeoutMS: 9000}}}
	require.Equal(t, int64(9000)*1e6, cfg.StrategyTimeoutFor("RotateLeader", 0).Nanoseconds())
	require.Equal(t, int64(1234), cfg.StrategyTimeoutFor("Emergency", 1234).Nanoseconds())
}

func TestValidateConfigRejectsBadThresholds(t *testing.T) {
	g := Global{
		Network: NetworkMainnet,
		Mode:    ModeProduction,
		Thresholds: Thresholds{
			InstantFinality:     0,
			BlockFinalization:   0.8,
			InstantFinalityMS:   5000,
			HeartbeatGraceSecs:  600,
			UptimeResetSecs:     259200,
			BootstrapThreshold:  3,
		},
	}
	require.Error(t, ValidateConfig(g))
}

func TestValidateConfigRejectsDuplicateStrategyTimeouts(t *testing.T) {
	g := Global{
		Network: NetworkMainnet,
		Mode:    ModeProduction,
		Thresholds: Thresholds{
			InstantFinality:    2.0 / 3.0,
			BlockFinalization:  0.8,
			InstantFinalityMS:  5000,
			HeartbeatGraceSecs: 600,
			UptimeResetSecs:    259200,
			BootstrapThreshold: 3,
		},
		Strategies: []StrategyTimeout{
			{Strategy: "RotateLeader", TimeoutMS: 1000},
			{Strategy: "RotateLeader", TimeoutMS: 2000},
		},
	}
	require.Error(t, ValidateConfig(g))
}
