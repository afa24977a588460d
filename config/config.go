package config

import (
	"encoding/hex"
	"math/big"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"timecoin/crypto"
)

// Config is the on-disk, operator-editable configuration for a consensus
// node, covering every option the external interface enumerates (network
// selection, production mode, finality thresholds, and fallback timing).
type Config struct {
	ListenAddress  string   `toml:"ListenAddress"`
	DataDir        string   `toml:"DataDir"`
	ValidatorKey   string   `toml:"ValidatorKey"`
	BootstrapPeers []string `toml:"BootstrapPeers"`

	Network Network `toml:"Network"`
	Mode    Mode    `toml:"Mode"`

	InstantFinalityThreshold   float64           `toml:"InstantFinalityThreshold"`
	BlockFinalizationThreshold float64           `toml:"BlockFinalizationThreshold"`
	InstantFinalityTimeoutMS   int64             `toml:"InstantFinalityTimeoutMS"`
	StrategyTimeouts           []StrategyTimeout `toml:"StrategyTimeouts"`
	HeartbeatGraceSecs         int64             `toml:"HeartbeatGraceSecs"`
	UptimeResetSecs            int64             `toml:"UptimeResetSecs"`
	BootstrapNodeThreshold     int               `toml:"BootstrapNodeThreshold"`
}

// InstantFinalityRatio renders the configured threshold as an exact rational,
// so callers never carry a float64 into a consensus-path comparison.
func (c *Config) InstantFinalityRatio() *big.Rat {
	return big.NewRat(0, 1).SetFloat64(c.InstantFinalityThreshold)
}

// BlockFinalizationRatio renders the configured threshold as an exact
// rational, for the same reason as InstantFinalityRatio.
func (c *Config) BlockFinalizationRatio() *big.Rat {
	return big.NewRat(0, 1).SetFloat64(c.BlockFinalizationThreshold)
}

// InstantFinalityTimeout returns the configured timeout as a duration.
func (c *Config) InstantFinalityTimeout() time.Duration {
	return time.Duration(c.InstantFinalityTimeoutMS) * time.Millisecond
}

// HeartbeatGrace returns the configured heartbeat grace period.
func (c *Config) HeartbeatGrace() time.Duration {
	return time.Duration(c.HeartbeatGraceSecs) * time.Second
}

// UptimeResetGap returns the configured longevity-reset gap.
func (c *Config) UptimeResetGap() time.Duration {
	return time.Duration(c.UptimeResetSecs) * time.Second
}

// StrategyTimeoutFor returns the configured override for the named strategy, or
// fallback when no override is present.
func (c *Config) StrategyTimeoutFor(strategy string, fallback time.Duration) time.Duration {
	for _, s := range c.StrategyTimeouts {
		if s.Strategy == strategy {
			return time.Duration(s.TimeoutMS) * time.Millisecond
		}
	}
	return fallback
}

// Global projects the flat on-disk Config into the Global shape
// ValidateConfig checks, so callers never have to duplicate field mapping
// at every validation call site.
func (c *Config) Global() Global {
	return Global{
		Network: c.Network,
		Mode:    c.Mode,
		Thresholds: Thresholds{
			InstantFinality:    c.InstantFinalityThreshold,
			BlockFinalization:  c.BlockFinalizationThreshold,
			InstantFinalityMS:  c.InstantFinalityTimeoutMS,
			HeartbeatGraceSecs: c.HeartbeatGraceSecs,
			UptimeResetSecs:    c.UptimeResetSecs,
			BootstrapThreshold: c.BootstrapNodeThreshold,
		},
		Strategies: c.StrategyTimeouts,
	}
}

// Load loads the configuration from the given path, generating one with
// sane defaults (and a fresh validator identity) on first run.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}

	if cfg.ValidatorKey == "" {
		key, err := crypto.GeneratePrivateKey()
		if err != nil {
			return nil, err
		}
		cfg.ValidatorKey = hex.EncodeToString(key.Bytes())

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC, os.ModePerm)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		if err := toml.NewEncoder(f).Encode(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// DefaultListenAddress returns the default peer-listen port for a network,
// since mainnet and testnet nodes must never collide when run side by side
// on the same host (spec §6: network "affects ... default ports").
func DefaultListenAddress(network Network) string {
	if network == NetworkTestnet {
		return ":26001"
	}
	return ":16001"
}

// createDefault creates and saves a default configuration file for the
// mainnet network, listening on mainnet's DefaultListenAddress port.
func createDefault(path string) (*Config, error) {
	key, err := crypto.GeneratePrivateKey()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ListenAddress:              DefaultListenAddress(NetworkMainnet),
		DataDir:                    "./timecoin-data",
		ValidatorKey:               hex.EncodeToString(key.Bytes()),
		BootstrapPeers:             []string{},
		Network:                    NetworkMainnet,
		Mode:                       ModeProduction,
		InstantFinalityThreshold:   2.0 / 3.0,
		BlockFinalizationThreshold: 4.0 / 5.0,
		InstantFinalityTimeoutMS:   5000,
		StrategyTimeouts:           []StrategyTimeout{},
		HeartbeatGraceSecs:         600,
		UptimeResetSecs:            259200,
		BootstrapNodeThreshold:     DefaultBootstrapThreshold,
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
