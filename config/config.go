// Package config handles node runtime configuration: network selection,
// data directory layout, P2P/mining/staking/logging settings, and the
// genesis parameters a node boots from. None of this is consensus-critical
// except genesis itself — two nodes with different P2P or log settings
// still agree on every block.
package config

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/fractalchain/fractald/pkg/types"
)

// NetworkType identifies mainnet or testnet.
type NetworkType string

const (
	Mainnet NetworkType = "mainnet"
	Testnet NetworkType = "testnet"
)

// Config holds node-specific runtime configuration.
type Config struct {
	Network NetworkType `conf:"network"`
	DataDir string      `conf:"datadir"`

	P2P     P2PConfig
	Mining  MiningConfig
	Staking StakingConfig
	Log     LogConfig
}

// P2PConfig holds peer-to-peer network settings (spec §4.6).
type P2PConfig struct {
	Enabled    bool     `conf:"p2p.enabled"`
	ListenAddr string   `conf:"p2p.listen"`
	Port       int      `conf:"p2p.port"`
	Seeds      []string `conf:"p2p.seeds"`
	MaxPeers   int      `conf:"p2p.maxpeers"`
	ClearBans  bool     // Clear all peer bans on startup (not persisted in config file).
}

// MiningConfig holds block-production settings. Whether to mine is a node
// choice; the proof itself is protocol (pkg/fractal).
type MiningConfig struct {
	Enabled     bool   `conf:"mining.enabled"`
	Coinbase    string `conf:"mining.coinbase"`
	MaxBlockTxs int    `conf:"mining.maxblocktxs"`
}

// StakingConfig holds the staking ledger's operator-tunable parameters
// (spec §4.5, §6 environment constants). A node only ever runs with the
// network-wide defaults in practice; the fields exist so a private testnet
// can exercise different minimums without a code change.
type StakingConfig struct {
	MinStakeAmount  float64 `conf:"staking.minstake"`
	MinLockPeriod   uint64  `conf:"staking.minlock"`
	AnnualRate      float64 `conf:"staking.annualrate"`
	SlashPercentage float64 `conf:"staking.slashpct"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `conf:"log.level"`
	File  string `conf:"log.file"`
	JSON  bool   `conf:"log.json"`
}

// DefaultDataDir returns the platform-specific default data directory.
//
//	Linux:   ~/.fractald
//	macOS:   ~/Library/Application Support/FractalChain
//	Windows: %APPDATA%\FractalChain
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".fractald"
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "FractalChain")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, "FractalChain")
		}
		return filepath.Join(home, "AppData", "Roaming", "FractalChain")
	default:
		return filepath.Join(home, ".fractald")
	}
}

// ChainDataDir returns the chain-specific data directory.
func (c *Config) ChainDataDir() string {
	return filepath.Join(c.DataDir, string(c.Network))
}

// LogsDir returns the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// ConfigFile returns the config file path.
func (c *Config) ConfigFile() string {
	return filepath.Join(c.DataDir, "fractald.conf")
}

func amountFromFloat(f float64) types.Amount {
	return types.NewAmountFromFloat(f)
}
