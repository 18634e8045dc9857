package config

import (
	"github.com/fractalchain/fractald/internal/staking"
)

// DefaultMainnet returns the default node configuration for mainnet.
func DefaultMainnet() *Config {
	return &Config{
		Network: Mainnet,
		DataDir: DefaultDataDir(),
		P2P: P2PConfig{
			Enabled:    true,
			ListenAddr: "0.0.0.0",
			Port:       30303,
			MaxPeers:   50,
			// Real seed addresses get filled in when seed nodes are
			// provisioned; format is host:port, not a multiaddr.
			Seeds: []string{},
		},
		Mining: MiningConfig{
			Enabled:     false,
			MaxBlockTxs: 10000,
		},
		Staking: StakingConfig{
			MinStakeAmount:  staking.DefaultMinStakeAmount,
			MinLockPeriod:   staking.DefaultMinLockPeriod,
			AnnualRate:      staking.DefaultAnnualRate,
			SlashPercentage: staking.DefaultSlashPercentage,
		},
		Log: LogConfig{
			Level: "info",
			JSON:  false,
		},
	}
}

// DefaultTestnet returns the default node configuration for testnet.
func DefaultTestnet() *Config {
	cfg := DefaultMainnet()
	cfg.Network = Testnet
	cfg.P2P.Port = 30304
	return cfg
}

// Default returns the default node configuration for the given network.
func Default(network NetworkType) *Config {
	switch network {
	case Testnet:
		return DefaultTestnet()
	default:
		return DefaultMainnet()
	}
}

// StakingLedgerConfig converts a node's configured staking parameters into the
// internal/staking.Config the ledger is constructed with.
func (c *Config) StakingLedgerConfig() staking.Config {
	return staking.Config{
		MinStakeAmount:  amountFromFloat(c.Staking.MinStakeAmount),
		MinLockPeriod:   c.Staking.MinLockPeriod,
		AnnualRate:      c.Staking.AnnualRate,
		SlashPercentage: c.Staking.SlashPercentage,
	}
}
