package config

import (
	"github.com/fractalchain/fractald/internal/chain"
	"github.com/fractalchain/fractald/pkg/types"
)

// InitialDifficultyTarget and InitialHeaderBits are the genesis block's
// starting fractal-dimension target and header-hash pre-filter strength,
// inherited by every subsequent block until the first retarget at height
// chain.RetargetInterval (spec §4.4, §6).
const (
	InitialDifficultyTarget = 1.5
	InitialHeaderBits       = 8
)

// GenesisTimestamp is the fixed genesis block timestamp shared by every
// node on a given network, so independently-bootstrapped nodes agree on
// the genesis block hash.
const (
	MainnetGenesisTimestamp = 1577836800 // 2020-01-01T00:00:00Z
	TestnetGenesisTimestamp = 1700000000 // 2023-11-14T22:13:20Z
)

// MainnetGenesisAmount is the initial mint credited to the mainnet genesis
// recipient.
const MainnetGenesisAmount = 1_000_000.0

// TestnetGenesisAmount is larger than mainnet's, to give testnet faucets
// room to operate.
const TestnetGenesisAmount = 10_000_000.0

// MainnetGenesisAddress and TestnetGenesisAddress are well-known 40-hex-char
// recipient addresses for each network's genesis mint. A genesis
// transaction's recipient must be a real (non-sentinel) address like any
// other, per tx.Validate's rejection of sentinel recipients — so even the
// genesis mint needs somewhere concrete to land. Neither has a known
// private key; funds are expected to be redistributed by the network
// operators after launch.
const (
	MainnetGenesisAddress types.Address = "000000000000000000000000000000000f7ac7a1"
	TestnetGenesisAddress types.Address = "00000000000000000000000000000000deadbeef"
)

// GenesisFor returns the genesis parameters for the given network,
// suitable for chain.CreateGenesisBlock / chain.Chain.InitFromGenesis.
func GenesisFor(network NetworkType) chain.Genesis {
	if network == Testnet {
		return chain.Genesis{
			Recipient:        TestnetGenesisAddress,
			Amount:           types.NewAmountFromFloat(TestnetGenesisAmount),
			Timestamp:        TestnetGenesisTimestamp,
			DifficultyTarget: InitialDifficultyTarget,
			HeaderBits:       InitialHeaderBits,
		}
	}
	return chain.Genesis{
		Recipient:        MainnetGenesisAddress,
		Amount:           types.NewAmountFromFloat(MainnetGenesisAmount),
		Timestamp:        MainnetGenesisTimestamp,
		DifficultyTarget: InitialDifficultyTarget,
		HeaderBits:       InitialHeaderBits,
	}
}
