package chain

import (
	"math"

	"github.com/fractalchain/fractald/pkg/types"
)

// Reward schedule constants (spec §6 environment constants).
const (
	InitialReward   = 50.0
	HalvingInterval = 210_000
	minRewardFloor  = 1e-8
)

// BlockReward computes the coinbase reward for the block at the given
// index: the initial reward halved once per HalvingInterval blocks of
// index, floored at minRewardFloor. This is the standard Bitcoin-style
// integer-division halving schedule from original_source's
// core/blockchain.py get_block_reward (halvings = height // 210000),
// which the boundary tests (height 209_999 -> 50.0, height 210_000 -> 25.0)
// pin unambiguously; the log2-phrased formula in the distilled spec text
// does not reproduce those boundaries and is treated as an imprecise
// restatement of this schedule (see DESIGN.md).
func BlockReward(index uint64) types.Amount {
	halvings := index / HalvingInterval
	reward := InitialReward / math.Pow(2, float64(halvings))
	if reward < minRewardFloor {
		reward = minRewardFloor
	}
	return types.NewAmountFromFloat(reward)
}
