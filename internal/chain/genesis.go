package chain

import (
	"fmt"

	"github.com/fractalchain/fractald/pkg/block"
	"github.com/fractalchain/fractald/pkg/tx"
	"github.com/fractalchain/fractald/pkg/types"
)

// Genesis holds the parameters used to build the genesis block: the
// initial mint recipient and amount, the genesis timestamp, and the
// starting difficulty parameters every subsequent block inherits until the
// first retarget.
type Genesis struct {
	Recipient        types.Address
	Amount           types.Amount
	Timestamp        float64
	DifficultyTarget float64
	HeaderBits       uint8
}

// CreateGenesisBlock builds and finalizes the index-0 block: a single
// sender=GENESIS mint transaction, zero previous_hash, and no fractal
// proof, grounded on the teacher's CreateGenesisBlock shape generalized
// from a multi-allocation coinbase to the spec's single genesis mint tx.
func CreateGenesisBlock(g Genesis) (*block.Block, error) {
	genesisTx, err := tx.NewGenesisTransaction(g.Recipient, g.Amount, g.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("chain: build genesis transaction: %w", err)
	}

	blk := block.NewBlock(0, g.Timestamp, []*tx.Transaction{genesisTx}, block.ZeroHash, types.GenesisAddress, g.DifficultyTarget, g.HeaderBits)
	if err := blk.Finalize(); err != nil {
		return nil, fmt.Errorf("chain: finalize genesis block: %w", err)
	}
	return blk, nil
}
