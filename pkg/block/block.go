// Package block defines the block type, its canonical hashing, and
// structural validation.
package block

import (
	"fmt"

	"github.com/fractalchain/fractald/pkg/crypto"
	"github.com/fractalchain/fractald/pkg/fractal"
	"github.com/fractalchain/fractald/pkg/tx"
	"github.com/fractalchain/fractald/pkg/types"
)

// ZeroHash is the previous_hash of the genesis block: 64 hex zero digits.
const ZeroHash = "0000000000000000000000000000000000000000000000000000000000000000"

// Block is a single entry in the chain: an ordered list of transactions
// bound together by a Merkle root, sealed by a fractal proof-of-work
// solution (absent only for genesis).
type Block struct {
	Index                uint64            `json:"index"`
	Timestamp            float64           `json:"timestamp"`
	Transactions         []*tx.Transaction `json:"transactions"`
	PreviousHash         string            `json:"previous_hash"`
	MinerAddress         types.Address     `json:"miner_address"`
	FractalProof         *fractal.Proof    `json:"fractal_proof,omitempty"`
	MerkleRoot           string            `json:"merkle_root"`
	BlockHash            string            `json:"block_hash"`
	DifficultyTarget     float64           `json:"difficulty_target"`
	HeaderDifficultyBits uint8             `json:"header_difficulty_bits"`
}

// blockHashPayload is every block_hash input field (spec §3): index,
// timestamp, previous_hash, merkle_root, miner_address, fractal_proof.
type blockHashPayload struct {
	Index        uint64         `json:"index"`
	Timestamp    float64        `json:"timestamp"`
	PreviousHash string         `json:"previous_hash"`
	MerkleRoot   string         `json:"merkle_root"`
	MinerAddress types.Address  `json:"miner_address"`
	FractalProof *fractal.Proof `json:"fractal_proof"`
}

// NewBlock constructs a block shell from its header fields and ordered
// transaction list. MerkleRoot and BlockHash are not yet computed — call
// Finalize once FractalProof (if any) is attached.
func NewBlock(index uint64, timestamp float64, txs []*tx.Transaction, previousHash string, minerAddress types.Address, difficultyTarget float64, headerBits uint8) *Block {
	return &Block{
		Index:                index,
		Timestamp:            timestamp,
		Transactions:         txs,
		PreviousHash:         previousHash,
		MinerAddress:         minerAddress,
		DifficultyTarget:     difficultyTarget,
		HeaderDifficultyBits: headerBits,
	}
}

// txHashes returns the in-order tx_hash list the Merkle root is computed over.
func (b *Block) txHashes() []string {
	hashes := make([]string, len(b.Transactions))
	for i, t := range b.Transactions {
		hashes[i] = t.TxHash
	}
	return hashes
}

// ComputeMerkleRoot recomputes merkle_root from the current transaction list.
func (b *Block) ComputeMerkleRoot() string {
	return MerkleRoot(b.txHashes())
}

// ComputeBlockHash recomputes block_hash from the block's current fields,
// without mutating the receiver.
func (b *Block) ComputeBlockHash() (string, error) {
	h, err := crypto.CanonicalHash(blockHashPayload{
		Index:        b.Index,
		Timestamp:    b.Timestamp,
		PreviousHash: b.PreviousHash,
		MerkleRoot:   b.MerkleRoot,
		MinerAddress: b.MinerAddress,
		FractalProof: b.FractalProof,
	})
	if err != nil {
		return "", fmt.Errorf("block: compute hash: %w", err)
	}
	return h, nil
}

// HeaderHashForNonce computes the cheap pre-filter hash the miner checks
// before attempting a fractal search for the given nonce, using the
// block's current index/timestamp/previous_hash/miner_address and the
// Merkle root already computed over its transaction list.
func (b *Block) HeaderHashForNonce(nonce uint64) (string, error) {
	return HeaderHash(b.Index, b.Timestamp, b.PreviousHash, b.MerkleRoot, b.MinerAddress, nonce)
}

// Finalize stamps MerkleRoot and BlockHash from the block's current fields.
// Call after Transactions and (for non-genesis blocks) FractalProof are set.
func (b *Block) Finalize() error {
	b.MerkleRoot = b.ComputeMerkleRoot()
	h, err := b.ComputeBlockHash()
	if err != nil {
		return err
	}
	b.BlockHash = h
	return nil
}

// IsGenesis reports whether this block is the chain's genesis block.
func (b *Block) IsGenesis() bool {
	return b.Index == 0
}
