package block

import (
	"encoding/json"
	"fmt"
	"time"
)

// MaxBlockSize is the maximum canonical-JSON-encoded size of a block, per
// spec §6's environment constants ("max block size 1 MiB").
const MaxBlockSize = 1 << 20

// MinTimestamp is the earliest timestamp any block may carry (spec invariant
// viii), chosen by the reference implementation as a sanity floor well
// before the genesis block of any real deployment.
const MinTimestamp = 1577836800

// MaxFutureDrift bounds how far into the future a block's timestamp may lie
// relative to wall-clock time (spec invariant viii).
const MaxFutureDrift = 7200 * time.Second

// Validate checks the block's self-contained structural invariants: genesis
// shape or fractal-proof presence, coinbase placement, timestamp bounds,
// Merkle root and block_hash recomputation, size limit, and per-transaction
// structural validity. It does NOT check chain continuity (see
// ValidateContinuation) or balance sufficiency, which require chain state
// and live in internal/chain.
func (b *Block) Validate() error {
	if b.IsGenesis() {
		if b.PreviousHash != ZeroHash {
			return fmt.Errorf("%w: %w", ErrInvalidBlock, ErrBadGenesisPrevHash)
		}
		if b.FractalProof != nil {
			return fmt.Errorf("%w: %w", ErrInvalidBlock, ErrUnexpectedProof)
		}
	} else if b.FractalProof == nil {
		return fmt.Errorf("%w: %w", ErrInvalidBlock, ErrMissingFractalProof)
	}

	if len(b.Transactions) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidBlock, ErrNoTransactions)
	}

	if err := b.validateCoinbasePlacement(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidBlock, err)
	}

	now := float64(time.Now().Add(MaxFutureDrift).Unix())
	if b.Timestamp < MinTimestamp || b.Timestamp > now {
		return fmt.Errorf("%w: %w: got %.0f", ErrInvalidBlock, ErrBadTimestamp, b.Timestamp)
	}

	wantRoot := b.ComputeMerkleRoot()
	if b.MerkleRoot != wantRoot {
		return fmt.Errorf("%w: %w: header=%s computed=%s", ErrInvalidBlock, ErrBadMerkleRoot, b.MerkleRoot, wantRoot)
	}

	wantHash, err := b.ComputeBlockHash()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidBlock, err)
	}
	if b.BlockHash != wantHash {
		return fmt.Errorf("%w: %w: header=%s computed=%s", ErrInvalidBlock, ErrBadBlockHash, b.BlockHash, wantHash)
	}

	encoded, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("%w: encode: %w", ErrInvalidBlock, err)
	}
	if len(encoded) > MaxBlockSize {
		return fmt.Errorf("%w: %w: %d bytes, max %d", ErrInvalidBlock, ErrBlockTooLarge, len(encoded), MaxBlockSize)
	}

	for i, t := range b.Transactions {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("%w: tx %d: %w", ErrInvalidBlock, i, err)
		}
	}

	return nil
}

// validateCoinbasePlacement enforces invariant (iii): a non-genesis block's
// first transaction is its single coinbase; any further coinbase
// transaction invalidates the block. The genesis block's first transaction
// is a mint (sender=GENESIS) rather than a coinbase and is exempt.
func (b *Block) validateCoinbasePlacement() error {
	start := 0
	if !b.IsGenesis() {
		if !b.Transactions[0].IsCoinbase() {
			return ErrNoCoinbase
		}
		start = 1
	}
	for _, t := range b.Transactions[start:] {
		if t.IsCoinbase() {
			return ErrMultipleCoinbase
		}
	}
	return nil
}

// ValidateContinuation checks invariant (ii): this block's previous_hash
// equals prev's block_hash and its index is prev's index + 1.
func (b *Block) ValidateContinuation(prev *Block) error {
	if b.PreviousHash != prev.BlockHash {
		return fmt.Errorf("%w: %w", ErrInvalidBlock, ErrBadContinuationHash)
	}
	if b.Index != prev.Index+1 {
		return fmt.Errorf("%w: %w: got %d, want %d", ErrInvalidBlock, ErrBadContinuationIdx, b.Index, prev.Index+1)
	}
	return nil
}
