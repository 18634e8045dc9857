// Package miner implements FractalChain's block-production loop: draining
// the mempool, building a candidate block with a coinbase, running the
// nonce loop against the header-hash pre-filter, and on a hit invoking the
// fractal solution search (spec §4.3, §2 "Data flow").
//
// Mining is CPU-bound and must never run on a task that also services I/O
// (spec §5); Miner itself is not goroutine-aware — callers run it on a
// dedicated worker goroutine and cancel it via the context passed to Mine.
package miner

import (
	"context"
	"fmt"
	"time"

	"github.com/fractalchain/fractald/pkg/block"
	"github.com/fractalchain/fractald/pkg/fractal"
	"github.com/fractalchain/fractald/pkg/tx"
	"github.com/fractalchain/fractald/pkg/types"
)

// ChainState is the read-only view of chain state a Miner needs to build a
// candidate block: the tip to extend, the difficulty the new block must
// satisfy, the reward it may claim, and the mempool to drain.
type ChainState interface {
	Latest() (*block.Block, error)
	Difficulty() (target float64, bits uint8)
	BlockReward() types.Amount
	Pending(maxCount int) []*tx.Transaction
}

// ErrStopped is returned when the caller's context is cancelled before a
// solution is found.
var ErrStopped = context.Canceled

// Miner produces candidate blocks for a single coinbase address, grounded
// on the teacher's Miner struct shape (holds config, not mutable search
// state) generalized from UTXO-output coinbase construction and
// binary-header PoW sealing to the spec's account-model coinbase and
// two-stage fractal search.
type Miner struct {
	chain        ChainState
	cfg          fractal.Config
	coinbaseAddr types.Address
	maxBlockTxs  int

	// Stats surfaces the reason string for the most recent mining attempt,
	// per spec §7 "mining failures surface the reason string in the miner
	// stats".
	Stats Stats
}

// Stats holds the miner's most recent attempt outcome, read by the node's
// get_mining_stats() interface (spec §6).
type Stats struct {
	Attempts      uint64
	BlocksMined   uint64
	LastError     string
	LastMinedAt   float64
	LastHashRate  float64
}

// New creates a Miner that pays block rewards to coinbaseAddr.
func New(chain ChainState, cfg fractal.Config, coinbaseAddr types.Address, maxBlockTxs int) *Miner {
	if maxBlockTxs <= 0 {
		maxBlockTxs = 10000
	}
	return &Miner{chain: chain, cfg: cfg, coinbaseAddr: coinbaseAddr, maxBlockTxs: maxBlockTxs}
}

// Mine builds one candidate block and searches for a fractal proof-of-work
// solution, blocking until one is found or ctx is cancelled. Cancellation
// is observed between nonce attempts and between fractal search points
// only — an in-flight Julia-set computation always runs to completion
// (spec §5 "must NOT suspend mid-grid").
func (m *Miner) Mine(ctx context.Context) (*block.Block, error) {
	m.Stats.Attempts++

	blk, err := m.buildCandidate()
	if err != nil {
		m.Stats.LastError = err.Error()
		return nil, err
	}

	start := time.Now()
	var nonce uint64
	for {
		select {
		case <-ctx.Done():
			m.Stats.LastError = ctx.Err().Error()
			return nil, ctx.Err()
		default:
		}

		headerHash, err := blk.HeaderHashForNonce(nonce)
		if err != nil {
			m.Stats.LastError = err.Error()
			return nil, fmt.Errorf("miner: header hash: %w", err)
		}

		if fractal.HeaderHashPasses(headerHash, blk.HeaderDifficultyBits) {
			prevHash, err := types.HexToHash(blk.PreviousHash)
			if err != nil {
				m.Stats.LastError = err.Error()
				return nil, fmt.Errorf("miner: bad previous_hash: %w", err)
			}

			proofCfg := m.cfg
			proofCfg.TargetDimension = blk.DifficultyTarget

			proof, err := fractal.FindSolution(ctx, proofCfg, prevHash, blk.MinerAddress, nonce, blk.Timestamp)
			if err != nil {
				if err == context.Canceled || err == context.DeadlineExceeded {
					m.Stats.LastError = err.Error()
					return nil, err
				}
				// Exhausted this nonce's search space; try the next nonce.
				nonce++
				continue
			}

			blk.FractalProof = &proof
			if err := blk.Finalize(); err != nil {
				m.Stats.LastError = err.Error()
				return nil, fmt.Errorf("miner: finalize block: %w", err)
			}

			elapsed := time.Since(start).Seconds()
			m.Stats.BlocksMined++
			m.Stats.LastMinedAt = float64(time.Now().Unix())
			m.Stats.LastError = ""
			if elapsed > 0 {
				m.Stats.LastHashRate = float64(nonce+1) / elapsed
			}
			return blk, nil
		}

		nonce++
	}
}

// buildCandidate drains the mempool, attaches a coinbase sized to reward +
// fees, and stamps the block's header fields against the current tip. The
// returned block carries no fractal proof yet and is not yet finalized —
// Finalize is called once the proof is attached.
func (m *Miner) buildCandidate() (*block.Block, error) {
	tip, err := m.chain.Latest()
	if err != nil {
		return nil, fmt.Errorf("miner: read tip: %w", err)
	}

	target, bits := m.chain.Difficulty()
	reward := m.chain.BlockReward()

	pending := m.chain.Pending(m.maxBlockTxs - 1)
	var fees types.Amount
	for _, t := range pending {
		fees += t.Fee
	}

	now := float64(time.Now().Unix())
	timestamp := now
	if timestamp <= tip.Timestamp {
		timestamp = tip.Timestamp + 1
	}

	coinbase, err := tx.NewCoinbase(m.coinbaseAddr, reward+fees, tip.Index+1, timestamp)
	if err != nil {
		return nil, fmt.Errorf("miner: build coinbase: %w", err)
	}

	txs := make([]*tx.Transaction, 0, 1+len(pending))
	txs = append(txs, coinbase)
	txs = append(txs, pending...)

	blk := block.NewBlock(tip.Index+1, timestamp, txs, tip.BlockHash, m.coinbaseAddr, target, bits)
	blk.MerkleRoot = blk.ComputeMerkleRoot()
	return blk, nil
}
