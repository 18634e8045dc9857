// Package chain implements FractalChain's append-only block store, the
// account-balance ledger, the mempool-facing add_transaction surface, the
// reward and difficulty-retarget schedules, and chain validity checking.
// Grounded on the teacher's internal/chain.Chain (single mutex guarding
// state+store+mempool, per spec §5), generalized from UTXO-set application
// to account-balance-ledger application and from fork-choice/reorg
// machinery to simple longest-chain append (spec's explicit Non-goal
// "fork-choice beyond longest-valid-chain" — see DESIGN.md).
package chain

import (
	"fmt"
	"sync"

	"github.com/fractalchain/fractald/internal/mempool"
	"github.com/fractalchain/fractald/internal/verifier"
	"github.com/fractalchain/fractald/pkg/block"
	"github.com/fractalchain/fractald/pkg/tx"
	"github.com/fractalchain/fractald/pkg/types"
)

// Chain is the single writer of chain state: the block store, the
// confirmed-balance ledger, and the mempool of pending transactions.
// add_block and add_transaction are critical sections under mu, per spec
// §5's single chain-state-writer contract.
type Chain struct {
	mu sync.Mutex

	store    *Store
	verifier *verifier.Verifier
	ledger   *ledger
	mempool  *mempool.Pool

	tipHash   string
	tipHeight uint64
	tipBlock  *block.Block
	supply    types.Amount
}

// New creates a Chain backed by store, validating blocks with v.
func New(store *Store, v *verifier.Verifier) *Chain {
	return &Chain{
		store:    store,
		verifier: v,
		ledger:   newLedger(),
		mempool:  mempool.New(0),
	}
}

// InitFromGenesis bootstraps an empty chain with g's genesis block, or
// resumes from the persisted tip if one already exists.
func (c *Chain) InitFromGenesis(g Genesis) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.store.GetTip(); ok {
		tipBlk, err := c.store.GetBlockByHash(existing.Hash)
		if err != nil {
			return fmt.Errorf("chain: load persisted tip: %w", err)
		}
		c.tipHash = existing.Hash
		c.tipHeight = existing.Height
		c.tipBlock = tipBlk
		c.supply = existing.Supply
		return c.rebuildLedger()
	}

	genesisBlk, err := CreateGenesisBlock(g)
	if err != nil {
		return err
	}
	if err := c.verifier.VerifyBlock(genesisBlk, nil); err != nil {
		return fmt.Errorf("chain: genesis failed verification: %w", err)
	}
	return c.commitBlock(genesisBlk)
}

// rebuildLedger replays every persisted block from genesis to the tip,
// reapplying balance deltas. Used on resume so in-memory balances match
// the persisted chain without needing a separate balance snapshot format.
func (c *Chain) rebuildLedger() error {
	c.ledger = newLedger()
	for i := uint64(0); i <= c.tipHeight; i++ {
		blk, err := c.store.GetBlockByIndex(i)
		if err != nil {
			return fmt.Errorf("chain: rebuild ledger at index %d: %w", i, err)
		}
		c.applyBalanceDeltas(blk)
	}
	return nil
}

// Height returns the current chain tip height.
func (c *Chain) Height() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tipHeight
}

// Latest returns the current tip block.
func (c *Chain) Latest() (*block.Block, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tipBlock == nil {
		return nil, ErrEmptyChain
	}
	return c.tipBlock, nil
}

// ByIndex retrieves a block by its index.
func (c *Chain) ByIndex(i uint64) (*block.Block, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.GetBlockByIndex(i)
}

// ByHash retrieves a block by its block_hash.
func (c *Chain) ByHash(hash string) (*block.Block, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.GetBlockByHash(hash)
}

// GetTransaction retrieves a confirmed transaction by tx_hash.
func (c *Chain) GetTransaction(txHash string) (*tx.Transaction, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.GetTransaction(txHash)
}

// Balance returns addr's spendable balance: confirmed minus the sum of
// (amount+fee) of addr's pending outgoing mempool transactions (spec
// §4.4).
func (c *Chain) Balance(addr types.Address) types.Amount {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.spendableLocked(addr)
}

func (c *Chain) spendableLocked(addr types.Address) types.Amount {
	return c.ledger.get(addr) - c.mempool.PendingDebit(addr)
}

// Difficulty returns the fractal target dimension and header difficulty
// bits that a block extending the current tip must satisfy. At every
// height h > 0 with h mod 2016 = 0 this applies the retarget law (spec
// §4.4) over the just-completed 2016-block interval before returning.
func (c *Chain) Difficulty() (float64, uint8) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tipBlock == nil {
		return 1.5, 8
	}
	nextHeight := c.tipHeight + 1
	if !ShouldRetarget(nextHeight) {
		return c.tipBlock.DifficultyTarget, c.tipBlock.HeaderDifficultyBits
	}
	firstBlk, err := c.store.GetBlockByIndex(nextHeight - RetargetInterval)
	if err != nil {
		return c.tipBlock.DifficultyTarget, c.tipBlock.HeaderDifficultyBits
	}
	return Retarget(firstBlk.Timestamp, c.tipBlock.Timestamp, c.tipBlock.DifficultyTarget, c.tipBlock.HeaderDifficultyBits)
}

// BlockReward returns the coinbase reward for the next block to be mined.
func (c *Chain) BlockReward() types.Amount {
	c.mu.Lock()
	defer c.mu.Unlock()
	return BlockReward(c.tipHeight + 1)
}

// Pending returns up to maxCount mempool transactions ordered by fee
// descending. The relative order of equal-fee transactions is not defined.
func (c *Chain) Pending(maxCount int) []*tx.Transaction {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mempool.SelectForBlock(maxCount)
}

// AddTransaction validates and admits a transaction to the mempool:
// structural and signature validity, sufficient spendable balance, and no
// duplicate tx_hash (spec §4.4). Fee-priority ordering is applied only at
// block-building time (Pending), not at admission.
func (c *Chain) AddTransaction(t *tx.Transaction) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mempool.Has(t.TxHash) {
		return fmt.Errorf("%w: %s", ErrDuplicateTransaction, t.TxHash)
	}
	if spendable := c.spendableLocked(t.Sender); spendable < t.Amount+t.Fee {
		return fmt.Errorf("%w: %s has %s, needs %s", ErrInsufficientBalance, t.Sender, spendable, t.Amount+t.Fee)
	}
	if err := c.mempool.Add(t); err != nil {
		return err
	}
	return nil
}

// AddBlock validates blk against the current tip, applies its balance
// deltas, persists it, and removes its transactions from the mempool
// (spec §4.4 "add_block"). Blocks that do not extend the current tip are
// rejected outright — per the explicit Non-goal of fork-choice beyond the
// longest valid chain, FractalChain never buffers or reorganizes around
// competing blocks.
func (c *Chain) AddBlock(blk *block.Block) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.verifier.VerifyBlock(blk, c.tipBlock); err != nil {
		return err
	}
	if err := c.checkCoinbase(blk); err != nil {
		return err
	}
	if err := c.commitBlock(blk); err != nil {
		return err
	}
	c.mempool.RemoveConfirmed(blk.Transactions)
	return nil
}

// checkCoinbase enforces invariant (vii): coinbase amount <= block reward
// + sum of non-coinbase fees.
func (c *Chain) checkCoinbase(blk *block.Block) error {
	if blk.IsGenesis() {
		return nil
	}
	reward := BlockReward(blk.Index)
	var fees types.Amount
	for _, t := range blk.Transactions[1:] {
		fees += t.Fee
	}
	coinbase := blk.Transactions[0]
	if coinbase.Amount > reward+fees {
		return fmt.Errorf("%w: coinbase=%s, reward=%s, fees=%s", ErrBadCoinbaseAmount, coinbase.Amount, reward, fees)
	}
	return nil
}

// commitBlock applies balance deltas, persists blk and the new tip, and
// advances the chain's in-memory head. Caller must hold mu.
func (c *Chain) commitBlock(blk *block.Block) error {
	c.applyBalanceDeltas(blk)

	if err := c.store.PutBlock(blk); err != nil {
		return err
	}
	for _, t := range blk.Transactions {
		if t.IsMint() {
			c.supply += t.Amount
		}
	}
	newTip := tip{Height: blk.Index, Hash: blk.BlockHash, Supply: c.supply}
	if err := c.store.SetTip(newTip); err != nil {
		return err
	}
	for addr := range c.touchedAddresses(blk) {
		if err := c.store.PutBalance(addr, c.ledger.get(addr)); err != nil {
			return err
		}
	}

	c.tipHash = blk.BlockHash
	c.tipHeight = blk.Index
	c.tipBlock = blk
	return nil
}

// applyBalanceDeltas credits/debits the ledger for every transaction in
// blk: mint/coinbase transactions credit the recipient only; ordinary
// transactions debit sender by amount+fee and credit recipient by amount
// (spec §4.4).
func (c *Chain) applyBalanceDeltas(blk *block.Block) {
	for _, t := range blk.Transactions {
		if !t.IsMint() {
			c.ledger.debit(t.Sender, t.Amount+t.Fee)
		}
		c.ledger.credit(t.Recipient, t.Amount)
	}
}

// touchedAddresses returns the set of addresses whose balance blk affected,
// for selective balance persistence.
func (c *Chain) touchedAddresses(blk *block.Block) map[types.Address]struct{} {
	out := make(map[types.Address]struct{})
	for _, t := range blk.Transactions {
		if !t.IsMint() {
			out[t.Sender] = struct{}{}
		}
		out[t.Recipient] = struct{}{}
	}
	return out
}

// IsValidChain replays every block from genesis to the current tip,
// re-verifying full consensus validity and chain continuity at each step.
func (c *Chain) IsValidChain() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var prev *block.Block
	for i := uint64(0); i <= c.tipHeight; i++ {
		blk, err := c.store.GetBlockByIndex(i)
		if err != nil {
			return fmt.Errorf("chain: missing block at index %d: %w", i, err)
		}
		if err := c.verifier.VerifyBlock(blk, prev); err != nil {
			return fmt.Errorf("chain: block %d failed verification: %w", i, err)
		}
		if err := c.checkCoinbase(blk); err != nil {
			return fmt.Errorf("chain: block %d failed coinbase check: %w", i, err)
		}
		prev = blk
	}
	return nil
}
