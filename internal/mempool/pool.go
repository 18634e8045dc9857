// Package mempool manages pending transactions waiting for block inclusion,
// ordered by fee for block-building priority.
package mempool

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/fractalchain/fractald/pkg/tx"
	"github.com/fractalchain/fractald/pkg/types"
)

// Pool errors.
var (
	ErrAlreadyExists = errors.New("mempool: transaction already pending")
	ErrPoolFull       = errors.New("mempool: pool is full")
	ErrValidation     = errors.New("mempool: transaction failed validation")
)

// entry wraps a transaction with the fee used for priority ordering.
type entry struct {
	tx  *tx.Transaction
	fee types.Amount
}

// BalanceFunc returns addr's currently confirmed balance. Pool does not call
// one: the spendable-balance rule (confirmed balance minus pending debits)
// lives in the caller (internal/chain), which uses PendingDebit; Pool itself
// only tracks what has been admitted and in what fee order.
type BalanceFunc func(addr types.Address) types.Amount

// Pool holds unconfirmed transactions, grounded on the teacher's
// internal/mempool.Pool (mutex-guarded map + fee-rate eviction +
// SelectForBlock-sorted-by-fee pattern), generalized from per-byte fee-rate
// ranking over UTXO inputs/outputs to flat per-transaction fee ranking over
// the account model, and with the token/stake/coinbase-maturity validation
// hooks dropped since they have no account-model analogue.
type Pool struct {
	mu      sync.RWMutex
	txs     map[string]*entry // tx_hash -> entry
	maxSize int
}

// New creates a pool bounded at maxSize entries (0 uses a sensible default).
func New(maxSize int) *Pool {
	if maxSize <= 0 {
		maxSize = 5000
	}
	return &Pool{
		txs:     make(map[string]*entry),
		maxSize: maxSize,
	}
}

// Add validates structural correctness and admits t to the pool. Duplicate
// tx_hash is rejected; once the pool is at capacity, a new transaction only
// displaces the single lowest-fee entry if it pays strictly more.
func (p *Pool) Add(t *tx.Transaction) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.txs[t.TxHash]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, t.TxHash)
	}
	if err := t.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}

	if len(p.txs) >= p.maxSize {
		lowestHash, lowestFee := p.findLowestFeeLocked()
		if t.Fee <= lowestFee {
			return ErrPoolFull
		}
		p.removeLocked(lowestHash)
	}

	p.txs[t.TxHash] = &entry{tx: t, fee: t.Fee}
	return nil
}

// Remove drops a transaction from the pool by hash, if present.
func (p *Pool) Remove(txHash string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.removeLocked(txHash)
}

func (p *Pool) removeLocked(txHash string) {
	delete(p.txs, txHash)
}

// RemoveConfirmed drops every transaction in txs from the pool, used after a
// block including them has been accepted.
func (p *Pool) RemoveConfirmed(txs []*tx.Transaction) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, t := range txs {
		p.removeLocked(t.TxHash)
	}
}

// Has reports whether txHash is currently pending.
func (p *Pool) Has(txHash string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, exists := p.txs[txHash]
	return exists
}

// Get retrieves a pending transaction by hash, or nil if absent.
func (p *Pool) Get(txHash string) *tx.Transaction {
	p.mu.RLock()
	defer p.mu.RUnlock()
	e, exists := p.txs[txHash]
	if !exists {
		return nil
	}
	return e.tx
}

// Count returns the number of pending transactions.
func (p *Pool) Count() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.txs)
}

// PendingDebit returns the sum of (amount+fee) of addr's pending outgoing
// transactions, used by the caller to compute spendable balance.
func (p *Pool) PendingDebit(addr types.Address) types.Amount {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var total types.Amount
	for _, e := range p.txs {
		if e.tx.Sender == addr {
			total += e.tx.Amount + e.tx.Fee
		}
	}
	return total
}

func (p *Pool) findLowestFeeLocked() (string, types.Amount) {
	var lowestHash string
	var lowestFee types.Amount = 1<<63 - 1
	for h, e := range p.txs {
		if e.fee < lowestFee {
			lowestFee = e.fee
			lowestHash = h
		}
	}
	return lowestHash, lowestFee
}

// SelectForBlock returns up to limit pending transactions ordered by fee
// descending. Entries are collected from a map, so the relative order of
// equal-fee transactions is not defined. limit < 0 returns all.
func (p *Pool) SelectForBlock(limit int) []*tx.Transaction {
	p.mu.RLock()
	defer p.mu.RUnlock()

	entries := make([]*entry, 0, len(p.txs))
	for _, e := range p.txs {
		entries = append(entries, e)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].fee > entries[j].fee
	})

	if limit > len(entries) || limit < 0 {
		limit = len(entries)
	}
	result := make([]*tx.Transaction, limit)
	for i := 0; i < limit; i++ {
		result[i] = entries[i].tx
	}
	return result
}
