// Package staking implements FractalChain's stake-position ledger: locked
// deposits that accrue APR-based rewards over time and can be slashed for
// validator misbehavior. It has no direct consensus role — FractalChain's
// block acceptance is governed entirely by pkg/fractal's proof-of-work, not
// by stake — so this ledger is a standalone bookkeeping system the wider
// node wires in alongside the chain, not a dependency of it.
package staking

import (
	"errors"
	"fmt"
	"sync"

	"github.com/fractalchain/fractald/pkg/types"
)

// Environment constants (spec §6), overridable via Config.
const (
	DefaultMinStakeAmount  = 100.0
	DefaultMinLockPeriod   = 1000 // blocks
	DefaultAnnualRate      = 0.05
	DefaultSlashPercentage = 0.10
	BlocksPerYear          = 365 * 24 * 6 // 52560, 10-minute blocks
)

// Status is a stake position's lifecycle state.
type Status string

const (
	StatusActive    Status = "active"
	StatusUnlocking Status = "unlocking"
	StatusWithdrawn Status = "withdrawn"
	StatusSlashed   Status = "slashed"
)

var (
	ErrBelowMinimumStake = errors.New("staking: amount below minimum stake")
	ErrBelowMinimumLock  = errors.New("staking: lock period below minimum")
	ErrNoStakes          = errors.New("staking: address has no stake positions")
	ErrInvalidIndex      = errors.New("staking: invalid stake position index")
	ErrNotActive         = errors.New("staking: stake position is not active")
	ErrNotUnlocking      = errors.New("staking: stake position is not unlocking")
	ErrStillLocked       = errors.New("staking: stake position still locked")
)

// Position is a single staking deposit, grounded on original_source's
// economic/staking.py StakePosition dataclass.
type Position struct {
	Address      types.Address `json:"address"`
	Amount       types.Amount  `json:"amount"`
	StartTime    float64       `json:"start_time"`
	LockPeriod   uint64        `json:"lock_period"`
	UnlockBlock  uint64        `json:"unlock_block"`
	RewardsEarned types.Amount `json:"rewards_earned"`
	Status       Status        `json:"status"`
}

// startBlock recovers the block height at which this position was created,
// matching original_source's inline `unlock_block - lock_period` expression
// rather than storing a redundant field.
func (p *Position) startBlock() uint64 {
	return p.UnlockBlock - p.LockPeriod
}

// SlashRecord is an immutable audit entry appended whenever a validator is
// slashed.
type SlashRecord struct {
	Address     types.Address `json:"address"`
	BlockIndex  uint64        `json:"block_index"`
	SlashAmount types.Amount  `json:"slash_amount"`
	Reason      string        `json:"reason"`
	Timestamp   float64       `json:"timestamp"`
}

// Config parameterizes a Ledger's minimums, reward rate, and slash fraction.
type Config struct {
	MinStakeAmount  types.Amount
	MinLockPeriod   uint64
	AnnualRate      float64
	SlashPercentage float64
}

// DefaultConfig returns the spec's environment-constant defaults.
func DefaultConfig() Config {
	return Config{
		MinStakeAmount:  types.NewAmountFromFloat(DefaultMinStakeAmount),
		MinLockPeriod:   DefaultMinLockPeriod,
		AnnualRate:      DefaultAnnualRate,
		SlashPercentage: DefaultSlashPercentage,
	}
}

// Ledger tracks every address's stake positions in memory, grounded on the
// teacher's general "mutex-guarded map, exported methods return (T, error)"
// struct shape (no single direct teacher analogue exists for staking
// specifically — internal/consensus/stake.go is a UTXO-output stake
// *checker*, not a position ledger — so this struct's shape instead follows
// the idiom the teacher applies throughout internal/chain and internal/mempool).
type Ledger struct {
	mu sync.RWMutex

	cfg Config

	positions   map[types.Address][]*Position
	totalStaked types.Amount
	slashHistory []SlashRecord
}

// New creates an empty staking ledger under cfg.
func New(cfg Config) *Ledger {
	return &Ledger{
		cfg:       cfg,
		positions: make(map[types.Address][]*Position),
	}
}

// CreateStake opens a new active position for addr, locked until
// currentBlock+lockPeriod.
func (l *Ledger) CreateStake(addr types.Address, amount types.Amount, lockPeriod, currentBlock uint64, now float64) (*Position, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if amount < l.cfg.MinStakeAmount {
		return nil, fmt.Errorf("%w: got %s, need %s", ErrBelowMinimumStake, amount, l.cfg.MinStakeAmount)
	}
	if lockPeriod < l.cfg.MinLockPeriod {
		return nil, fmt.Errorf("%w: got %d, need %d", ErrBelowMinimumLock, lockPeriod, l.cfg.MinLockPeriod)
	}

	pos := &Position{
		Address:     addr,
		Amount:      amount,
		StartTime:   now,
		LockPeriod:  lockPeriod,
		UnlockBlock: currentBlock + lockPeriod,
		Status:      StatusActive,
	}
	l.positions[addr] = append(l.positions[addr], pos)
	l.totalStaked += amount
	return pos, nil
}

// CalculateRewards returns the rewards a position has accrued as of
// currentBlock, without mutating the position: amount · annual_rate ·
// min(elapsed, lock_period) / blocks_per_year (spec §4.5).
func (l *Ledger) CalculateRewards(pos *Position, currentBlock uint64) types.Amount {
	if pos.Status != StatusActive {
		return 0
	}
	start := pos.startBlock()
	if currentBlock < start {
		return 0
	}
	elapsed := currentBlock - start
	if elapsed > pos.LockPeriod {
		elapsed = pos.LockPeriod
	}
	if elapsed == 0 {
		return 0
	}
	yearsElapsed := float64(elapsed) / BlocksPerYear
	return types.NewAmountFromFloat(pos.Amount.Float64() * l.cfg.AnnualRate * yearsElapsed)
}

// UpdateRewards recomputes rewards_earned for every active position as of
// currentBlock.
func (l *Ledger) UpdateRewards(currentBlock uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, positions := range l.positions {
		for _, pos := range positions {
			if pos.Status == StatusActive {
				pos.RewardsEarned = l.CalculateRewards(pos, currentBlock)
			}
		}
	}
}

// positionLocked fetches positions[addr][idx] with bounds checking. Caller
// must hold l.mu.
func (l *Ledger) positionLocked(addr types.Address, idx int) (*Position, error) {
	positions, ok := l.positions[addr]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoStakes, addr)
	}
	if idx < 0 || idx >= len(positions) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidIndex, idx)
	}
	return positions[idx], nil
}

// InitiateWithdrawal transitions an unlocked active position to unlocking,
// freezing its final rewards_earned.
func (l *Ledger) InitiateWithdrawal(addr types.Address, idx int, currentBlock uint64) (*Position, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	pos, err := l.positionLocked(addr, idx)
	if err != nil {
		return nil, err
	}
	if pos.Status != StatusActive {
		return nil, fmt.Errorf("%w: %s", ErrNotActive, pos.Status)
	}
	if currentBlock < pos.UnlockBlock {
		return nil, fmt.Errorf("%w: unlocks at block %d, current %d", ErrStillLocked, pos.UnlockBlock, currentBlock)
	}

	pos.RewardsEarned = l.CalculateRewards(pos, currentBlock)
	pos.Status = StatusUnlocking
	return pos, nil
}

// CompleteWithdrawal finalizes an unlocking position, returning the total
// payout (principal + accrued rewards) and transitioning it to withdrawn.
func (l *Ledger) CompleteWithdrawal(addr types.Address, idx int) (types.Amount, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	pos, err := l.positionLocked(addr, idx)
	if err != nil {
		return 0, err
	}
	if pos.Status != StatusUnlocking {
		return 0, fmt.Errorf("%w: %s", ErrNotUnlocking, pos.Status)
	}

	total := pos.Amount + pos.RewardsEarned
	pos.Status = StatusWithdrawn
	l.totalStaked -= pos.Amount
	return total, nil
}

// Slash reduces every active position of addr by the configured slash
// percentage, demoting any position that falls below the minimum stake to
// slashed, and appends an audit record (spec §4.5).
func (l *Ledger) Slash(addr types.Address, blockIndex uint64, reason string, now float64) (types.Amount, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	positions, ok := l.positions[addr]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNoStakes, addr)
	}

	var totalSlashed types.Amount
	for _, pos := range positions {
		if pos.Status != StatusActive {
			continue
		}
		slashAmount := types.NewAmountFromFloat(pos.Amount.Float64() * l.cfg.SlashPercentage)
		pos.Amount -= slashAmount
		totalSlashed += slashAmount
		l.totalStaked -= slashAmount

		if pos.Amount < l.cfg.MinStakeAmount {
			pos.Status = StatusSlashed
			l.totalStaked -= pos.Amount
		}
	}

	l.slashHistory = append(l.slashHistory, SlashRecord{
		Address:     addr,
		BlockIndex:  blockIndex,
		SlashAmount: totalSlashed,
		Reason:      reason,
		Timestamp:   now,
	})
	return totalSlashed, nil
}

// Positions returns a copy of addr's stake positions.
func (l *Ledger) Positions(addr types.Address) []*Position {
	l.mu.RLock()
	defer l.mu.RUnlock()
	src := l.positions[addr]
	out := make([]*Position, len(src))
	copy(out, src)
	return out
}

// TotalStakedBy returns the sum of addr's active stake amounts.
func (l *Ledger) TotalStakedBy(addr types.Address) types.Amount {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var total types.Amount
	for _, pos := range l.positions[addr] {
		if pos.Status == StatusActive {
			total += pos.Amount
		}
	}
	return total
}

// TotalStaked returns the ledger-wide stake held in active and unlocking
// positions; unlocking stake leaves the total when its withdrawal completes.
func (l *Ledger) TotalStaked() types.Amount {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.totalStaked
}

// SlashHistory returns a copy of every slash record recorded so far.
func (l *Ledger) SlashHistory() []SlashRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]SlashRecord, len(l.slashHistory))
	copy(out, l.slashHistory)
	return out
}
