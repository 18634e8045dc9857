package chain

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/fractalchain/fractald/internal/storage"
	"github.com/fractalchain/fractald/pkg/block"
	"github.com/fractalchain/fractald/pkg/tx"
	"github.com/fractalchain/fractald/pkg/types"
)

// Key-prefixed namespaces over a single storage.DB, one per logical table
// of spec §6 (blocks/transactions/balances), grounded on the teacher's
// storage/prefix.go PrefixDB mechanism.
var (
	prefixBlocks   = []byte("blocks/")
	prefixIndex    = []byte("index/")
	prefixTxs      = []byte("txs/")
	prefixBalances = []byte("balances/")
	prefixMeta     = []byte("meta/")

	metaKeyTipHash   = []byte("tip_hash")
	metaKeyTipHeight = []byte("tip_height")
	metaKeyTipSupply = []byte("tip_supply")
)

// Store persists blocks (keyed by block_hash, with a secondary index on
// block index), transactions (keyed by tx_hash, referencing their
// containing block_hash), and account balances.
type Store struct {
	blocks   storage.DB
	index    storage.DB
	txs      storage.DB
	balances storage.DB
	meta     storage.DB
}

// NewStore builds a Store over db, namespacing each logical table with its
// own key prefix.
func NewStore(db storage.DB) *Store {
	return &Store{
		blocks:   storage.NewPrefixDB(db, prefixBlocks),
		index:    storage.NewPrefixDB(db, prefixIndex),
		txs:      storage.NewPrefixDB(db, prefixTxs),
		balances: storage.NewPrefixDB(db, prefixBalances),
		meta:     storage.NewPrefixDB(db, prefixMeta),
	}
}

func indexKey(i uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], i)
	return b[:]
}

// PutBlock persists blk keyed by its block_hash, indexes it by height, and
// indexes each of its transactions by tx_hash -> block_hash.
func (s *Store) PutBlock(blk *block.Block) error {
	data, err := json.Marshal(blk)
	if err != nil {
		return fmt.Errorf("chain: marshal block %s: %w", blk.BlockHash, err)
	}
	if err := s.blocks.Put([]byte(blk.BlockHash), data); err != nil {
		return fmt.Errorf("chain: put block: %w", err)
	}
	if err := s.index.Put(indexKey(blk.Index), []byte(blk.BlockHash)); err != nil {
		return fmt.Errorf("chain: put index: %w", err)
	}
	for _, t := range blk.Transactions {
		if err := s.txs.Put([]byte(t.TxHash), []byte(blk.BlockHash)); err != nil {
			return fmt.Errorf("chain: put tx index for %s: %w", t.TxHash, err)
		}
	}
	return nil
}

// GetBlockByHash retrieves a block by its block_hash.
func (s *Store) GetBlockByHash(hash string) (*block.Block, error) {
	data, err := s.blocks.Get([]byte(hash))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrBlockNotFound, hash)
	}
	var blk block.Block
	if err := json.Unmarshal(data, &blk); err != nil {
		return nil, fmt.Errorf("chain: unmarshal block %s: %w", hash, err)
	}
	return &blk, nil
}

// GetBlockByIndex retrieves a block by its index via the secondary index.
func (s *Store) GetBlockByIndex(i uint64) (*block.Block, error) {
	hashBytes, err := s.index.Get(indexKey(i))
	if err != nil {
		return nil, fmt.Errorf("%w: index %d", ErrBlockNotFound, i)
	}
	return s.GetBlockByHash(string(hashBytes))
}

// GetTransaction retrieves a transaction by tx_hash via its block reference.
func (s *Store) GetTransaction(txHash string) (*tx.Transaction, error) {
	blockHashBytes, err := s.txs.Get([]byte(txHash))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrTxNotFound, txHash)
	}
	blk, err := s.GetBlockByHash(string(blockHashBytes))
	if err != nil {
		return nil, err
	}
	for _, t := range blk.Transactions {
		if t.TxHash == txHash {
			return t, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrTxNotFound, txHash)
}

// SetTip persists the current chain head.
func (s *Store) SetTip(t tip) error {
	if err := s.meta.Put(metaKeyTipHash, []byte(t.Hash)); err != nil {
		return fmt.Errorf("chain: set tip hash: %w", err)
	}
	if err := s.meta.Put(metaKeyTipHeight, indexKey(t.Height)); err != nil {
		return fmt.Errorf("chain: set tip height: %w", err)
	}
	if err := s.meta.Put(metaKeyTipSupply, indexKey(uint64(t.Supply))); err != nil {
		return fmt.Errorf("chain: set tip supply: %w", err)
	}
	return nil
}

// GetTip returns the persisted chain head, and false if none has been set
// yet (a fresh, un-bootstrapped store).
func (s *Store) GetTip() (tip, bool) {
	hashBytes, err := s.meta.Get(metaKeyTipHash)
	if err != nil {
		return tip{}, false
	}
	heightBytes, err := s.meta.Get(metaKeyTipHeight)
	if err != nil || len(heightBytes) != 8 {
		return tip{}, false
	}
	supplyBytes, err := s.meta.Get(metaKeyTipSupply)
	if err != nil || len(supplyBytes) != 8 {
		return tip{}, false
	}
	return tip{
		Hash:   string(hashBytes),
		Height: binary.BigEndian.Uint64(heightBytes),
		Supply: types.Amount(binary.BigEndian.Uint64(supplyBytes)),
	}, true
}

// PutBalance persists addr's confirmed balance.
func (s *Store) PutBalance(addr types.Address, amount types.Amount) error {
	return s.balances.Put([]byte(addr), indexKey(uint64(amount)))
}

// GetBalance retrieves addr's persisted confirmed balance (0 if unknown).
func (s *Store) GetBalance(addr types.Address) types.Amount {
	data, err := s.balances.Get([]byte(addr))
	if err != nil || len(data) != 8 {
		return 0
	}
	return types.Amount(binary.BigEndian.Uint64(data))
}
