package node

import (
	"context"
	"encoding/json"
	"fmt"

	klog "github.com/fractalchain/fractald/internal/log"
	"github.com/fractalchain/fractald/internal/miner"
	"github.com/fractalchain/fractald/internal/p2p"
	"github.com/fractalchain/fractald/internal/staking"
	"github.com/fractalchain/fractald/pkg/block"
	"github.com/fractalchain/fractald/pkg/crypto"
	"github.com/fractalchain/fractald/pkg/tx"
	"github.com/fractalchain/fractald/pkg/types"
)

// GetChainInfo reports the current tip height, hash, and difficulty
// parameters (spec §6 get_chain_info).
func (n *Node) GetChainInfo() p2p.ChainInfoPayload {
	return n.chainInfoPayload()
}

// GetBlock retrieves a confirmed block by height (spec §6 get_block).
func (n *Node) GetBlock(index uint64) (*block.Block, error) {
	return n.Chain.ByIndex(index)
}

// GetBlockByHash retrieves a confirmed block by its block_hash.
func (n *Node) GetBlockByHash(hash string) (*block.Block, error) {
	return n.Chain.ByHash(hash)
}

// GetTransaction retrieves a confirmed transaction by tx_hash (spec §6
// get_transaction).
func (n *Node) GetTransaction(txHash string) (*tx.Transaction, error) {
	return n.Chain.GetTransaction(txHash)
}

// GetPendingTransactions returns up to maxCount mempool transactions
// ordered by fee (spec §6 get_pending_transactions).
func (n *Node) GetPendingTransactions(maxCount int) []*tx.Transaction {
	return n.Chain.Pending(maxCount)
}

// GetBalance returns addr's spendable balance (spec §6 get_balance).
func (n *Node) GetBalance(addr types.Address) types.Amount {
	return n.Chain.Balance(addr)
}

// SubmitTransaction admits t to the local mempool and, on success, floods
// it to every connected peer (spec §6 submit_transaction, §4.6 NEW_TRANSACTION).
func (n *Node) SubmitTransaction(t *tx.Transaction) error {
	if err := n.Chain.AddTransaction(t); err != nil {
		return err
	}
	payload, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("node: encode transaction: %w", err)
	}
	return n.P2P.BroadcastTransaction(payload)
}

// --- Mining (spec §6 start_mining / stop_mining / get_mining_stats) ---

// StartMining launches the dedicated mining worker goroutine. Mining
// never runs on a goroutine that also services P2P I/O (spec §5).
func (n *Node) StartMining() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.mining {
		return ErrAlreadyMining
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	n.mining = true
	n.miningCancel = cancel
	n.miningDone = done

	go n.mineLoop(ctx, done)
	return nil
}

// StopMining cancels the mining worker and blocks until it exits.
func (n *Node) StopMining() {
	n.mu.Lock()
	if !n.mining {
		n.mu.Unlock()
		return
	}
	cancel := n.miningCancel
	done := n.miningDone
	n.mu.Unlock()

	cancel()
	<-done
}

// IsMining reports whether the mining worker is currently running.
func (n *Node) IsMining() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.mining
}

// GetMiningStats returns the miner's most recent attempt outcome (spec §6
// get_mining_stats).
func (n *Node) GetMiningStats() miner.Stats {
	return n.miner.Stats
}

func (n *Node) mineLoop(ctx context.Context, done chan struct{}) {
	defer close(done)
	defer func() {
		n.mu.Lock()
		n.mining = false
		n.mu.Unlock()
	}()

	for {
		if ctx.Err() != nil {
			return
		}

		blk, err := n.miner.Mine(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			klog.Miner.Warn().Err(err).Msg("mining attempt failed")
			continue
		}

		if err := n.Chain.AddBlock(blk); err != nil {
			klog.Miner.Warn().Err(err).Uint64("index", blk.Index).Msg("mined block rejected by local chain")
			continue
		}

		payload, err := json.Marshal(blk)
		if err != nil {
			klog.Miner.Warn().Err(err).Msg("encode mined block")
			continue
		}
		if err := n.P2P.BroadcastBlock(payload); err != nil {
			klog.Miner.Warn().Err(err).Msg("broadcast mined block")
		}
		klog.Miner.Info().Uint64("index", blk.Index).Str("hash", blk.BlockHash).Msg("mined new block")
	}
}

// --- Staking (spec §6 stake / get_stake_positions / withdraw_stake) ---

// Stake opens a new stake position for addr, locked until
// currentBlock+lockPeriod (spec §6 stake, §4.5).
func (n *Node) Stake(addr types.Address, amount types.Amount, lockPeriod uint64, now float64) (*staking.Position, error) {
	return n.Staking.CreateStake(addr, amount, lockPeriod, n.Chain.Height(), now)
}

// GetStakePositions returns addr's stake positions (spec §6 get_stake_positions).
func (n *Node) GetStakePositions(addr types.Address) []*staking.Position {
	return n.Staking.Positions(addr)
}

// WithdrawStake completes the two-phase unlock of positions[idx] in one
// call: initiating the withdrawal (which fails if still locked) and then
// completing it for payout (spec §6 withdraw_stake).
func (n *Node) WithdrawStake(addr types.Address, idx int) (types.Amount, error) {
	if _, err := n.Staking.InitiateWithdrawal(addr, idx, n.Chain.Height()); err != nil {
		return 0, err
	}
	return n.Staking.CompleteWithdrawal(addr, idx)
}

// --- P2P surface (spec §6 get_peer_info / get_network_stats) ---

// GetPeerInfo returns a snapshot of every currently connected peer.
func (n *Node) GetPeerInfo() []p2p.PeerInfo {
	return n.P2P.Peers()
}

// NetworkStats summarizes this node's P2P standing.
type NetworkStats struct {
	PeerCount int    `json:"peer_count"`
	NodeID    string `json:"node_id"`
	Addr      string `json:"addr"`
}

// GetNetworkStats returns this node's P2P standing (spec §6 get_network_stats).
func (n *Node) GetNetworkStats() NetworkStats {
	return NetworkStats{
		PeerCount: n.P2P.PeerCount(),
		NodeID:    n.P2P.ID(),
		Addr:      n.P2P.Addr(),
	}
}

// --- Wallet helpers (spec §6 create_wallet / address_from_private_key) ---

// CreateWallet generates a new key pair and its derived address.
func CreateWallet() (*crypto.PrivateKey, types.Address, error) {
	pk, err := crypto.GenerateKeyPair()
	if err != nil {
		return nil, "", fmt.Errorf("node: generate key pair: %w", err)
	}
	return pk, crypto.AddressOf(pk.PublicKey()), nil
}

// AddressFromPrivateKey derives the address for a raw private key.
func AddressFromPrivateKey(priv []byte) (types.Address, error) {
	pk, err := crypto.PrivateKeyFromBytes(priv)
	if err != nil {
		return "", fmt.Errorf("node: parse private key: %w", err)
	}
	return crypto.AddressOf(pk.PublicKey()), nil
}
