// Package node is FractalChain's composition root: it wires the chain
// state owner, the miner, the P2P layer, and the staking ledger together
// and exposes the in-process operations of spec §6 as plain Go methods
// (no RPC server is built — out of scope — but the surface is shaped so a
// JSON-RPC façade could wrap it 1:1), grounded on the teacher's
// cmd/klingnetd main.go wiring order (config -> logger -> storage ->
// consensus engine -> node) generalized from a single monolithic Node
// struct straddling sub-chain/PoA concerns to FractalChain's simpler
// chain+miner+p2p+staking composition.
package node

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	klog "github.com/fractalchain/fractald/internal/log"
	"github.com/fractalchain/fractald/internal/p2p"
	"github.com/fractalchain/fractald/internal/staking"
	"github.com/fractalchain/fractald/internal/storage"
	"github.com/fractalchain/fractald/internal/verifier"

	"github.com/fractalchain/fractald/internal/chain"
	"github.com/fractalchain/fractald/internal/miner"
	"github.com/fractalchain/fractald/pkg/block"
	"github.com/fractalchain/fractald/pkg/fractal"
	"github.com/fractalchain/fractald/pkg/tx"
	"github.com/fractalchain/fractald/pkg/types"
)

// ErrAlreadyMining is returned by StartMining when a mining worker is
// already running.
var ErrAlreadyMining = errors.New("node: already mining")

// Config holds everything Node needs to come up: where to persist state,
// which genesis to boot from, the fractal engine's parameters, the P2P
// listen/seed configuration, and the staking ledger's economic
// parameters.
type Config struct {
	NodeID      string
	ListenAddr  string
	Port        int
	Seeds       []string
	MaxPeers    int
	Genesis     chain.Genesis
	Fractal     fractal.Config
	Staking     staking.Config
	Coinbase    types.Address
	MaxBlockTxs int
}

// Node composes the chain-state owner with the P2P, mining, and staking
// subsystems, per spec §5's concurrency model: internal/chain.Chain is
// the single writer; mining runs on its own worker goroutine and never
// blocks on I/O; peer connections each get their own reader goroutine
// inside internal/p2p.
type Node struct {
	cfg Config

	Chain   *chain.Chain
	Staking *staking.Ledger
	P2P     *p2p.Node

	miner *miner.Miner

	mu           sync.Mutex
	mining       bool
	miningCancel context.CancelFunc
	miningDone   chan struct{}
}

// New builds a Node backed by db, bootstrapping (or resuming) the chain
// from cfg.Genesis and wiring the P2P handlers into the chain-state owner.
func New(db storage.DB, cfg Config) (*Node, error) {
	store := chain.NewStore(db)
	v := verifier.New(cfg.Fractal)
	c := chain.New(store, v)
	if err := c.InitFromGenesis(cfg.Genesis); err != nil {
		return nil, err
	}

	ledger := staking.New(cfg.Staking)

	p2pNode := p2p.New(p2p.Config{
		ListenAddr: cfg.ListenAddr,
		Port:       cfg.Port,
		Seeds:      cfg.Seeds,
		MaxPeers:   cfg.MaxPeers,
		DB:         db,
		NodeID:     cfg.NodeID,
	})

	n := &Node{
		cfg:     cfg,
		Chain:   c,
		Staking: ledger,
		P2P:     p2pNode,
		miner:   miner.New(c, cfg.Fractal, cfg.Coinbase, cfg.MaxBlockTxs),
	}

	p2pNode.SetHandlers(p2p.Handlers{
		OnTransaction: n.onPeerTransaction,
		OnBlock:       n.onPeerBlock,
		ChainInfo:     n.chainInfoPayload,
		ServeBlocks:   n.serveBlocks,
		ApplyBlocks:   n.applyBlocks,
	})

	return n, nil
}

// Start brings up the P2P layer. Mining, if wanted, is started separately
// via StartMining so callers can decide at runtime.
func (n *Node) Start() error {
	return n.P2P.Start()
}

// Stop halts mining (if running) and the P2P layer.
func (n *Node) Stop() error {
	n.StopMining()
	return n.P2P.Stop()
}

// --- P2P event handlers -----------------------------------------------

func (n *Node) onPeerTransaction(senderID string, payload []byte) error {
	var t tx.Transaction
	if err := json.Unmarshal(payload, &t); err != nil {
		n.P2P.RecordOffense(senderID, p2p.PenaltyInvalidTx, "malformed transaction")
		return err
	}
	if err := n.Chain.AddTransaction(&t); err != nil {
		klog.P2P.Debug().Err(err).Str("peer", senderID).Str("tx", t.TxHash).Msg("rejected transaction")
		n.P2P.RecordOffense(senderID, p2p.PenaltyInvalidTx, "invalid transaction")
		return err
	}
	return nil
}

func (n *Node) onPeerBlock(senderID string, payload []byte) error {
	var blk block.Block
	if err := json.Unmarshal(payload, &blk); err != nil {
		n.P2P.RecordOffense(senderID, p2p.PenaltyInvalidBlock, "malformed block")
		return err
	}
	if err := n.Chain.AddBlock(&blk); err != nil {
		klog.P2P.Debug().Err(err).Str("peer", senderID).Uint64("index", blk.Index).Msg("rejected block")
		n.P2P.RecordOffense(senderID, p2p.PenaltyInvalidBlock, "invalid block")
		return err
	}
	return nil
}

func (n *Node) chainInfoPayload() p2p.ChainInfoPayload {
	height := n.Chain.Height()
	info := p2p.ChainInfoPayload{Height: height}
	if tip, err := n.Chain.Latest(); err == nil {
		info.TipHash = tip.BlockHash
		info.DifficultyTarget, info.HeaderBits = n.Chain.Difficulty()
	}
	return info
}

func (n *Node) serveBlocks(from, to uint64) ([]json.RawMessage, error) {
	var out []json.RawMessage
	for i := from; i <= to; i++ {
		blk, err := n.Chain.ByIndex(i)
		if err != nil {
			break
		}
		data, err := json.Marshal(blk)
		if err != nil {
			return nil, err
		}
		out = append(out, data)
	}
	return out, nil
}

func (n *Node) applyBlocks(senderID string, blocks []json.RawMessage) {
	for _, raw := range blocks {
		var blk block.Block
		if err := json.Unmarshal(raw, &blk); err != nil {
			n.P2P.RecordOffense(senderID, p2p.PenaltyInvalidBlock, "malformed sync block")
			return
		}
		if err := n.Chain.AddBlock(&blk); err != nil {
			klog.Chain.Warn().Err(err).Uint64("index", blk.Index).Str("peer", senderID).Msg("sync block rejected")
			return
		}
	}
}
