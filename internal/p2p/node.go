package p2p

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"

	klog "github.com/fractalchain/fractald/internal/log"
	"github.com/fractalchain/fractald/internal/storage"
)

const (
	discoveryInterval = 60 * time.Second
	pingInterval      = 30 * time.Second
	seenGCInterval    = 300 * time.Second
	staleInterval     = 300 * time.Second
	dialTimeout       = 5 * time.Second
	seenTTL           = 10 * time.Minute
)

// Config holds P2P node configuration (spec §4.6, §6).
type Config struct {
	ListenAddr string
	Port       int
	Seeds      []string
	MaxPeers   int
	DB         storage.DB // peer/ban persistence; nil disables it (tests)
	NodeID     string     // stable identity advertised in HELLO
}

// Handlers wires the node's wire-protocol events into the chain-state
// owner. Payloads are passed through as opaque JSON so this package stays
// ignorant of block/transaction internals, matching the teacher's
// raw-bytes handler pattern.
type Handlers struct {
	OnTransaction func(senderID string, payload []byte) error
	OnBlock       func(senderID string, payload []byte) error
	ChainInfo     func() ChainInfoPayload
	ServeBlocks   func(from, to uint64) ([]json.RawMessage, error)
	ApplyBlocks   func(senderID string, blocks []json.RawMessage)
}

// Node is a FractalChain peer: a TCP listener/dialer exchanging
// length-prefixed JSON envelopes (spec §4.6).
type Node struct {
	id   string
	cfg  Config
	addr string

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	listener net.Listener

	mu    sync.RWMutex
	peers map[string]*peerState

	peerStore *PeerStore
	banMgr    *BanManager

	seenMu sync.Mutex
	seen   map[string]time.Time

	handlers Handlers
}

// New creates a P2P node. Call Start to begin listening and dialing seeds.
func New(cfg Config) *Node {
	ctx, cancel := context.WithCancel(context.Background())
	n := &Node{
		id:     cfg.NodeID,
		cfg:    cfg,
		addr:   fmt.Sprintf("%s:%d", cfg.ListenAddr, cfg.Port),
		ctx:    ctx,
		cancel: cancel,
		peers:  make(map[string]*peerState),
		seen:   make(map[string]time.Time),
	}
	if cfg.DB != nil {
		n.peerStore = NewPeerStore(cfg.DB)
	}
	return n
}

// SetHandlers registers the chain-state callbacks. Must be called before
// Start.
func (n *Node) SetHandlers(h Handlers) {
	n.handlers = h
}

// ID returns this node's advertised peer ID.
func (n *Node) ID() string { return n.id }

// Addr returns the actual listening address, resolved after Start (useful
// when Config.Port is 0 and the OS assigns an ephemeral port).
func (n *Node) Addr() string {
	if n.listener != nil {
		return n.listener.Addr().String()
	}
	return n.addr
}

// Start begins listening for inbound connections, dials configured seeds,
// loads any persisted peers and bans, and launches the background
// maintenance loops (spec §4.6/§5).
func (n *Node) Start() error {
	var banStore *BanStore
	if n.cfg.DB != nil {
		banStore = NewBanStore(n.cfg.DB)
	}
	n.banMgr = NewBanManager(banStore, n)
	n.banMgr.LoadBans()

	ln, err := net.Listen("tcp", n.addr)
	if err != nil {
		return fmt.Errorf("p2p: listen %s: %w", n.addr, err)
	}
	n.listener = ln

	n.wg.Add(1)
	go n.acceptLoop()

	for _, seed := range n.cfg.Seeds {
		seed := seed
		n.wg.Add(1)
		go func() {
			defer n.wg.Done()
			if err := n.Dial(seed); err != nil {
				klog.P2P.Warn().Str("addr", seed).Err(err).Msg("seed dial failed")
			}
		}()
	}

	if n.peerStore != nil {
		go n.reconnectPersistedPeers()
	}

	n.wg.Add(4)
	go n.discoveryLoop()
	go n.pingLoop()
	go n.seenGCLoop()
	go n.staleLoop()

	return nil
}

// Stop cancels all background loops and closes every connection.
func (n *Node) Stop() error {
	n.cancel()
	if n.listener != nil {
		n.listener.Close()
	}
	n.mu.RLock()
	for _, p := range n.peers {
		p.close()
	}
	n.mu.RUnlock()
	n.wg.Wait()
	return nil
}

func (n *Node) acceptLoop() {
	defer n.wg.Done()
	for {
		conn, err := n.listener.Accept()
		if err != nil {
			select {
			case <-n.ctx.Done():
				return
			default:
				klog.P2P.Warn().Err(err).Msg("accept error")
				continue
			}
		}
		n.wg.Add(1)
		go n.handleInbound(conn)
	}
}

// Dial opens an outbound connection to addr ("host:port") and performs the
// handshake.
func (n *Node) Dial(addr string) error {
	if n.banMgr.IsBanned(addr) {
		return ErrBanned
	}
	conn, err := net.DialTimeout("tcp", addr, dialTimeout)
	if err != nil {
		return fmt.Errorf("p2p: dial %s: %w", addr, err)
	}
	n.wg.Add(1)
	go n.handleOutbound(conn, addr)
	return nil
}

func (n *Node) handleInbound(conn net.Conn) {
	defer n.wg.Done()
	p, err := n.serverHandshake(conn)
	if err != nil {
		klog.P2P.Debug().Err(err).Str("addr", conn.RemoteAddr().String()).Msg("inbound handshake failed")
		conn.Close()
		return
	}
	n.runPeer(p)
}

func (n *Node) handleOutbound(conn net.Conn, addr string) {
	defer n.wg.Done()
	p, err := n.clientHandshake(conn, addr)
	if err != nil {
		klog.P2P.Debug().Err(err).Str("addr", addr).Msg("outbound handshake failed")
		conn.Close()
		return
	}
	n.runPeer(p)
}

func (n *Node) runPeer(p *peerState) {
	if !n.addPeer(p) {
		p.close()
		return
	}
	defer n.removePeer(p.id)

	klog.P2P.Info().Str("peer", p.id).Bool("outbound", p.outbound).Msg("peer connected")
	n.readLoop(p)
}

func (n *Node) addPeer(p *peerState) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.cfg.MaxPeers > 0 && len(n.peers) >= n.cfg.MaxPeers {
		return false
	}
	if _, exists := n.peers[p.id]; exists {
		return false
	}
	n.peers[p.id] = p
	return true
}

func (n *Node) removePeer(id string) {
	n.mu.Lock()
	p, ok := n.peers[id]
	if ok {
		delete(n.peers, id)
	}
	n.mu.Unlock()
	if ok {
		p.close()
	}
}

// RecordOffense reports a peer misbehavior to the ban manager (e.g. an
// invalid block or transaction rejected by the chain-state owner).
func (n *Node) RecordOffense(peerID string, penalty int, reason string) {
	if n.banMgr != nil {
		n.banMgr.RecordOffense(peerID, penalty, reason)
	}
}

// DisconnectPeer closes the connection to a peer by ID, used by BanManager.
func (n *Node) DisconnectPeer(id string) error {
	n.mu.RLock()
	p, ok := n.peers[id]
	n.mu.RUnlock()
	if !ok {
		return ErrNotConnected
	}
	n.removePeer(id)
	_ = p
	return nil
}

// PeerCount returns the number of currently connected peers.
func (n *Node) PeerCount() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.peers)
}

// Peers returns a snapshot of connected peer info (spec §6 get_peer_info).
func (n *Node) Peers() []PeerInfo {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]PeerInfo, 0, len(n.peers))
	for _, p := range n.peers {
		out = append(out, p.info())
	}
	return out
}

func (n *Node) peerByID(id string) (*peerState, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	p, ok := n.peers[id]
	return p, ok
}

func (n *Node) allPeersExcept(excludeID string) []*peerState {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]*peerState, 0, len(n.peers))
	for id, p := range n.peers {
		if id != excludeID {
			out = append(out, p)
		}
	}
	return out
}

func (n *Node) now() float64 {
	return float64(time.Now().Unix())
}
