package p2p

import (
	"net"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultMaxMessagesPerSecond and DefaultMaxBytesPerSecond are the default
// per-peer rate-limit caps (spec §4.6).
const (
	DefaultMaxMessagesPerSecond = 10
	DefaultMaxBytesPerSecond    = 1 << 20 // 1 MiB/s
)

// peerState tracks a connected peer's handshake and liveness data plus its
// per-connection write serialization and rate limiting.
type peerState struct {
	id       string
	conn     net.Conn
	addr     string
	outbound bool // true if we dialed; false if they connected to us

	writeMu sync.Mutex

	mu              sync.Mutex
	height          uint64
	protocolVersion string
	lastSeen        time.Time
	handshakeDone   bool

	msgLimiter  *rate.Limiter
	byteLimiter *rate.Limiter

	lastSyncRequest time.Time // throttles GET_BLOCKS to one per 100ms

	closeOnce sync.Once
	closed    chan struct{}
}

func newPeerState(id string, conn net.Conn, outbound bool) *peerState {
	return &peerState{
		id:          id,
		conn:        conn,
		addr:        conn.RemoteAddr().String(),
		outbound:    outbound,
		lastSeen:    time.Now(),
		msgLimiter:  rate.NewLimiter(rate.Limit(DefaultMaxMessagesPerSecond), DefaultMaxMessagesPerSecond),
		byteLimiter: rate.NewLimiter(rate.Limit(DefaultMaxBytesPerSecond), DefaultMaxBytesPerSecond),
		closed:      make(chan struct{}),
	}
}

// send serializes writes to the connection: only one goroutine may write
// to a net.Conn safely at a time.
func (p *peerState) send(env *Envelope) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	return WriteEnvelope(p.conn, env)
}

// touch records that traffic was just seen from this peer, resetting the
// 300s staleness clock (spec §4.6).
func (p *peerState) touch() {
	p.mu.Lock()
	p.lastSeen = time.Now()
	p.mu.Unlock()
}

func (p *peerState) isStale(threshold time.Duration) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return time.Since(p.lastSeen) > threshold
}

// allow reports whether a message of size n bytes is within this peer's
// rate limits; a violation should cause the message to be dropped (spec
// §4.6 "Rate limit").
func (p *peerState) allow(n int) bool {
	if !p.msgLimiter.Allow() {
		return false
	}
	return p.byteLimiter.AllowN(time.Now(), n)
}

func (p *peerState) close() {
	p.closeOnce.Do(func() {
		close(p.closed)
		p.conn.Close()
	})
}

// PeerInfo is the read-only snapshot returned by Node.Peers() for the
// get_peer_info/get_network_stats interfaces (spec §6).
type PeerInfo struct {
	ID              string    `json:"id"`
	Addr            string    `json:"addr"`
	Outbound        bool      `json:"outbound"`
	Height          uint64    `json:"height"`
	ProtocolVersion string    `json:"protocol_version"`
	LastSeen        time.Time `json:"last_seen"`
}

func (p *peerState) info() PeerInfo {
	p.mu.Lock()
	defer p.mu.Unlock()
	return PeerInfo{
		ID:              p.id,
		Addr:            p.addr,
		Outbound:        p.outbound,
		Height:          p.height,
		ProtocolVersion: p.protocolVersion,
		LastSeen:        p.lastSeen,
	}
}
