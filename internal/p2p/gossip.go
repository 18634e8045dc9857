package p2p

import (
	"encoding/json"
	"time"

	klog "github.com/fractalchain/fractald/internal/log"
)

// readLoop consumes envelopes from a connected peer until the connection
// fails or is closed, dispatching each to its handler (spec §4.6 §9).
func (n *Node) readLoop(p *peerState) {
	for {
		env, err := ReadEnvelope(p.conn)
		if err != nil {
			return
		}
		if !p.allow(len(env.Payload)) {
			klog.P2P.Debug().Str("peer", p.id).Str("type", string(env.Type)).Msg("rate limit dropped message")
			continue
		}
		p.touch()
		n.dispatch(p, env)
	}
}

// dispatch routes one envelope by its exhaustive MessageType (spec §9: no
// reflective lookup).
func (n *Node) dispatch(p *peerState, env *Envelope) {
	switch env.Type {
	case MsgHello:
		// Handshake already completed; a second HELLO is ignored.
	case MsgGetPeers:
		n.handleGetPeers(p)
	case MsgPeers:
		n.handlePeers(env)
	case MsgNewTransaction:
		n.handleFlood(p, env, n.handlers.OnTransaction)
	case MsgNewBlock, MsgBlockAnnounce:
		n.handleFlood(p, env, n.handlers.OnBlock)
	case MsgGetChainInfo:
		n.handleGetChainInfo(p)
	case MsgChainInfo:
		n.handleChainInfo(p, env)
	case MsgGetBlocks:
		n.handleGetBlocks(p, env)
	case MsgBlocks:
		n.handleBlocks(p, env)
	case MsgPing:
		n.handlePing(p, env)
	case MsgPong:
		// touch() above already recorded liveness.
	case MsgError:
		n.handleError(p, env)
	default:
		if n.banMgr != nil {
			n.banMgr.RecordOffense(p.id, PenaltyInvalidTx, "unknown message type")
		}
	}
}

// handleFlood implements the NEW_BLOCK/NEW_TRANSACTION propagation rule: a
// message is delivered to the local handler and, only once accepted,
// re-broadcast to every other peer at most once (spec §4.6, §9.7 — an
// invalid block or transaction is never amplified to the rest of the
// network).
func (n *Node) handleFlood(p *peerState, env *Envelope, handler func(senderID string, payload []byte) error) {
	if n.alreadySeen(env.MsgID) {
		return
	}
	n.markSeen(env.MsgID)
	if handler != nil {
		if err := handler(p.id, env.Payload); err != nil {
			return
		}
	}
	n.rebroadcast(env, p.id)
}

func (n *Node) rebroadcast(env *Envelope, excludeID string) {
	for _, peer := range n.allPeersExcept(excludeID) {
		peer.send(env)
	}
}

// BroadcastBlock floods a freshly mined or validated block to every peer
// (spec §4.6 NEW_BLOCK).
func (n *Node) BroadcastBlock(payload []byte) error {
	env, err := Encode(MsgNewBlock, n.id, n.now(), json.RawMessage(payload))
	if err != nil {
		return err
	}
	n.markSeen(env.MsgID)
	for _, peer := range n.allPeersExcept("") {
		peer.send(env)
	}
	return nil
}

// BroadcastTransaction floods a newly accepted mempool transaction to
// every peer (spec §4.6 NEW_TRANSACTION).
func (n *Node) BroadcastTransaction(payload []byte) error {
	env, err := Encode(MsgNewTransaction, n.id, n.now(), json.RawMessage(payload))
	if err != nil {
		return err
	}
	n.markSeen(env.MsgID)
	for _, peer := range n.allPeersExcept("") {
		peer.send(env)
	}
	return nil
}

func (n *Node) alreadySeen(msgID string) bool {
	n.seenMu.Lock()
	defer n.seenMu.Unlock()
	_, ok := n.seen[msgID]
	return ok
}

func (n *Node) markSeen(msgID string) {
	n.seenMu.Lock()
	n.seen[msgID] = time.Now()
	n.seenMu.Unlock()
}

func (n *Node) handleGetPeers(p *peerState) {
	var addrs []PeerAddr
	n.mu.RLock()
	for id, peer := range n.peers {
		if id == p.id {
			continue
		}
		addrs = append(addrs, PeerAddr{ID: id, Addr: peer.addr})
	}
	n.mu.RUnlock()

	env, err := Encode(MsgPeers, n.id, n.now(), PeersPayload{Peers: addrs})
	if err != nil {
		return
	}
	p.send(env)
}

func (n *Node) handlePeers(env *Envelope) {
	var payload PeersPayload
	if err := json.Unmarshal(env.Payload, &payload); err != nil {
		return
	}
	if n.peerStore == nil {
		return
	}
	for _, addr := range payload.Peers {
		if addr.ID == n.id {
			continue
		}
		n.peerStore.Save(PeerRecord{
			ID:       addr.ID,
			Addr:     addr.Addr,
			LastSeen: time.Now().Unix(),
			Source:   "gossip",
		})
	}
}

func (n *Node) handlePing(p *peerState, env *Envelope) {
	var ping PingPayload
	json.Unmarshal(env.Payload, &ping)
	reply, err := Encode(MsgPong, n.id, n.now(), PongPayload{Nonce: ping.Nonce})
	if err != nil {
		return
	}
	p.send(reply)
}

func (n *Node) handleError(p *peerState, env *Envelope) {
	var e ErrorPayload
	json.Unmarshal(env.Payload, &e)
	klog.P2P.Debug().Str("peer", p.id).Str("message", e.Message).Msg("peer reported error")
}
