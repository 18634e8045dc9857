package p2p

import (
	"encoding/json"
	"time"

	klog "github.com/fractalchain/fractald/internal/log"
)

func (n *Node) handleGetChainInfo(p *peerState) {
	if n.handlers.ChainInfo == nil {
		return
	}
	info := n.handlers.ChainInfo()
	env, err := Encode(MsgChainInfo, n.id, n.now(), info)
	if err != nil {
		return
	}
	p.send(env)
}

// handleChainInfo compares a peer's advertised height to ours and, if the
// peer is ahead, requests the missing blocks in a window of at most
// MaxSyncWindow, throttled to one request per SyncThrottle per peer (spec
// §4.6).
func (n *Node) handleChainInfo(p *peerState, env *Envelope) {
	var info ChainInfoPayload
	if err := json.Unmarshal(env.Payload, &info); err != nil {
		return
	}
	p.mu.Lock()
	p.height = info.Height
	p.mu.Unlock()

	if n.handlers.ChainInfo == nil {
		return
	}
	localHeight := n.handlers.ChainInfo().Height
	if info.Height <= localHeight {
		return
	}

	p.mu.Lock()
	if time.Since(p.lastSyncRequest) < SyncThrottle {
		p.mu.Unlock()
		return
	}
	p.lastSyncRequest = time.Now()
	p.mu.Unlock()

	to := info.Height
	if to-localHeight > MaxSyncWindow {
		to = localHeight + MaxSyncWindow
	}
	env2, err := Encode(MsgGetBlocks, n.id, n.now(), GetBlocksPayload{FromHeight: localHeight + 1, ToHeight: to})
	if err != nil {
		return
	}
	p.send(env2)
}

func (n *Node) handleGetBlocks(p *peerState, env *Envelope) {
	if n.handlers.ServeBlocks == nil {
		return
	}
	var req GetBlocksPayload
	if err := json.Unmarshal(env.Payload, &req); err != nil {
		return
	}
	if req.ToHeight < req.FromHeight {
		return
	}
	if req.ToHeight-req.FromHeight+1 > MaxSyncWindow {
		req.ToHeight = req.FromHeight + MaxSyncWindow - 1
	}
	blocks, err := n.handlers.ServeBlocks(req.FromHeight, req.ToHeight)
	if err != nil {
		klog.P2P.Warn().Err(err).Str("peer", p.id).Msg("serve blocks failed")
		return
	}
	reply, err := Encode(MsgBlocks, n.id, n.now(), BlocksPayload{Blocks: blocks})
	if err != nil {
		return
	}
	p.send(reply)
}

func (n *Node) handleBlocks(p *peerState, env *Envelope) {
	if n.handlers.ApplyBlocks == nil {
		return
	}
	var payload BlocksPayload
	if err := json.Unmarshal(env.Payload, &payload); err != nil {
		return
	}
	n.handlers.ApplyBlocks(p.id, payload.Blocks)
}

// RequestChainInfo sends a GET_CHAIN_INFO probe to one peer.
func (n *Node) RequestChainInfo(peerID string) error {
	p, ok := n.peerByID(peerID)
	if !ok {
		return ErrNotConnected
	}
	env, err := Encode(MsgGetChainInfo, n.id, n.now(), struct{}{})
	if err != nil {
		return err
	}
	return p.send(env)
}

// discoveryLoop periodically asks every connected peer for their peer
// list (spec §4.6 "GET_PEERS discovery every 60s").
func (n *Node) discoveryLoop() {
	defer n.wg.Done()
	ticker := time.NewTicker(discoveryInterval)
	defer ticker.Stop()
	for {
		select {
		case <-n.ctx.Done():
			return
		case <-ticker.C:
			env, err := Encode(MsgGetPeers, n.id, n.now(), struct{}{})
			if err != nil {
				continue
			}
			for _, p := range n.allPeersExcept("") {
				p.send(env)
				qenv, err := Encode(MsgGetChainInfo, n.id, n.now(), struct{}{})
				if err == nil {
					p.send(qenv)
				}
			}
		}
	}
}

// pingLoop sends a liveness PING to every peer every 30s (spec §4.6).
func (n *Node) pingLoop() {
	defer n.wg.Done()
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	var nonce uint64
	for {
		select {
		case <-n.ctx.Done():
			return
		case <-ticker.C:
			nonce++
			env, err := Encode(MsgPing, n.id, n.now(), PingPayload{Nonce: nonce})
			if err != nil {
				continue
			}
			for _, p := range n.allPeersExcept("") {
				p.send(env)
			}
		}
	}
}

// seenGCLoop evicts flood-dedup entries older than seenTTL every 300s
// (spec §4.6).
func (n *Node) seenGCLoop() {
	defer n.wg.Done()
	ticker := time.NewTicker(seenGCInterval)
	defer ticker.Stop()
	for {
		select {
		case <-n.ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-seenTTL)
			n.seenMu.Lock()
			for id, seenAt := range n.seen {
				if seenAt.Before(cutoff) {
					delete(n.seen, id)
				}
			}
			n.seenMu.Unlock()
		}
	}
}

// staleLoop disconnects peers that have sent nothing in staleInterval
// (spec §4.6).
func (n *Node) staleLoop() {
	defer n.wg.Done()
	ticker := time.NewTicker(staleInterval)
	defer ticker.Stop()
	for {
		select {
		case <-n.ctx.Done():
			return
		case <-ticker.C:
			for _, p := range n.allPeersExcept("") {
				if p.isStale(staleInterval) {
					klog.P2P.Info().Str("peer", p.id).Msg("disconnecting stale peer")
					n.removePeer(p.id)
				}
			}
		}
	}
}

// reconnectPersistedPeers dials previously known peers once at startup,
// pruning stale records first.
func (n *Node) reconnectPersistedPeers() {
	n.peerStore.PruneStale(staleThreshold)
	records, err := n.peerStore.LoadAll()
	if err != nil {
		return
	}
	for _, rec := range records {
		if rec.ID == n.id {
			continue
		}
		if _, ok := n.peerByID(rec.ID); ok {
			continue
		}
		if err := n.Dial(rec.Addr); err != nil {
			klog.P2P.Debug().Str("addr", rec.Addr).Err(err).Msg("reconnect failed")
		}
	}
}
