package p2p

import (
	"encoding/json"
	"sync"
	"testing"
	"time"
)

func waitForCondition(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not met within %s", timeout)
}

func newTestNode(t *testing.T, id string) *Node {
	t.Helper()
	n := New(Config{ListenAddr: "127.0.0.1", Port: 0, NodeID: id})
	if err := n.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { n.Stop() })
	return n
}

func TestNode_HandshakeAndConnect(t *testing.T) {
	a := newTestNode(t, "node-a")
	b := newTestNode(t, "node-b")

	if err := b.Dial(a.Addr()); err != nil {
		t.Fatalf("Dial: %v", err)
	}

	waitForCondition(t, 2*time.Second, func() bool {
		return a.PeerCount() == 1 && b.PeerCount() == 1
	})
}

func TestNode_BroadcastBlockDeduplicatesAndDelivers(t *testing.T) {
	a := newTestNode(t, "node-a")
	b := newTestNode(t, "node-b")
	c := newTestNode(t, "node-c")

	if err := b.Dial(a.Addr()); err != nil {
		t.Fatalf("Dial b->a: %v", err)
	}
	if err := c.Dial(a.Addr()); err != nil {
		t.Fatalf("Dial c->a: %v", err)
	}
	waitForCondition(t, 2*time.Second, func() bool {
		return a.PeerCount() == 2
	})

	var mu sync.Mutex
	received := map[string]int{}
	handler := func(name string) func(senderID string, payload []byte) error {
		return func(senderID string, payload []byte) error {
			mu.Lock()
			received[name]++
			mu.Unlock()
			return nil
		}
	}
	b.SetHandlers(Handlers{OnBlock: handler("b")})
	c.SetHandlers(Handlers{OnBlock: handler("c")})

	payload, _ := json.Marshal(map[string]int{"index": 1})
	if err := a.BroadcastBlock(payload); err != nil {
		t.Fatalf("BroadcastBlock: %v", err)
	}

	waitForCondition(t, 2*time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return received["b"] == 1 && received["c"] == 1
	})
}

func TestNode_ChainInfoTriggersSync(t *testing.T) {
	a := newTestNode(t, "node-a")
	b := newTestNode(t, "node-b")

	var served []uint64
	var mu sync.Mutex
	a.SetHandlers(Handlers{
		ChainInfo: func() ChainInfoPayload { return ChainInfoPayload{Height: 0} },
		ServeBlocks: func(from, to uint64) ([]json.RawMessage, error) {
			mu.Lock()
			served = append(served, from, to)
			mu.Unlock()
			return []json.RawMessage{json.RawMessage(`{"index":1}`)}, nil
		},
	})

	applied := make(chan struct{}, 1)
	b.SetHandlers(Handlers{
		ChainInfo: func() ChainInfoPayload { return ChainInfoPayload{Height: 0} },
		ApplyBlocks: func(senderID string, blocks []json.RawMessage) {
			applied <- struct{}{}
		},
	})

	if err := b.Dial(a.Addr()); err != nil {
		t.Fatalf("Dial: %v", err)
	}
	waitForCondition(t, 2*time.Second, func() bool { return b.PeerCount() == 1 })

	if err := b.RequestChainInfo(a.id); err != nil {
		t.Fatalf("RequestChainInfo: %v", err)
	}

	// a reports height 5, ahead of b's 0, which should trigger GET_BLOCKS.
	a.mu.RLock()
	peerOnA, ok := a.peers[b.id]
	a.mu.RUnlock()
	if !ok {
		t.Fatal("expected a to see b as a peer")
	}
	env, err := Encode(MsgChainInfo, a.id, a.now(), ChainInfoPayload{Height: 5})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if err := peerOnA.send(env); err != nil {
		t.Fatalf("send: %v", err)
	}

	select {
	case <-applied:
	case <-time.After(2 * time.Second):
		t.Fatal("expected ApplyBlocks to be called after a chain_info ahead-of-us message")
	}
}
