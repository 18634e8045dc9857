package p2p

import (
	"encoding/json"
	"time"
)

// PeerAddr is one entry in a PEERS response.
type PeerAddr struct {
	ID   string `json:"id"`
	Addr string `json:"addr"`
}

// PeersPayload is the body of a PEERS message (spec §4.6).
type PeersPayload struct {
	Peers []PeerAddr `json:"peers"`
}

// ChainInfoPayload is the body of a CHAIN_INFO message (spec §4.6).
type ChainInfoPayload struct {
	Height           uint64  `json:"height"`
	TipHash          string  `json:"tip_hash"`
	DifficultyTarget float64 `json:"difficulty_target"`
	HeaderBits       uint8   `json:"header_difficulty_bits"`
}

// GetBlocksPayload requests an inclusive height window [FromHeight,
// ToHeight] of blocks (spec §4.6, synced in windows of 100).
type GetBlocksPayload struct {
	FromHeight uint64 `json:"from_height"`
	ToHeight   uint64 `json:"to_height"`
}

// BlocksPayload carries a window of blocks as opaque JSON, decoded by the
// caller (internal/node) rather than this package.
type BlocksPayload struct {
	Blocks []json.RawMessage `json:"blocks"`
}

// PingPayload/PongPayload carry a nonce so a PING can be matched to its PONG.
type PingPayload struct {
	Nonce uint64 `json:"nonce"`
}

type PongPayload struct {
	Nonce uint64 `json:"nonce"`
}

// ErrorPayload is the body of an ERROR message.
type ErrorPayload struct {
	Message string `json:"message"`
}

// MaxSyncWindow is the maximum number of blocks served per GET_BLOCKS
// request (spec §4.6).
const MaxSyncWindow = 100

// SyncThrottle bounds how often a single peer may be sent a new GET_BLOCKS
// request (spec §4.6 "throttled to 1 request/100ms/peer").
const SyncThrottle = 100 * time.Millisecond
