package block

import (
	"fmt"

	"github.com/fractalchain/fractald/pkg/crypto"
	"github.com/fractalchain/fractald/pkg/types"
)

// headerHashPayload is the pre-filter's cheap candidate: every block_hash
// field except fractal_proof, with nonce substituted in its place (spec
// §3, "the header hash used by the pre-filter uses the same fields except
// it substitutes only nonce for the full fractal proof").
type headerHashPayload struct {
	Index        uint64        `json:"index"`
	Timestamp    float64       `json:"timestamp"`
	PreviousHash string        `json:"previous_hash"`
	MerkleRoot   string        `json:"merkle_root"`
	MinerAddress types.Address `json:"miner_address"`
	Nonce        uint64        `json:"nonce"`
}

// HeaderHash computes the cheap pre-filter hash for a candidate nonce given
// the block's other already-known fields. The miner's nonce loop calls this
// before attempting the expensive fractal search (spec §4.3); the header
// pre-filter itself (leading hex-zero count) is pkg/fractal.HeaderHashPasses.
func HeaderHash(index uint64, timestamp float64, previousHash string, merkleRoot string, minerAddress types.Address, nonce uint64) (string, error) {
	h, err := crypto.CanonicalHash(headerHashPayload{
		Index:        index,
		Timestamp:    timestamp,
		PreviousHash: previousHash,
		MerkleRoot:   merkleRoot,
		MinerAddress: minerAddress,
		Nonce:        nonce,
	})
	if err != nil {
		return "", fmt.Errorf("block: header hash: %w", err)
	}
	return h, nil
}
