package mempool

import (
	"encoding/json"
	"fmt"

	"github.com/fractalchain/fractald/pkg/tx"
)

// DefaultMaxTxSize is the maximum canonical-JSON-encoded transaction size in
// bytes, a policy-level cap stricter than nothing but looser than the
// block-level MaxBlockSize (pkg/block.MaxBlockSize) it must fit comfortably
// under.
const DefaultMaxTxSize = 100_000

// Policy defines transaction acceptance rules that are a node's own choice
// rather than a consensus rule — two correct nodes may run different
// policies and still agree on every block.
type Policy struct {
	MaxTxSize int
	MinFee    float64
}

// DefaultPolicy returns a policy with sensible defaults.
func DefaultPolicy() *Policy {
	return &Policy{MaxTxSize: DefaultMaxTxSize}
}

// Check validates a transaction against policy rules, separate from the
// structural/consensus validation performed by tx.Transaction.Validate.
func (p *Policy) Check(t *tx.Transaction) error {
	encoded, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("mempool: encode transaction: %w", err)
	}
	if p.MaxTxSize > 0 && len(encoded) > p.MaxTxSize {
		return fmt.Errorf("mempool: transaction too large: %d bytes, max %d", len(encoded), p.MaxTxSize)
	}
	if p.MinFee > 0 && t.Fee.Float64() < p.MinFee {
		return fmt.Errorf("mempool: fee %s below policy minimum %.8f", t.Fee, p.MinFee)
	}
	return nil
}
