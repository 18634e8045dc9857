package tx

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/fractalchain/fractald/pkg/crypto"
)

// Validation errors. Structural only — balance and duplicate-tx_hash
// checks require chain state and live in internal/chain.
var (
	ErrInvalidSender      = errors.New("invalid sender address")
	ErrInvalidRecipient   = errors.New("invalid recipient address")
	ErrNonPositiveAmount  = errors.New("amount must be strictly positive")
	ErrNegativeFee        = errors.New("fee must not be negative")
	ErrBadTimestamp       = errors.New("timestamp out of range")
	ErrMissingSignature   = errors.New("missing signature")
	ErrMissingPublicKey   = errors.New("missing public key")
	ErrInvalidSignature   = errors.New("signature does not verify")
	ErrTxHashMismatch     = errors.New("tx_hash does not match recomputation")
	ErrCoinbaseSelfTarget = errors.New("coinbase/genesis transaction may not target itself as recipient")
)

// Validate checks the transaction's structural invariants: well-formed
// addresses, a recipient that is not a sentinel, a strictly positive amount
// (mint transactions included), a non-negative fee (zero for mints), a
// verifying signature whose public key derives the sender (skipped for
// mints), and a matching tx_hash. It does NOT check sender balance or
// duplicate tx_hash — those require chain state (internal/chain).
func (t *Transaction) Validate() error {
	if err := t.Sender.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSender, err)
	}
	if err := t.Recipient.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecipient, err)
	}
	if t.Recipient.IsSentinel() {
		return fmt.Errorf("%w", ErrCoinbaseSelfTarget)
	}

	if t.Amount <= 0 {
		return fmt.Errorf("%w: got %s", ErrNonPositiveAmount, t.Amount)
	}
	if t.Fee < 0 {
		return fmt.Errorf("%w: got %s", ErrNegativeFee, t.Fee)
	}

	if t.IsMint() {
		if t.Fee != 0 {
			return fmt.Errorf("%w: mint transaction must carry zero fee", ErrNegativeFee)
		}
	} else {
		if t.Signature == "" {
			return ErrMissingSignature
		}
		if t.PublicKey == "" {
			return ErrMissingPublicKey
		}
		if !t.VerifySignature() {
			return ErrInvalidSignature
		}
		pub, err := hex.DecodeString(t.PublicKey)
		if err != nil {
			return fmt.Errorf("%w: malformed public key", ErrInvalidSignature)
		}
		if derived := crypto.AddressOf(pub); derived != t.Sender {
			return fmt.Errorf("%w: public key does not derive sender address", ErrInvalidSignature)
		}
	}

	wantHash, err := t.ComputeTxHash()
	if err != nil {
		return fmt.Errorf("tx: compute hash: %w", err)
	}
	if t.TxHash != wantHash {
		return fmt.Errorf("%w: got %s, want %s", ErrTxHashMismatch, t.TxHash, wantHash)
	}

	return nil
}
