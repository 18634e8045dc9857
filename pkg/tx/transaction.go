// Package tx defines the account-based transaction type and its validation.
package tx

import (
	"encoding/hex"
	"fmt"

	"github.com/fractalchain/fractald/pkg/crypto"
	"github.com/fractalchain/fractald/pkg/types"
)

// Transaction moves a signed amount of coin from sender to recipient,
// with an additional fee paid to whichever miner includes it.
type Transaction struct {
	Sender      types.Address `json:"sender"`
	Recipient   types.Address `json:"recipient"`
	Amount      types.Amount  `json:"amount"`
	Fee         types.Amount  `json:"fee"`
	Timestamp   float64       `json:"timestamp"`
	Signature   string        `json:"signature"`
	PublicKey   string        `json:"public_key"`
	TxHash      string        `json:"tx_hash"`
}

// signingPayload is the subset of fields hashed and signed: everything
// except signature, public_key, and tx_hash itself.
type signingPayload struct {
	Sender    types.Address `json:"sender"`
	Recipient types.Address `json:"recipient"`
	Amount    types.Amount  `json:"amount"`
	Fee       types.Amount  `json:"fee"`
	Timestamp float64       `json:"timestamp"`
}

func (t *Transaction) payload() signingPayload {
	return signingPayload{
		Sender:    t.Sender,
		Recipient: t.Recipient,
		Amount:    t.Amount,
		Fee:       t.Fee,
		Timestamp: t.Timestamp,
	}
}

// SigningHash returns the canonical SHA-256 hash of the transaction's
// signing payload — the same bytes both Sign and tx_hash operate over.
func (t *Transaction) SigningHash() (types.Hash, error) {
	canon, err := crypto.CanonicalHash(t.payload())
	if err != nil {
		return types.Hash{}, fmt.Errorf("tx: signing hash: %w", err)
	}
	return types.HexToHash(canon)
}

// ComputeTxHash recomputes and returns tx_hash without mutating the receiver.
func (t *Transaction) ComputeTxHash() (string, error) {
	h, err := t.SigningHash()
	if err != nil {
		return "", err
	}
	return h.String(), nil
}

// Finalize computes and stores TxHash from the current field values. Call
// after Amount/Fee/Sender/Recipient/Timestamp are set and (for non-coinbase
// transactions) after Sign.
func (t *Transaction) Finalize() error {
	h, err := t.ComputeTxHash()
	if err != nil {
		return err
	}
	t.TxHash = h
	return nil
}

// IsCoinbase reports whether this is a coinbase (block-reward) transaction.
func (t *Transaction) IsCoinbase() bool {
	return t.Sender == types.CoinbaseAddress
}

// IsMint reports whether this transaction creates coin from a sentinel
// sender (coinbase or genesis) rather than transferring an existing
// balance, and therefore carries no verifiable signature.
func (t *Transaction) IsMint() bool {
	return t.Sender == types.CoinbaseAddress || t.Sender == types.GenesisAddress
}

// Sign signs the transaction's signing hash with priv and stores the
// hex-encoded signature and public key. Only meaningful for non-coinbase
// transactions.
func (t *Transaction) Sign(priv *crypto.PrivateKey) error {
	h, err := t.SigningHash()
	if err != nil {
		return err
	}
	sig, err := priv.Sign(h[:])
	if err != nil {
		return fmt.Errorf("tx: sign: %w", err)
	}
	t.Signature = hex.EncodeToString(sig)
	t.PublicKey = hex.EncodeToString(priv.PublicKey())
	return nil
}

// VerifySignature checks the transaction's signature against its public key
// and signing hash. Always true for coinbase transactions, which carry no
// cryptographic signature by design (spec §3).
func (t *Transaction) VerifySignature() bool {
	if t.IsMint() {
		return true
	}
	h, err := t.SigningHash()
	if err != nil {
		return false
	}
	sig, err := hex.DecodeString(t.Signature)
	if err != nil {
		return false
	}
	pub, err := hex.DecodeString(t.PublicKey)
	if err != nil {
		return false
	}
	return crypto.Verify(pub, h[:], sig)
}
