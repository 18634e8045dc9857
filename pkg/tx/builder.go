package tx

import (
	"fmt"

	"github.com/fractalchain/fractald/pkg/crypto"
	"github.com/fractalchain/fractald/pkg/types"
)

// Builder constructs transactions incrementally.
type Builder struct {
	tx *Transaction
}

// NewBuilder creates a new transaction builder for a payment from sender
// to recipient.
func NewBuilder(sender, recipient types.Address, amount, fee types.Amount, timestamp float64) *Builder {
	return &Builder{
		tx: &Transaction{
			Sender:    sender,
			Recipient: recipient,
			Amount:    amount,
			Fee:       fee,
			Timestamp: timestamp,
		},
	}
}

// Sign signs the transaction with the given private key and stamps tx_hash.
func (b *Builder) Sign(key *crypto.PrivateKey) error {
	if err := b.tx.Sign(key); err != nil {
		return fmt.Errorf("build tx: %w", err)
	}
	return b.tx.Finalize()
}

// Build returns the constructed transaction. Does NOT validate — call
// tx.Validate() separately.
func (b *Builder) Build() *Transaction {
	return b.tx
}

// NewCoinbase constructs the reward-paying first transaction of a
// non-genesis block. Coinbase transactions carry no cryptographic
// signature; the synthetic signature string "coinbase_block_<index>" marks
// provenance but is never verified (spec §3).
func NewCoinbase(recipient types.Address, amount types.Amount, index uint64, timestamp float64) (*Transaction, error) {
	t := &Transaction{
		Sender:    types.CoinbaseAddress,
		Recipient: recipient,
		Amount:    amount,
		Fee:       0,
		Timestamp: timestamp,
		Signature: fmt.Sprintf("coinbase_block_%d", index),
		PublicKey: "",
	}
	if err := t.Finalize(); err != nil {
		return nil, fmt.Errorf("build coinbase: %w", err)
	}
	return t, nil
}

// NewGenesisTransaction constructs the single transaction of the genesis
// block, minting the initial allocation to recipient.
func NewGenesisTransaction(recipient types.Address, amount types.Amount, timestamp float64) (*Transaction, error) {
	t := &Transaction{
		Sender:    types.GenesisAddress,
		Recipient: recipient,
		Amount:    amount,
		Fee:       0,
		Timestamp: timestamp,
		Signature: "genesis",
		PublicKey: "",
	}
	if err := t.Finalize(); err != nil {
		return nil, fmt.Errorf("build genesis tx: %w", err)
	}
	return t, nil
}
