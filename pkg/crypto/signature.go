package crypto

import (
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/fractalchain/fractald/pkg/types"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // required by the address derivation in spec
)

// Signer signs messages with a private key using ECDSA/secp256k1.
type Signer interface {
	// Sign produces an ECDSA signature over a 32-byte hash.
	Sign(hash []byte) ([]byte, error)
	// PublicKey returns the compressed 33-byte public key.
	PublicKey() []byte
}

// Verifier verifies ECDSA/secp256k1 signatures.
type Verifier interface {
	// Verify checks an ECDSA signature against a hash and compressed public key.
	Verify(hash, signature, publicKey []byte) bool
}

// PrivateKey wraps a secp256k1 private key for ECDSA signing.
type PrivateKey struct {
	key *secp256k1.PrivateKey
}

// GenerateKeyPair creates a new random secp256k1 private key.
func GenerateKeyPair() (*PrivateKey, error) {
	key, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	return &PrivateKey{key: key}, nil
}

// PrivateKeyFromBytes creates a PrivateKey from a 32-byte secret.
func PrivateKeyFromBytes(b []byte) (*PrivateKey, error) {
	if len(b) != 32 {
		return nil, fmt.Errorf("private key must be 32 bytes, got %d", len(b))
	}
	key := secp256k1.PrivKeyFromBytes(b)
	return &PrivateKey{key: key}, nil
}

// Sign produces an ECDSA signature over a hash, serialized in DER form.
func (pk *PrivateKey) Sign(hash []byte) ([]byte, error) {
	if len(hash) != 32 {
		return nil, fmt.Errorf("hash must be 32 bytes, got %d", len(hash))
	}
	sig := ecdsa.Sign(pk.key, hash)
	return sig.Serialize(), nil
}

// PublicKey returns the compressed 33-byte public key.
func (pk *PrivateKey) PublicKey() []byte {
	return pk.key.PubKey().SerializeCompressed()
}

// Serialize returns the 32-byte private key scalar.
func (pk *PrivateKey) Serialize() []byte {
	return pk.key.Serialize()
}

// Zero securely zeroes the private key memory.
func (pk *PrivateKey) Zero() {
	pk.key.Zero()
}

// Sign is a package-level convenience wrapper equivalent to
// PrivateKeyFromBytes(priv).Sign(hash).
func Sign(priv, hash []byte) ([]byte, error) {
	pk, err := PrivateKeyFromBytes(priv)
	if err != nil {
		return nil, err
	}
	defer pk.Zero()
	return pk.Sign(hash)
}

// Verify checks an ECDSA signature against a 32-byte hash and a compressed
// public key. Returns false on any malformed input rather than an error,
// matching the teacher's VerifySignature contract.
func Verify(publicKey, hash, signature []byte) bool {
	pubKey, err := secp256k1.ParsePubKey(publicKey)
	if err != nil {
		return false
	}
	sig, err := ecdsa.ParseDERSignature(signature)
	if err != nil {
		return false
	}
	return sig.Verify(hash, pubKey)
}

// ECDSAVerifier implements the Verifier interface.
type ECDSAVerifier struct{}

// Verify checks an ECDSA signature against a hash and compressed public key.
func (v ECDSAVerifier) Verify(hash, signature, publicKey []byte) bool {
	return Verify(publicKey, hash, signature)
}

// AddressOf derives a FractalChain address from a compressed public key:
// hex(RIPEMD160(SHA256(pubkey))), matching the reference implementation's
// KeyPair.get_address.
func AddressOf(pubKey []byte) types.Address {
	sum := Sha256(pubKey)
	r := ripemd160.New()
	r.Write(sum[:])
	digest := r.Sum(nil)
	addr, _ := types.ParseAddress(fmt.Sprintf("%x", digest))
	return addr
}
