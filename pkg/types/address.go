package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// AddressHexLen is the length in hex characters of a regular address
// (20 bytes of RIPEMD160(SHA256(pubkey))).
const AddressHexLen = 40

// Sentinel addresses used for coinbase payouts and the genesis block.
const (
	CoinbaseAddress = Address("COINBASE")
	GenesisAddress  = Address("GENESIS")
)

// ErrInvalidAddress is returned when an address is neither a known
// sentinel nor a well-formed 40-character lowercase hex string.
var ErrInvalidAddress = errors.New("invalid address")

// Address identifies a transaction sender or recipient. It is string-backed
// rather than a fixed-size byte array because FractalChain reserves two
// sentinel values, "COINBASE" and "GENESIS", that are not valid public-key
// hashes but still flow through the same balance-ledger code paths.
type Address string

// IsZero reports whether the address is the empty string.
func (a Address) IsZero() bool {
	return a == ""
}

// IsSentinel reports whether a is the coinbase or genesis sentinel.
func (a Address) IsSentinel() bool {
	return a == CoinbaseAddress || a == GenesisAddress
}

// String returns the address as a plain string.
func (a Address) String() string {
	return string(a)
}

// Validate checks that a is one of the reserved sentinels or exactly 40
// lowercase hex characters.
func (a Address) Validate() error {
	if a.IsSentinel() {
		return nil
	}
	s := string(a)
	if len(s) != AddressHexLen {
		return fmt.Errorf("%w: %q must be %q, %q, or %d lowercase hex chars", ErrInvalidAddress, s, CoinbaseAddress, GenesisAddress, AddressHexLen)
	}
	for _, c := range s {
		if !(c >= '0' && c <= '9') && !(c >= 'a' && c <= 'f') {
			return fmt.Errorf("%w: %q contains non-lowercase-hex character %q", ErrInvalidAddress, s, c)
		}
	}
	return nil
}

// MarshalJSON encodes the address as a plain JSON string.
func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(a))
}

// UnmarshalJSON decodes a plain JSON string into an address.
func (a *Address) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*a = Address(s)
	return nil
}

// ParseAddress normalizes and validates a user-supplied address string.
// Hex addresses are lowercased before validation; sentinels are matched
// case-sensitively.
func ParseAddress(s string) (Address, error) {
	if s == CoinbaseAddress.String() || s == GenesisAddress.String() {
		return Address(s), nil
	}
	a := Address(strings.ToLower(s))
	if err := a.Validate(); err != nil {
		return "", err
	}
	return a, nil
}
