// Package crypto provides cryptographic primitives for FractalChain.
package crypto

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/fractalchain/fractald/pkg/types"
)

// Sha256 computes a SHA-256 hash of the input data.
func Sha256(data []byte) types.Hash {
	return sha256.Sum256(data)
}

// DoubleSha256 computes Sha256(Sha256(data)).
func DoubleSha256(data []byte) types.Hash {
	first := Sha256(data)
	return Sha256(first[:])
}

// HashConcat hashes the raw-byte concatenation of two hashes. Used where a
// component needs a binary hash chain rather than the merkle tree's
// hex-ASCII concatenation rule (see pkg/block.MerkleRoot).
func HashConcat(a, b types.Hash) types.Hash {
	var buf [64]byte
	copy(buf[:32], a[:])
	copy(buf[32:], b[:])
	return Sha256(buf[:])
}

// CanonicalHash serializes v to JSON with object keys sorted and no
// insignificant whitespace, then returns the hex SHA-256 digest of the
// result. This mirrors the reference implementation's
// `hash_object` (sort_keys=True, no separators) so that two independent
// encoders of the same logical value agree byte-for-byte.
func CanonicalHash(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("canonical hash: marshal: %w", err)
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return "", fmt.Errorf("canonical hash: unmarshal: %w", err)
	}
	canon, err := canonicalize(generic)
	if err != nil {
		return "", fmt.Errorf("canonical hash: canonicalize: %w", err)
	}
	h := Sha256(canon)
	return h.String(), nil
}

// canonicalize re-encodes a decoded JSON value with map keys sorted and
// no whitespace, recursing into nested objects and arrays.
func canonicalize(v any) ([]byte, error) {
	switch val := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		buf := []byte{'{'}
		for i, k := range keys {
			if i > 0 {
				buf = append(buf, ',')
			}
			kb, err := json.Marshal(k)
			if err != nil {
				return nil, err
			}
			buf = append(buf, kb...)
			buf = append(buf, ':')
			vb, err := canonicalize(val[k])
			if err != nil {
				return nil, err
			}
			buf = append(buf, vb...)
		}
		buf = append(buf, '}')
		return buf, nil
	case []any:
		buf := []byte{'['}
		for i, elem := range val {
			if i > 0 {
				buf = append(buf, ',')
			}
			eb, err := canonicalize(elem)
			if err != nil {
				return nil, err
			}
			buf = append(buf, eb...)
		}
		buf = append(buf, ']')
		return buf, nil
	default:
		return json.Marshal(val)
	}
}
