package fractal

import (
	"fmt"
	"strconv"

	"github.com/fractalchain/fractald/pkg/crypto"
	"github.com/fractalchain/fractald/pkg/types"
)

// DeriveSeed computes fractal_seed = hex(SHA256(previous_hash || miner_address || decimal(nonce))),
// where previous_hash is its 64-hex string form and || is bare ASCII
// concatenation with no separator.
func DeriveSeed(previousHash types.Hash, minerAddress types.Address, nonce uint64) string {
	buf := previousHash.String() + minerAddress.String() + strconv.FormatUint(nonce, 10)
	h := crypto.Sha256([]byte(buf))
	return h.String()
}

// RehashSeed computes seed_i = hex(SHA256(seed_{i-1} || decimal(i))), the
// deterministic search-point chain used by FindSolution.
func RehashSeed(previousSeed string, i int) string {
	buf := previousSeed + strconv.Itoa(i)
	h := crypto.Sha256([]byte(buf))
	return h.String()
}

// ComplexFromSeed splits a hex seed into two 64-bit halves R (first 16 hex
// chars) and I (next 16 hex chars), each mapped from [0, 2^64) into
// [-1, 1), yielding a complex number R' + I'i. Seeds shorter than 32 hex
// characters are left-padded with '0'. Used both to derive the Julia
// constant c from fractal_seed and to derive each search center from a
// rehashed seed.
func ComplexFromSeed(seedHex string) (complex128, error) {
	if len(seedHex) < 32 {
		seedHex = padLeft(seedHex, 32)
	}
	rHex := seedHex[:16]
	iHex := seedHex[16:32]

	r, err := strconv.ParseUint(rHex, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("fractal: invalid seed real half %q: %w", rHex, err)
	}
	i, err := strconv.ParseUint(iHex, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("fractal: invalid seed imag half %q: %w", iHex, err)
	}

	return complex(unitInterval(r), unitInterval(i)), nil
}

// unitInterval maps a uint64 uniformly from [0, 2^64) into [-1, 1).
func unitInterval(v uint64) float64 {
	const twoPow64 = 18446744073709551616.0 // 2^64
	return (float64(v)/twoPow64)*2 - 1
}

func padLeft(s string, n int) string {
	if len(s) >= n {
		return s
	}
	padded := make([]byte, n)
	for i := range padded {
		padded[i] = '0'
	}
	copy(padded[n-len(s):], s)
	return string(padded)
}
