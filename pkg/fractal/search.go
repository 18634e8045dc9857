package fractal

import (
	"context"
	"errors"
	"fmt"

	"github.com/fractalchain/fractald/pkg/crypto"
	"github.com/fractalchain/fractald/pkg/types"
)

// ErrSearchExhausted is returned when FindSolution tries MaxSearchPoints
// rehashed centers without finding one inside the acceptance band.
var ErrSearchExhausted = errors.New("fractal: search space exhausted without a solution")

// FindSolution performs the second-stage fractal search for a block whose
// header hash has already passed the leading-zero pre-filter: it derives
// the fractal seed and Julia constant from (previousHash, minerAddress,
// nonce), then walks the deterministic rehash chain of search centers until
// one yields a box-counting dimension within cfg.Epsilon of
// cfg.TargetDimension with R² > 0.95.
//
// Cancellation is checked between search points only — each bitmap
// computation runs to completion, matching the teacher's "cancel between
// attempts, never mid-grid" contract.
func FindSolution(ctx context.Context, cfg Config, previousHash types.Hash, minerAddress types.Address, nonce uint64, timestamp float64) (Proof, error) {
	seed := DeriveSeed(previousHash, minerAddress, nonce)
	c, err := ComplexFromSeed(seed)
	if err != nil {
		return Proof{}, fmt.Errorf("fractal: derive c: %w", err)
	}

	currentSeed := seed
	for i := 1; i <= cfg.MaxSearchPoints; i++ {
		select {
		case <-ctx.Done():
			return Proof{}, ctx.Err()
		default:
		}

		currentSeed = RehashSeed(currentSeed, i)
		center, err := ComplexFromSeed(currentSeed)
		if err != nil {
			return Proof{}, fmt.Errorf("fractal: derive center: %w", err)
		}

		bitmap := ComputeBitmap(c, center, cfg)
		result := CalculateDimension(bitmap, cfg)

		if result.RSquared > 0.95 && absf(result.Dimension-cfg.TargetDimension) < cfg.Epsilon {
			dataHash := crypto.Sha256(bitmap.Data)
			return Proof{
				Nonce:             nonce,
				FractalSeed:       seed,
				SolutionPointReal: real(center),
				SolutionPointImag: imag(center),
				FractalDimension:  result.Dimension,
				FractalDataHash:   dataHash.String(),
				Timestamp:         timestamp,
			}, nil
		}
	}

	return Proof{}, ErrSearchExhausted
}

func absf(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
