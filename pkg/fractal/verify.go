package fractal

import (
	"errors"
	"fmt"

	"github.com/fractalchain/fractald/pkg/types"
)

// Verification failure sentinels. Callers wrap these with fmt.Errorf("%w: ...")
// to attach the offending values.
var (
	ErrSeedMismatch        = errors.New("fractal: seed does not match derivation")
	ErrDimensionOutOfBand  = errors.New("fractal: dimension outside acceptance band")
	ErrFitQualityTooLow    = errors.New("fractal: box-count fit R-squared too low")
	ErrClaimedDimensionOff = errors.New("fractal: claimed dimension does not match recomputation")
)

// VerifyProof independently recomputes a claimed fractal proof and checks
// it against the consensus acceptance rules:
//
//  1. the claimed fractal_seed must match DeriveSeed(previousHash, minerAddress, proof.Nonce)
//  2. the Julia constant c is re-derived from that seed
//  3. the bitmap is recomputed at the claimed center (proof.Center())
//  4. the dimension and R² are recomputed from that bitmap
//  5. |D - target| < epsilon, R² > 0.95, and |D - proof.FractalDimension| < 1e-4
//
// fractal_data_hash is advisory and is not checked here. VerifyProof returns
// only an error, not the recomputed bitmap or its hash.
func VerifyProof(cfg Config, previousHash types.Hash, minerAddress types.Address, proof Proof) error {
	expectedSeed := DeriveSeed(previousHash, minerAddress, proof.Nonce)
	if expectedSeed != proof.FractalSeed {
		return fmt.Errorf("%w: got %s, want %s", ErrSeedMismatch, proof.FractalSeed, expectedSeed)
	}

	c, err := ComplexFromSeed(proof.FractalSeed)
	if err != nil {
		return fmt.Errorf("fractal: derive c: %w", err)
	}

	center := proof.Center()
	bitmap := ComputeBitmap(c, center, cfg)
	result := CalculateDimension(bitmap, cfg)

	if result.RSquared <= 0.95 {
		return fmt.Errorf("%w: got %f", ErrFitQualityTooLow, result.RSquared)
	}
	if absf(result.Dimension-cfg.TargetDimension) >= cfg.Epsilon {
		return fmt.Errorf("%w: |%f - %f| >= %f", ErrDimensionOutOfBand, result.Dimension, cfg.TargetDimension, cfg.Epsilon)
	}
	if absf(result.Dimension-proof.FractalDimension) >= 1e-4 {
		return fmt.Errorf("%w: recomputed %f, claimed %f", ErrClaimedDimensionOff, result.Dimension, proof.FractalDimension)
	}

	return nil
}
