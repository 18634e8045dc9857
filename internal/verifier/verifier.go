// Package verifier implements the hybrid block verification pipeline:
// structural validity, then the cheap header-hash pre-filter, then the
// expensive fractal recomputation — in that order, so that a malformed or
// under-mined block is rejected before the costly Julia-set step ever runs.
package verifier

import (
	"errors"
	"fmt"

	"github.com/fractalchain/fractald/pkg/block"
	"github.com/fractalchain/fractald/pkg/fractal"
	"github.com/fractalchain/fractald/pkg/types"
)

// ErrHeaderPreFilterFailed is returned when a non-genesis block's header
// hash does not carry the required leading zero hex characters.
var ErrHeaderPreFilterFailed = errors.New("verifier: header hash fails leading-zero pre-filter")

// AuditHook is an optional, advisory-only callback invoked after a block
// has already been accepted. It corresponds to the excluded third-party AI
// "audit" collaborator (spec §1, §9 Open Questions): it never gates
// acceptance and its return value is purely informational.
type AuditHook func(blk *block.Block) (suspicious bool, note string)

// Verifier runs the structural -> header pre-filter -> fractal pipeline,
// grounded on the teacher's consensus.Validator (a thin struct wrapping a
// pluggable engine) generalized from single-stage PoW header verification
// to the spec's two-stage scheme.
type Verifier struct {
	FractalConfig fractal.Config
	Audit         AuditHook
}

// New creates a Verifier using cfg as the base fractal configuration. Each
// block's own DifficultyTarget overrides cfg.TargetDimension at
// verification time, since retargeting changes the target per block while
// the rest of the fractal parameters (iteration count, grid size, epsilon)
// stay fixed for the module's lifetime.
func New(cfg fractal.Config) *Verifier {
	return &Verifier{FractalConfig: cfg}
}

// QuickCheck runs the cheap structural and header-pre-filter checks used
// to decide whether a received block is worth the expensive fractal
// recomputation (spec §4.6 "Receivers apply the verifier's quick check").
func (v *Verifier) QuickCheck(blk *block.Block) error {
	if err := blk.Validate(); err != nil {
		return fmt.Errorf("verifier: structural: %w", err)
	}
	if blk.IsGenesis() {
		return nil
	}
	headerHash, err := blk.HeaderHashForNonce(blk.FractalProof.Nonce)
	if err != nil {
		return fmt.Errorf("verifier: header hash: %w", err)
	}
	if !fractal.HeaderHashPasses(headerHash, blk.HeaderDifficultyBits) {
		return fmt.Errorf("%w: bits=%d", ErrHeaderPreFilterFailed, blk.HeaderDifficultyBits)
	}
	return nil
}

// VerifyBlock runs the full hybrid pipeline against blk, additionally
// checking chain continuity against prev when prev is non-nil (prev is
// nil only when blk is the genesis block). The audit hook, if set, runs
// only after acceptance and cannot cause rejection.
func (v *Verifier) VerifyBlock(blk *block.Block, prev *block.Block) error {
	if err := v.QuickCheck(blk); err != nil {
		return err
	}
	if prev != nil {
		if err := blk.ValidateContinuation(prev); err != nil {
			return err
		}
	}

	if !blk.IsGenesis() {
		prevHash, err := types.HexToHash(blk.PreviousHash)
		if err != nil {
			return fmt.Errorf("verifier: bad previous_hash: %w", err)
		}
		cfg := v.FractalConfig
		cfg.TargetDimension = blk.DifficultyTarget
		if err := fractal.VerifyProof(cfg, prevHash, blk.MinerAddress, *blk.FractalProof); err != nil {
			return fmt.Errorf("verifier: fractal: %w", err)
		}
	}

	if v.Audit != nil {
		v.Audit(blk)
	}
	return nil
}
