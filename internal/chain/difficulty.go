package chain

// Retarget constants (spec §6 environment constants).
const (
	RetargetInterval = 2016
	TargetBlockTime  = 600 // seconds

	minFractalTarget = 1.0
	maxFractalTarget = 2.0
	fractalBaseline  = 1.5

	minHeaderBits uint8 = 4
	maxHeaderBits uint8 = 32

	minRatio = 0.25
	maxRatio = 4.0
)

// ShouldRetarget reports whether difficulty should be recalculated before
// mining the block at the given height (spec §4.4: "every height h such
// that h > 0 and h mod 2016 = 0").
func ShouldRetarget(height uint64) bool {
	return height > 0 && height%RetargetInterval == 0
}

// Retarget computes the next (fractal target, header bits) pair from the
// timestamps of the first and last blocks of the just-completed interval
// and the currently active difficulty, per spec §4.4 and grounded on
// original_source's DifficultyAdjustment._adjust_fractal_target /
// _adjust_header_bits (both branches of which reduce to the same
// current_value / ratio formula, matched here without a branch).
func Retarget(firstTimestamp, lastTimestamp float64, currentTarget float64, currentBits uint8) (float64, uint8) {
	actual := lastTimestamp - firstTimestamp
	expected := float64(TargetBlockTime * (RetargetInterval - 1))

	ratio := 1.0
	if expected > 0 {
		ratio = actual / expected
	}
	if ratio < minRatio {
		ratio = minRatio
	}
	if ratio > maxRatio {
		ratio = maxRatio
	}
	multiplier := 1.0 / ratio

	newTarget := fractalBaseline + (currentTarget-fractalBaseline)*multiplier
	if newTarget < minFractalTarget {
		newTarget = minFractalTarget
	}
	if newTarget > maxFractalTarget {
		newTarget = maxFractalTarget
	}

	newBits := uint8(float64(currentBits) * multiplier)
	if newBits < minHeaderBits {
		newBits = minHeaderBits
	}
	if newBits > maxHeaderBits {
		newBits = maxHeaderBits
	}

	return newTarget, newBits
}
