// Package fractal implements FractalChain's two-stage proof-of-work: a
// header-hash leading-zero pre-filter followed by a box-counting
// fractal-dimension proof over a Julia set derived deterministically from
// the block header. The engine holds configuration only — never mutable
// search state — mirroring the teacher's PoW struct shape in
// internal/consensus/pow.go.
package fractal

// Config holds the parameters of the fractal proof-of-work engine. These
// mirror the reference implementation's FractalConfig defaults exactly so
// that independent implementations derive identical bitmaps and dimensions.
type Config struct {
	// MaxIterations bounds the Julia-set escape-time iteration per point.
	MaxIterations int
	// EscapeRadius is the modulus threshold beyond which a point is
	// considered to have escaped.
	EscapeRadius float64
	// GridSize is the width and height, in pixels, of the sampled grid.
	GridSize int
	// RegionSize is the side length, in complex-plane units, of the
	// square region sampled around a search center.
	RegionSize float64
	// BoxSizes are the box-counting scales, in the same complex-plane
	// units as RegionSize, from coarsest to finest. boxesPerSide for a
	// given scale is int(RegionSize/BoxSize), clamped to GridSize.
	BoxSizes []float64
	// TargetDimension is the fractal dimension a solution must land within
	// Epsilon of.
	TargetDimension float64
	// Epsilon is the half-width of the acceptance band around TargetDimension.
	Epsilon float64
	// MaxSearchPoints bounds how many rehashed search centers FindSolution
	// will try before giving up. Not part of the consensus contract — a
	// verifier only ever checks one claimed center.
	MaxSearchPoints int
}

// DefaultConfig returns the FractalChain default parameters.
func DefaultConfig() Config {
	return Config{
		MaxIterations:   256,
		EscapeRadius:    2.0,
		GridSize:        128,
		RegionSize:      2.0,
		BoxSizes:        []float64{1, 1.0 / 2, 1.0 / 4, 1.0 / 8, 1.0 / 16, 1.0 / 32, 1.0 / 64, 1.0 / 128},
		TargetDimension: 1.5,
		Epsilon:         0.001,
		MaxSearchPoints: 1 << 20,
	}
}
