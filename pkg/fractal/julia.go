package fractal

// Bitmap is a row-major grid of {0,1} bytes: 1 marks a pixel whose point did
// not escape within MaxIterations (a bounded point, i.e. a member of the
// approximated Julia set). The fixed byte layout is part of the consensus
// contract — every implementation must agree on this exact representation
// so that fractal_data_hash is reproducible across platforms.
type Bitmap struct {
	Size int
	Data []byte
}

// At returns the bitmap value at (row, col).
func (b Bitmap) At(row, col int) byte {
	return b.Data[row*b.Size+col]
}

// ComputeBitmap samples a GridSize x GridSize grid of points over a square
// region of side RegionSize centered at center, iterates z ← z² + c up to
// MaxIterations per point, and marks bounded points in the returned bitmap.
//
// The grid is sampled in fixed row-major order using a linspace identical
// to numpy.linspace(-RegionSize/2, RegionSize/2, GridSize) on each axis, so
// that two independent implementations produce byte-identical bitmaps for
// the same (c, center, cfg).
func ComputeBitmap(c, center complex128, cfg Config) Bitmap {
	n := cfg.GridSize
	half := cfg.RegionSize / 2
	data := make([]byte, n*n)

	step := cfg.RegionSize
	if n > 1 {
		step = cfg.RegionSize / float64(n-1)
	}

	escapeSq := cfg.EscapeRadius * cfg.EscapeRadius

	for row := 0; row < n; row++ {
		imagOffset := -half + step*float64(row)
		for col := 0; col < n; col++ {
			realOffset := -half + step*float64(col)
			z0 := complex(real(center)+realOffset, imag(center)+imagOffset)

			z := z0
			escaped := false
			for iter := 0; iter < cfg.MaxIterations; iter++ {
				z = z*z + c
				if real(z)*real(z)+imag(z)*imag(z) > escapeSq {
					escaped = true
					break
				}
			}
			if !escaped {
				data[row*n+col] = 1
			}
		}
	}

	return Bitmap{Size: n, Data: data}
}
