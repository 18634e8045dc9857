package fractal

import "math"

// DimensionResult is the outcome of a box-counting regression.
type DimensionResult struct {
	Dimension float64 // OLS slope of ln N(s) vs ln(1/s)
	RSquared  float64
}

// countOccupiedBoxes partitions the bitmap into boxesPerSide×boxesPerSide
// boxes — where boxesPerSide is regionSize/boxSize clamped to the grid size
// and pixelsPerBox is the grid size floor-divided by boxesPerSide — and
// counts boxes containing at least one set pixel.
func countOccupiedBoxes(b Bitmap, regionSize, boxSize float64) int {
	boxesPerSide := int(regionSize / boxSize)
	if boxesPerSide <= 0 || boxesPerSide > b.Size {
		boxesPerSide = b.Size
	}
	pixelsPerBox := b.Size / boxesPerSide

	if pixelsPerBox <= 0 {
		occupied := 0
		for row := 0; row < b.Size; row++ {
			for col := 0; col < b.Size; col++ {
				if b.At(row, col) != 0 {
					occupied++
				}
			}
		}
		return occupied
	}

	occupied := 0
	for by := 0; by < boxesPerSide; by++ {
		rowStart := by * pixelsPerBox
		rowEnd := min(rowStart+pixelsPerBox, b.Size)
		for bx := 0; bx < boxesPerSide; bx++ {
			colStart := bx * pixelsPerBox
			colEnd := min(colStart+pixelsPerBox, b.Size)

			found := false
			for row := rowStart; row < rowEnd && !found; row++ {
				for col := colStart; col < colEnd; col++ {
					if b.At(row, col) != 0 {
						found = true
						break
					}
				}
			}
			if found {
				occupied++
			}
		}
	}
	return occupied
}

// CalculateDimension computes the box-counting fractal dimension of a
// bitmap: the closed-form OLS slope of ln(N(s)) against ln(1/s) over the
// configured box sizes, plus the fit's R².
func CalculateDimension(b Bitmap, cfg Config) DimensionResult {
	n := len(cfg.BoxSizes)
	xs := make([]float64, n)
	ys := make([]float64, n)

	for i, s := range cfg.BoxSizes {
		count := countOccupiedBoxes(b, cfg.RegionSize, s)
		xs[i] = math.Log(1.0 / s)
		if count < 1 {
			count = 1
		}
		ys[i] = math.Log(float64(count))
	}

	return olsFit(xs, ys)
}

// olsFit computes the closed-form OLS slope and R² for y = slope*x + intercept,
// using the fixed summation order (n·Σxy − Σx·Σy) / (n·Σx² − (Σx)²) so that
// every implementation agrees bit-for-bit.
func olsFit(xs, ys []float64) DimensionResult {
	n := float64(len(xs))
	var sumX, sumY, sumXY, sumXX, sumYY float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
		sumXY += xs[i] * ys[i]
		sumXX += xs[i] * xs[i]
		sumYY += ys[i] * ys[i]
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return DimensionResult{}
	}
	slope := (n*sumXY - sumX*sumY) / denom

	// Pearson correlation r, then R² = r².
	rNumer := n*sumXY - sumX*sumY
	rDenom := math.Sqrt((n*sumXX - sumX*sumX) * (n*sumYY - sumY*sumY))
	var r float64
	if rDenom != 0 {
		r = rNumer / rDenom
	}

	return DimensionResult{Dimension: slope, RSquared: r * r}
}
