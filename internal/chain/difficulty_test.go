package chain

import "testing"

func TestShouldRetarget(t *testing.T) {
	cases := map[uint64]bool{
		0:    false,
		1:    false,
		2015: false,
		2016: true,
		4032: true,
		4033: false,
	}
	for height, want := range cases {
		if got := ShouldRetarget(height); got != want {
			t.Errorf("ShouldRetarget(%d) = %v, want %v", height, got, want)
		}
	}
}

func TestRetarget_FastBlocksClampsRatioAndQuadruples(t *testing.T) {
	// The interval completed in far less than the expected time, clamping
	// the ratio to its floor of 0.25 and so the multiplier (1/ratio) to 4:
	// both the fractal target's deviation from baseline and the header bits
	// scale by exactly 4, with header bits clamped at the ceiling.
	firstTs := 0.0
	lastTs := 100.0 // far under expected = 600*2015
	currentTarget := 1.6
	currentBits := uint8(10)

	newTarget, newBits := Retarget(firstTs, lastTs, currentTarget, currentBits)

	wantTarget := fractalBaseline + (currentTarget-fractalBaseline)*4
	if wantTarget > maxFractalTarget {
		wantTarget = maxFractalTarget
	}
	if newTarget != wantTarget {
		t.Errorf("newTarget = %v, want %v", newTarget, wantTarget)
	}

	wantBits := uint8(float64(currentBits) * 4)
	if wantBits > maxHeaderBits {
		wantBits = maxHeaderBits
	}
	if newBits != wantBits {
		t.Errorf("newBits = %v, want %v", newBits, wantBits)
	}
}

func TestRetarget_SlowBlocksClampsRatioAndQuarters(t *testing.T) {
	expected := float64(TargetBlockTime * (RetargetInterval - 1))
	firstTs := 0.0
	lastTs := expected * 10 // far over expected, clamps ratio to 4.0, multiplier to 0.25
	currentTarget := 1.6
	currentBits := uint8(20)

	newTarget, newBits := Retarget(firstTs, lastTs, currentTarget, currentBits)

	wantTarget := fractalBaseline + (currentTarget-fractalBaseline)*0.25
	if wantTarget < minFractalTarget {
		wantTarget = minFractalTarget
	}
	if newTarget != wantTarget {
		t.Errorf("newTarget = %v, want %v", newTarget, wantTarget)
	}

	wantBits := uint8(float64(currentBits) * 0.25)
	if wantBits < minHeaderBits {
		wantBits = minHeaderBits
	}
	if newBits != wantBits {
		t.Errorf("newBits = %v, want %v", newBits, wantBits)
	}
}

func TestRetarget_OnTimeLeavesTargetsUnchanged(t *testing.T) {
	expected := float64(TargetBlockTime * (RetargetInterval - 1))
	currentTarget := 1.7
	currentBits := uint8(12)

	newTarget, newBits := Retarget(0, expected, currentTarget, currentBits)

	if newTarget != currentTarget {
		t.Errorf("newTarget = %v, want unchanged %v", newTarget, currentTarget)
	}
	if newBits != currentBits {
		t.Errorf("newBits = %v, want unchanged %v", newBits, currentBits)
	}
}

func TestRetarget_HeaderBitsNeverExceedBounds(t *testing.T) {
	_, bits := Retarget(0, 1, 1.5, 30)
	if bits > maxHeaderBits {
		t.Errorf("bits = %d, exceeds max %d", bits, maxHeaderBits)
	}
	_, bits = Retarget(0, 1e12, 1.5, 5)
	if bits < minHeaderBits {
		t.Errorf("bits = %d, below min %d", bits, minHeaderBits)
	}
}
