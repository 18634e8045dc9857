package fractal

import "testing"

func TestHeaderHashPasses(t *testing.T) {
	tests := []struct {
		hash string
		bits uint8
		want bool
	}{
		{"000abc" + "0000000000000000000000000000000000000000000000000000000", 15, true}, // floor(15/4)=3 zero chars
		{"00abc0" + "0000000000000000000000000000000000000000000000000000000", 15, false},
		{"ffffff" + "0000000000000000000000000000000000000000000000000000000", 4, false},
		{"0fffff" + "0000000000000000000000000000000000000000000000000000000", 4, true},
	}
	for _, tt := range tests {
		if got := HeaderHashPasses(tt.hash, tt.bits); got != tt.want {
			t.Errorf("HeaderHashPasses(%q, %d) = %v, want %v", tt.hash[:6], tt.bits, got, tt.want)
		}
	}
}

func TestHeaderHashPasses_IntegerDivision(t *testing.T) {
	// bits=15 requires floor(15/4)=3 leading zero hex chars, not 4.
	hash := "000f" + "00000000000000000000000000000000000000000000000000000000"
	if !HeaderHashPasses(hash, 15) {
		t.Error("3 leading zeros should satisfy bits=15")
	}
}
