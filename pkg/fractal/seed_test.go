package fractal

import (
	"testing"

	"github.com/fractalchain/fractald/pkg/types"
)

func TestDeriveSeed_Deterministic(t *testing.T) {
	prev, _ := types.HexToHash("ab000000000000000000000000000000000000000000000000000000000000")
	addr := types.Address("1234567890123456789012345678901234567890")

	s1 := DeriveSeed(prev, addr, 42)
	s2 := DeriveSeed(prev, addr, 42)
	if s1 != s2 {
		t.Errorf("DeriveSeed not deterministic: %s != %s", s1, s2)
	}
	if len(s1) != 64 {
		t.Errorf("seed should be 64 hex chars, got %d", len(s1))
	}
}

func TestDeriveSeed_DiffersOnNonce(t *testing.T) {
	prev, _ := types.HexToHash("ab000000000000000000000000000000000000000000000000000000000000")
	addr := types.Address("1234567890123456789012345678901234567890")

	s1 := DeriveSeed(prev, addr, 1)
	s2 := DeriveSeed(prev, addr, 2)
	if s1 == s2 {
		t.Error("different nonces should produce different seeds")
	}
}

func TestRehashSeed_Deterministic(t *testing.T) {
	s1 := RehashSeed("deadbeef", 1)
	s2 := RehashSeed("deadbeef", 1)
	if s1 != s2 {
		t.Error("RehashSeed not deterministic")
	}
	if RehashSeed("deadbeef", 1) == RehashSeed("deadbeef", 2) {
		t.Error("different indices should produce different rehashes")
	}
}

func TestComplexFromSeed_Range(t *testing.T) {
	seeds := []string{
		"0000000000000000000000000000000000000000000000000000000000000",
		"ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff",
		"abcd1234",
	}
	for _, s := range seeds {
		c, err := ComplexFromSeed(s)
		if err != nil {
			t.Fatalf("ComplexFromSeed(%q): %v", s, err)
		}
		if real(c) < -1 || real(c) >= 1 {
			t.Errorf("real part %f out of [-1,1) for seed %q", real(c), s)
		}
		if imag(c) < -1 || imag(c) >= 1 {
			t.Errorf("imag part %f out of [-1,1) for seed %q", imag(c), s)
		}
	}
}

func TestComplexFromSeed_Deterministic(t *testing.T) {
	seed := "deadbeefcafebabe0123456789abcdef"
	c1, err := ComplexFromSeed(seed)
	if err != nil {
		t.Fatalf("ComplexFromSeed: %v", err)
	}
	c2, _ := ComplexFromSeed(seed)
	if c1 != c2 {
		t.Error("ComplexFromSeed not deterministic")
	}
}
