package fractal

import "testing"

func TestComputeBitmap_Deterministic(t *testing.T) {
	cfg := DefaultConfig()
	c := complex(-0.4, 0.6)
	center := complex(0, 0)

	b1 := ComputeBitmap(c, center, cfg)
	b2 := ComputeBitmap(c, center, cfg)

	if len(b1.Data) != len(b2.Data) {
		t.Fatalf("bitmap length mismatch")
	}
	for i := range b1.Data {
		if b1.Data[i] != b2.Data[i] {
			t.Fatalf("bitmap not deterministic at index %d", i)
		}
	}
}

func TestComputeBitmap_Size(t *testing.T) {
	cfg := DefaultConfig()
	b := ComputeBitmap(complex(0.1, 0.1), complex(0, 0), cfg)
	if len(b.Data) != cfg.GridSize*cfg.GridSize {
		t.Errorf("bitmap data length = %d, want %d", len(b.Data), cfg.GridSize*cfg.GridSize)
	}
	if b.Size != cfg.GridSize {
		t.Errorf("bitmap size = %d, want %d", b.Size, cfg.GridSize)
	}
}

func TestComputeBitmap_DivergentCEscapesEverywhere(t *testing.T) {
	cfg := DefaultConfig()
	// A large |c| causes every point to escape quickly, so the bitmap
	// should be entirely zero (no bounded points).
	b := ComputeBitmap(complex(100, 100), complex(0, 0), cfg)
	for i, v := range b.Data {
		if v != 0 {
			t.Fatalf("expected all-zero bitmap for divergent c, found set pixel at %d", i)
			break
		}
	}
}
