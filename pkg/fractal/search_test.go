package fractal

import (
	"context"
	"testing"

	"github.com/fractalchain/fractald/pkg/types"
)

// smallConfig shrinks the grid and widens the acceptance band so tests
// exercise the real algorithm without mining at production cost.
func smallConfig() Config {
	cfg := DefaultConfig()
	cfg.GridSize = 16
	cfg.BoxSizes = []float64{1, 1.0 / 2, 1.0 / 4, 1.0 / 8}
	cfg.Epsilon = 0.5
	cfg.MaxSearchPoints = 20000
	return cfg
}

func TestFindSolution_FindsAcceptableDimension(t *testing.T) {
	cfg := smallConfig()
	prev, _ := types.HexToHash("aa00000000000000000000000000000000000000000000000000000000000")
	addr := types.Address("1234567890123456789012345678901234567890")

	proof, err := FindSolution(context.Background(), cfg, prev, addr, 7, 1700000000)
	if err != nil {
		t.Fatalf("FindSolution: %v", err)
	}
	if absf(proof.FractalDimension-cfg.TargetDimension) >= cfg.Epsilon {
		t.Errorf("found dimension %f outside band around %f", proof.FractalDimension, cfg.TargetDimension)
	}
	if len(proof.FractalSeed) != 64 {
		t.Errorf("fractal seed should be 64 hex chars, got %d", len(proof.FractalSeed))
	}
	if len(proof.FractalDataHash) != 64 {
		t.Errorf("fractal data hash should be 64 hex chars, got %d", len(proof.FractalDataHash))
	}
}

func TestFindSolution_CancelledContext(t *testing.T) {
	cfg := smallConfig()
	prev, _ := types.HexToHash("aa00000000000000000000000000000000000000000000000000000000000")
	addr := types.Address("1234567890123456789012345678901234567890")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := FindSolution(ctx, cfg, prev, addr, 1, 1700000000)
	if err == nil {
		t.Error("expected error from cancelled context")
	}
}

func TestFindSolution_ExhaustsGracefully(t *testing.T) {
	cfg := smallConfig()
	cfg.Epsilon = 1e-12 // impossibly tight band
	cfg.MaxSearchPoints = 20
	prev, _ := types.HexToHash("aa00000000000000000000000000000000000000000000000000000000000")
	addr := types.Address("1234567890123456789012345678901234567890")

	_, err := FindSolution(context.Background(), cfg, prev, addr, 1, 1700000000)
	if err != ErrSearchExhausted {
		t.Errorf("expected ErrSearchExhausted, got %v", err)
	}
}
