package fractal

import (
	"context"
	"testing"

	"github.com/fractalchain/fractald/pkg/types"
)

func TestVerifyProof_AcceptsMinedSolution(t *testing.T) {
	cfg := smallConfig()
	prev, _ := types.HexToHash("bb00000000000000000000000000000000000000000000000000000000000")
	addr := types.Address("abcdefabcdefabcdefabcdefabcdefabcdefabcd")

	proof, err := FindSolution(context.Background(), cfg, prev, addr, 3, 1700000000)
	if err != nil {
		t.Fatalf("FindSolution: %v", err)
	}
	if err := VerifyProof(cfg, prev, addr, proof); err != nil {
		t.Errorf("VerifyProof rejected a freshly mined solution: %v", err)
	}
}

func TestVerifyProof_RejectsSeedMismatch(t *testing.T) {
	cfg := smallConfig()
	prev, _ := types.HexToHash("bb00000000000000000000000000000000000000000000000000000000000")
	addr := types.Address("abcdefabcdefabcdefabcdefabcdefabcdefabcd")

	proof, err := FindSolution(context.Background(), cfg, prev, addr, 3, 1700000000)
	if err != nil {
		t.Fatalf("FindSolution: %v", err)
	}
	proof.Nonce++ // seed was derived from the original nonce

	if err := VerifyProof(cfg, prev, addr, proof); err == nil {
		t.Error("expected VerifyProof to reject a proof with a mismatched nonce/seed")
	}
}

func TestVerifyProof_RejectsTamperedDimension(t *testing.T) {
	cfg := smallConfig()
	prev, _ := types.HexToHash("bb00000000000000000000000000000000000000000000000000000000000")
	addr := types.Address("abcdefabcdefabcdefabcdefabcdefabcdefabcd")

	proof, err := FindSolution(context.Background(), cfg, prev, addr, 3, 1700000000)
	if err != nil {
		t.Fatalf("FindSolution: %v", err)
	}
	proof.FractalDimension += 1.0

	if err := VerifyProof(cfg, prev, addr, proof); err == nil {
		t.Error("expected VerifyProof to reject a tampered claimed dimension")
	}
}

func TestVerifyProof_RejectsTamperedCenter(t *testing.T) {
	cfg := smallConfig()
	prev, _ := types.HexToHash("bb00000000000000000000000000000000000000000000000000000000000")
	addr := types.Address("abcdefabcdefabcdefabcdefabcdefabcdefabcd")

	proof, err := FindSolution(context.Background(), cfg, prev, addr, 3, 1700000000)
	if err != nil {
		t.Fatalf("FindSolution: %v", err)
	}
	proof.SolutionPointReal += 10

	if err := VerifyProof(cfg, prev, addr, proof); err == nil {
		t.Error("expected VerifyProof to reject a tampered solution center")
	}
}
