package block

import (
	"context"
	"strings"
	"testing"

	"github.com/fractalchain/fractald/pkg/fractal"
	"github.com/fractalchain/fractald/pkg/tx"
	"github.com/fractalchain/fractald/pkg/types"
)

func smallFractalConfig() fractal.Config {
	cfg := fractal.DefaultConfig()
	cfg.GridSize = 16
	cfg.BoxSizes = []float64{1, 1.0 / 2, 1.0 / 4, 1.0 / 8}
	cfg.Epsilon = 0.5
	cfg.MaxSearchPoints = 20000
	return cfg
}

func testMinerAddress() types.Address {
	return types.Address(strings.Repeat("a", 40))
}

// minedBlock builds a structurally valid, fully sealed non-genesis block
// with a coinbase transaction and a real (small-grid) fractal proof.
func minedBlock(t *testing.T, index uint64, previousHash string) *Block {
	t.Helper()
	miner := testMinerAddress()

	cb, err := tx.NewCoinbase(miner, types.NewAmountFromFloat(50), index, 1700000000)
	if err != nil {
		t.Fatalf("NewCoinbase: %v", err)
	}

	blk := NewBlock(index, 1700000000, []*tx.Transaction{cb}, previousHash, miner, 1.5, 8)
	blk.MerkleRoot = blk.ComputeMerkleRoot()

	cfg := smallFractalConfig()
	prevHash, err := types.HexToHash(previousHash)
	if err != nil {
		t.Fatalf("HexToHash: %v", err)
	}
	proof, err := fractal.FindSolution(context.Background(), cfg, prevHash, miner, 1, blk.Timestamp)
	if err != nil {
		t.Fatalf("FindSolution: %v", err)
	}
	blk.FractalProof = &proof

	if err := blk.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	return blk
}

func testGenesisBlock(t *testing.T) *Block {
	t.Helper()
	recipient := testMinerAddress()
	genesisTx, err := tx.NewGenesisTransaction(recipient, types.NewAmountFromFloat(1000), 1577836800)
	if err != nil {
		t.Fatalf("NewGenesisTransaction: %v", err)
	}
	blk := NewBlock(0, 1577836800, []*tx.Transaction{genesisTx}, ZeroHash, types.GenesisAddress, 1.5, 8)
	if err := blk.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	return blk
}

func TestBlock_FinalizeIsDeterministic(t *testing.T) {
	blk := testGenesisBlock(t)
	h1 := blk.BlockHash
	if err := blk.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if blk.BlockHash != h1 {
		t.Error("Finalize should be deterministic")
	}
}

func TestBlock_IsGenesis(t *testing.T) {
	g := testGenesisBlock(t)
	if !g.IsGenesis() {
		t.Error("index-0 block should report IsGenesis")
	}

	blk := minedBlock(t, 1, g.BlockHash)
	if blk.IsGenesis() {
		t.Error("index-1 block should not report IsGenesis")
	}
}

func TestBlock_HeaderHashForNonceMatchesStandaloneHeaderHash(t *testing.T) {
	blk := minedBlock(t, 1, testGenesisBlock(t).BlockHash)
	got, err := blk.HeaderHashForNonce(42)
	if err != nil {
		t.Fatalf("HeaderHashForNonce: %v", err)
	}
	want, err := HeaderHash(blk.Index, blk.Timestamp, blk.PreviousHash, blk.MerkleRoot, blk.MinerAddress, 42)
	if err != nil {
		t.Fatalf("HeaderHash: %v", err)
	}
	if got != want {
		t.Error("HeaderHashForNonce should match the standalone HeaderHash helper")
	}
}
