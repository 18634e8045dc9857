package verifier

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/fractalchain/fractald/pkg/block"
	"github.com/fractalchain/fractald/pkg/fractal"
	"github.com/fractalchain/fractald/pkg/tx"
	"github.com/fractalchain/fractald/pkg/types"
)

func smallConfig() fractal.Config {
	cfg := fractal.DefaultConfig()
	cfg.GridSize = 16
	cfg.BoxSizes = []float64{1, 1.0 / 2, 1.0 / 4, 1.0 / 8}
	cfg.Epsilon = 0.5
	cfg.MaxSearchPoints = 20000
	return cfg
}

func minedChain(t *testing.T) (genesis, blk *block.Block) {
	t.Helper()
	miner := types.Address(strings.Repeat("a", 40))

	genesisTx, err := tx.NewGenesisTransaction(miner, types.NewAmountFromFloat(1000), 1577836800)
	if err != nil {
		t.Fatalf("NewGenesisTransaction: %v", err)
	}
	genesis = block.NewBlock(0, 1577836800, []*tx.Transaction{genesisTx}, block.ZeroHash, types.GenesisAddress, 1.5, 8)
	if err := genesis.Finalize(); err != nil {
		t.Fatalf("genesis Finalize: %v", err)
	}

	cb, err := tx.NewCoinbase(miner, types.NewAmountFromFloat(50), 1, 1700000000)
	if err != nil {
		t.Fatalf("NewCoinbase: %v", err)
	}
	blk = block.NewBlock(1, 1700000000, []*tx.Transaction{cb}, genesis.BlockHash, miner, 1.5, 8)
	blk.MerkleRoot = blk.ComputeMerkleRoot()

	// Use the first nonce whose header hash passes the bits-8 pre-filter.
	var nonce uint64
	for {
		h, err := blk.HeaderHashForNonce(nonce)
		if err != nil {
			t.Fatalf("HeaderHashForNonce: %v", err)
		}
		if fractal.HeaderHashPasses(h, blk.HeaderDifficultyBits) {
			break
		}
		nonce++
	}

	cfg := smallConfig()
	prevHash, err := types.HexToHash(genesis.BlockHash)
	if err != nil {
		t.Fatalf("HexToHash: %v", err)
	}
	proof, err := fractal.FindSolution(context.Background(), cfg, prevHash, miner, nonce, blk.Timestamp)
	if err != nil {
		t.Fatalf("FindSolution: %v", err)
	}
	blk.FractalProof = &proof
	if err := blk.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	return genesis, blk
}

func TestVerifyBlock_AcceptsGenesis(t *testing.T) {
	v := New(smallConfig())
	genesis, _ := minedChain(t)
	if err := v.VerifyBlock(genesis, nil); err != nil {
		t.Errorf("VerifyBlock(genesis) = %v, want nil", err)
	}
}

func TestVerifyBlock_AcceptsMinedBlock(t *testing.T) {
	v := New(smallConfig())
	genesis, blk := minedChain(t)
	if err := v.VerifyBlock(blk, genesis); err != nil {
		t.Errorf("VerifyBlock(mined) = %v, want nil", err)
	}
}

func TestVerifyBlock_RejectsTamperedDimension(t *testing.T) {
	v := New(smallConfig())
	genesis, blk := minedChain(t)
	blk.FractalProof.FractalDimension += 0.01
	blk.BlockHash, _ = blk.ComputeBlockHash()
	if err := v.VerifyBlock(blk, genesis); !errors.Is(err, fractal.ErrClaimedDimensionOff) {
		t.Errorf("VerifyBlock(tampered) = %v, want ErrClaimedDimensionOff", err)
	}
}

func TestVerifyBlock_RejectsHeaderPreFilterFailure(t *testing.T) {
	v := New(smallConfig())
	genesis, blk := minedChain(t)
	blk.HeaderDifficultyBits = 32
	blk.BlockHash, _ = blk.ComputeBlockHash()
	if err := v.VerifyBlock(blk, genesis); !errors.Is(err, ErrHeaderPreFilterFailed) {
		t.Errorf("VerifyBlock(impossible bits) = %v, want ErrHeaderPreFilterFailed", err)
	}
}

func TestQuickCheck_RejectsStructurallyInvalidBlock(t *testing.T) {
	v := New(smallConfig())
	_, blk := minedChain(t)
	blk.Transactions = nil
	if err := v.QuickCheck(blk); !errors.Is(err, block.ErrNoTransactions) {
		t.Errorf("QuickCheck(no txs) = %v, want ErrNoTransactions", err)
	}
}
