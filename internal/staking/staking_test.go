package staking

import (
	"errors"
	"testing"

	"github.com/fractalchain/fractald/pkg/types"
)

func testAddr() types.Address {
	return types.Address("bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
}

func TestCreateStake_RejectsBelowMinimumAmount(t *testing.T) {
	l := New(DefaultConfig())
	_, err := l.CreateStake(testAddr(), types.NewAmountFromFloat(50), 1000, 0, 1700000000)
	if !errors.Is(err, ErrBelowMinimumStake) {
		t.Errorf("CreateStake(50) = %v, want ErrBelowMinimumStake", err)
	}
}

func TestCreateStake_RejectsBelowMinimumLockPeriod(t *testing.T) {
	l := New(DefaultConfig())
	_, err := l.CreateStake(testAddr(), types.NewAmountFromFloat(500), 10, 0, 1700000000)
	if !errors.Is(err, ErrBelowMinimumLock) {
		t.Errorf("CreateStake(lock=10) = %v, want ErrBelowMinimumLock", err)
	}
}

func TestCreateStake_Success(t *testing.T) {
	l := New(DefaultConfig())
	addr := testAddr()
	pos, err := l.CreateStake(addr, types.NewAmountFromFloat(500), 1000, 100, 1700000000)
	if err != nil {
		t.Fatalf("CreateStake: %v", err)
	}
	if pos.UnlockBlock != 1100 {
		t.Errorf("UnlockBlock = %d, want 1100", pos.UnlockBlock)
	}
	if pos.Status != StatusActive {
		t.Errorf("Status = %s, want active", pos.Status)
	}
	if got := l.TotalStakedBy(addr).Float64(); got != 500 {
		t.Errorf("TotalStakedBy = %v, want 500", got)
	}
}

func TestCalculateRewards_FullLockPeriod(t *testing.T) {
	l := New(DefaultConfig())
	addr := testAddr()
	pos, err := l.CreateStake(addr, types.NewAmountFromFloat(1000), BlocksPerYear, 0, 1700000000)
	if err != nil {
		t.Fatalf("CreateStake: %v", err)
	}
	// Exactly one year elapsed: reward = amount * annual_rate.
	got := l.CalculateRewards(pos, BlocksPerYear)
	want := types.NewAmountFromFloat(1000 * DefaultAnnualRate)
	if got != want {
		t.Errorf("CalculateRewards = %v, want %v", got, want)
	}
}

func TestCalculateRewards_CapsAtLockPeriod(t *testing.T) {
	l := New(DefaultConfig())
	addr := testAddr()
	pos, err := l.CreateStake(addr, types.NewAmountFromFloat(1000), 1000, 0, 1700000000)
	if err != nil {
		t.Fatalf("CreateStake: %v", err)
	}
	atUnlock := l.CalculateRewards(pos, 1000)
	wayPast := l.CalculateRewards(pos, 1_000_000)
	if atUnlock != wayPast {
		t.Errorf("rewards should cap at lock_period elapsed: at unlock=%v, way past=%v", atUnlock, wayPast)
	}
}

func TestWithdrawalLifecycle(t *testing.T) {
	l := New(DefaultConfig())
	addr := testAddr()
	pos, err := l.CreateStake(addr, types.NewAmountFromFloat(1000), 1000, 0, 1700000000)
	if err != nil {
		t.Fatalf("CreateStake: %v", err)
	}
	_ = pos

	if _, err := l.InitiateWithdrawal(addr, 0, 500); !errors.Is(err, ErrStillLocked) {
		t.Errorf("InitiateWithdrawal before unlock = %v, want ErrStillLocked", err)
	}

	got, err := l.InitiateWithdrawal(addr, 0, 1000)
	if err != nil {
		t.Fatalf("InitiateWithdrawal: %v", err)
	}
	if got.Status != StatusUnlocking {
		t.Errorf("Status = %s, want unlocking", got.Status)
	}

	total, err := l.CompleteWithdrawal(addr, 0)
	if err != nil {
		t.Fatalf("CompleteWithdrawal: %v", err)
	}
	if total < types.NewAmountFromFloat(1000) {
		t.Errorf("total withdrawal %v should be at least principal 1000", total)
	}

	positions := l.Positions(addr)
	if positions[0].Status != StatusWithdrawn {
		t.Errorf("final status = %s, want withdrawn", positions[0].Status)
	}
}

func TestSlash_DeactivatesBelowMinimum(t *testing.T) {
	l := New(DefaultConfig())
	addr := testAddr()
	if _, err := l.CreateStake(addr, types.NewAmountFromFloat(105), 1000, 0, 1700000000); err != nil {
		t.Fatalf("CreateStake: %v", err)
	}

	slashed, err := l.Slash(addr, 42, "double-signing", 1700000100)
	if err != nil {
		t.Fatalf("Slash: %v", err)
	}
	wantSlashed := types.NewAmountFromFloat(105 * DefaultSlashPercentage)
	if slashed != wantSlashed {
		t.Errorf("slashed = %v, want %v", slashed, wantSlashed)
	}

	positions := l.Positions(addr)
	if positions[0].Status != StatusSlashed {
		t.Errorf("post-slash status = %s, want slashed (105 - 10%% = 94.5 < min 100)", positions[0].Status)
	}

	history := l.SlashHistory()
	if len(history) != 1 || history[0].Reason != "double-signing" {
		t.Errorf("SlashHistory = %+v, want one record with reason double-signing", history)
	}
}

func TestSlash_StaysActiveAboveMinimum(t *testing.T) {
	l := New(DefaultConfig())
	addr := testAddr()
	if _, err := l.CreateStake(addr, types.NewAmountFromFloat(1000), 1000, 0, 1700000000); err != nil {
		t.Fatalf("CreateStake: %v", err)
	}

	if _, err := l.Slash(addr, 1, "minor-offense", 1700000100); err != nil {
		t.Fatalf("Slash: %v", err)
	}

	positions := l.Positions(addr)
	if positions[0].Status != StatusActive {
		t.Errorf("post-slash status = %s, want still active (900 > min 100)", positions[0].Status)
	}
	if got := positions[0].Amount.Float64(); got != 900 {
		t.Errorf("post-slash amount = %v, want 900", got)
	}
}
