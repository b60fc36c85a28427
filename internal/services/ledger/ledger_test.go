package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/fairhouse/casino-core/internal/infra/pgtestutil"
	"github.com/fairhouse/casino-core/internal/repos/withdrawals"
)

func TestLedger_WithdrawalRoundTrip(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	_, err := db.Exec(`
		INSERT INTO users (id, deposit_balance, deposit_winnings, promo_balance)
		VALUES (1, 500, 100, 1000)
	`)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	svc := New(db)
	ctx := context.Background()

	w, err := svc.RequestWithdrawal(ctx, 1, 700)
	if err != nil {
		t.Fatalf("request withdrawal: %v", err)
	}
	if w.Parts.FromWinnings != 100 || w.Parts.FromDeposit != 500 || w.Parts.FromPromo != 100 {
		t.Fatalf("unexpected split: %+v", w.Parts)
	}

	b, err := svc.Balances(ctx, 1)
	if err != nil {
		t.Fatalf("balances: %v", err)
	}
	if b.DepositBalance != 0 || b.DepositWinnings != 0 || b.PromoBalance != 900 {
		t.Fatalf("funds not deducted at request time: %+v", b)
	}

	pending, err := svc.PendingWithdrawals(ctx)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != w.ID {
		t.Fatalf("pending list mismatch: %+v", pending)
	}

	if err := svc.DeclineWithdrawal(ctx, w.ID); err != nil {
		t.Fatalf("decline: %v", err)
	}

	b, err = svc.Balances(ctx, 1)
	if err != nil {
		t.Fatalf("balances after decline: %v", err)
	}
	if b.DepositBalance != 500 || b.DepositWinnings != 100 || b.PromoBalance != 1_000 {
		t.Fatalf("decline did not restore funds: %+v", b)
	}

	// Terminal states are final.
	if err := svc.ApproveWithdrawal(ctx, w.ID); !errors.Is(err, withdrawals.ErrAlreadyResolved) {
		t.Fatalf("expected ErrAlreadyResolved, got: %v", err)
	}
}

func TestLedger_RequestWithdrawal_ExceedsWithdrawable(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	// Promo above the 300-cent limit must not be withdrawable.
	_, err := db.Exec(`
		INSERT INTO users (id, deposit_balance, promo_balance, promo_limit)
		VALUES (1, 500, 1000, 300)
	`)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	svc := New(db)
	ctx := context.Background()

	_, err = svc.RequestWithdrawal(ctx, 1, 801)
	if !errors.Is(err, ErrNotWithdrawable) {
		t.Fatalf("expected ErrNotWithdrawable, got: %v", err)
	}

	b, err := svc.Balances(ctx, 1)
	if err != nil {
		t.Fatalf("balances: %v", err)
	}
	if b.DepositBalance != 500 || b.PromoBalance != 1_000 {
		t.Fatalf("failed request must not move funds: %+v", b)
	}

	if _, err := svc.RequestWithdrawal(ctx, 1, 800); err != nil {
		t.Fatalf("exact withdrawable amount must pass: %v", err)
	}
}

func TestLedger_ApproveKeepsDeduction(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	_, err := db.Exec(`INSERT INTO users (id, deposit_balance) VALUES (1, 500)`)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	svc := New(db)
	ctx := context.Background()

	w, err := svc.RequestWithdrawal(ctx, 1, 200)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if err := svc.ApproveWithdrawal(ctx, w.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}

	b, err := svc.Balances(ctx, 1)
	if err != nil {
		t.Fatalf("balances: %v", err)
	}
	if b.DepositBalance != 300 {
		t.Fatalf("approved withdrawal must stay deducted, got %+v", b)
	}

	history, err := svc.UserWithdrawals(ctx, 1)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 || history[0].Status != withdrawals.StatusApproved {
		t.Fatalf("history mismatch: %+v", history)
	}
}
