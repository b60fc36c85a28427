package users

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/fairhouse/casino-core/internal/infra/pgtestutil"
	"github.com/fairhouse/casino-core/internal/repos/users"
)

func inTx(t *testing.T, db *sql.DB, fn func(tx *sql.Tx) error) error {
	t.Helper()

	tx, err := db.BeginTx(context.Background(), nil)
	if err != nil {
		t.Fatalf("begin tx: %v", err)
	}

	err = fn(tx)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	return nil
}

func TestUsers_CreditWin_IncrementsAllFields(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	seedUser(t, db, 1, 400, 50)
	repo := New(db)

	err := inTx(t, db, func(tx *sql.Tx) error {
		return repo.CreditWin(tx, 1, users.WinCredit{
			ToDepositBalance:  100,
			ToDepositWinnings: 60,
			ToPromoBalance:    30,
			ToPromoWinnings:   10,
		})
	})
	if err != nil {
		t.Fatalf("credit win: %v", err)
	}

	b, err := repo.GetBalances(context.Background(), 1)
	if err != nil {
		t.Fatalf("get balances: %v", err)
	}

	want := users.Balances{
		DepositBalance:  500,
		DepositWinnings: 60,
		PromoBalance:    80,
		PromoWinnings:   10,
		PromoLimit:      b.PromoLimit, // schema default, not under test here
	}
	if b != want {
		t.Fatalf("balances mismatch: want %+v, got %+v", want, b)
	}
}

func TestUsers_CreditWin_MissingUser(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	repo := New(db)

	err := inTx(t, db, func(tx *sql.Tx) error {
		return repo.CreditWin(tx, 404, users.WinCredit{ToDepositBalance: 100})
	})
	if !errors.Is(err, users.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got: %v", err)
	}
}

func TestUsers_GrantPromo_AddsWager(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	seedUser(t, db, 1, 0, 0)
	repo := New(db)

	err := inTx(t, db, func(tx *sql.Tx) error {
		return repo.GrantPromo(tx, 1, 5_000, 15_000)
	})
	if err != nil {
		t.Fatalf("grant promo: %v", err)
	}

	b, err := repo.GetBalances(context.Background(), 1)
	if err != nil {
		t.Fatalf("get balances: %v", err)
	}
	if b.PromoBalance != 5_000 || b.Wager != 15_000 {
		t.Fatalf("want promo=5000 wager=15000, got promo=%d wager=%d", b.PromoBalance, b.Wager)
	}
}
