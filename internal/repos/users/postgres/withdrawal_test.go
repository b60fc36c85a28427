package users

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/fairhouse/casino-core/internal/infra/pgtestutil"
	"github.com/fairhouse/casino-core/internal/repos/users"
)

func TestUsers_ApplyWithdrawal_Table(t *testing.T) {
	t.Parallel()

	seedFull := func(db *sql.DB) {
		_, err := db.Exec(`
			INSERT INTO users (id, deposit_balance, deposit_winnings, promo_balance)
			VALUES (1, 500, 100, 1000)
		`)
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	tests := []struct {
		name    string
		parts   users.WithdrawalParts
		wantErr bool
	}{
		{name: "winnings_only", parts: users.WithdrawalParts{FromWinnings: 100}},
		{name: "all_three_sources", parts: users.WithdrawalParts{FromWinnings: 100, FromDeposit: 500, FromPromo: 300}},
		{name: "winnings_overdrawn", parts: users.WithdrawalParts{FromWinnings: 101}, wantErr: true},
		{name: "deposit_overdrawn", parts: users.WithdrawalParts{FromDeposit: 501}, wantErr: true},
		{name: "promo_overdrawn", parts: users.WithdrawalParts{FromPromo: 1_001}, wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			db, cleanup := pgtestutil.NewTestDB(t)
			defer cleanup()

			seedFull(db)
			repo := New(db)

			err := inTx(t, db, func(tx *sql.Tx) error {
				return repo.ApplyWithdrawal(tx, 1, tt.parts)
			})
			if tt.wantErr {
				if !errors.Is(err, users.ErrInsufficientFunds) {
					t.Fatalf("expected ErrInsufficientFunds, got: %v", err)
				}
				// nothing may have moved
				b, gerr := repo.GetBalances(context.Background(), 1)
				if gerr != nil {
					t.Fatalf("get balances: %v", gerr)
				}
				if b.DepositBalance != 500 || b.DepositWinnings != 100 || b.PromoBalance != 1_000 {
					t.Fatalf("balances changed on failed withdrawal: %+v", b)
				}
				return
			}
			if err != nil {
				t.Fatalf("apply withdrawal: %v", err)
			}
		})
	}
}

func TestUsers_RevertWithdrawal_RestoresSources(t *testing.T) {
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

	repo := New(db)
	parts := users.WithdrawalParts{FromWinnings: 100, FromDeposit: 200, FromPromo: 50}

	err = inTx(t, db, func(tx *sql.Tx) error {
		return repo.ApplyWithdrawal(tx, 1, parts)
	})
	if err != nil {
		t.Fatalf("apply withdrawal: %v", err)
	}

	err = inTx(t, db, func(tx *sql.Tx) error {
		return repo.RevertWithdrawal(tx, 1, parts)
	})
	if err != nil {
		t.Fatalf("revert withdrawal: %v", err)
	}

	b, err := repo.GetBalances(context.Background(), 1)
	if err != nil {
		t.Fatalf("get balances: %v", err)
	}
	if b.DepositBalance != 500 || b.DepositWinnings != 100 || b.PromoBalance != 1_000 {
		t.Fatalf("revert did not restore balances: %+v", b)
	}
}
