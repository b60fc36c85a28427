package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fairhouse/casino-core/internal/repos/users"
)

const balanceColumns = `deposit_balance, deposit_winnings, promo_balance, promo_winnings, promo_limit, wager`

func (r *usersRepo) GetBalances(ctx context.Context, userID uint64) (users.Balances, error) {
	var b users.Balances
	err := r.db.QueryRowContext(ctx, `
		SELECT `+balanceColumns+`
		FROM users
		WHERE id = $1
	`, userID).Scan(&b.DepositBalance, &b.DepositWinnings, &b.PromoBalance, &b.PromoWinnings, &b.PromoLimit, &b.Wager)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return users.Balances{}, users.ErrUserNotFound
		}
		return users.Balances{}, fmt.Errorf("get balances: %w", err)
	}

	return b, nil
}

func (r *usersRepo) LockBalances(tx *sql.Tx, userID uint64) (users.Balances, error) {
	var b users.Balances
	err := tx.QueryRow(`
		SELECT `+balanceColumns+`
		FROM users
		WHERE id = $1
		FOR UPDATE
	`, userID).Scan(&b.DepositBalance, &b.DepositWinnings, &b.PromoBalance, &b.PromoWinnings, &b.PromoLimit, &b.Wager)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return users.Balances{}, users.ErrUserNotFound
		}
		return users.Balances{}, fmt.Errorf("lock/get balances: %w", err)
	}

	return b, nil
}
