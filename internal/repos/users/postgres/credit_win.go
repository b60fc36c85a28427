package users

import (
	"database/sql"
	"fmt"

	"github.com/fairhouse/casino-core/internal/repos/users"
)

func (r *usersRepo) CreditWin(tx *sql.Tx, userID uint64, credit users.WinCredit) error {
	res, err := tx.Exec(`
		UPDATE users
		SET deposit_balance  = deposit_balance + $2,
		    deposit_winnings = deposit_winnings + $3,
		    promo_balance    = promo_balance + $4,
		    promo_winnings   = promo_winnings + $5,
		    updated_at       = now()
		WHERE id = $1
	`, userID, credit.ToDepositBalance, credit.ToDepositWinnings, credit.ToPromoBalance, credit.ToPromoWinnings)
	if err != nil {
		return fmt.Errorf("credit win: %w", err)
	}

	return requireOneRow(res, users.ErrUserNotFound)
}

func (r *usersRepo) IncreaseDeposit(tx *sql.Tx, userID uint64, amount int64) error {
	res, err := tx.Exec(`
		UPDATE users
		SET deposit_balance = deposit_balance + $2,
		    updated_at      = now()
		WHERE id = $1
	`, userID, amount)
	if err != nil {
		return fmt.Errorf("increase deposit: %w", err)
	}

	return requireOneRow(res, users.ErrUserNotFound)
}

func (r *usersRepo) GrantPromo(tx *sql.Tx, userID uint64, amount, wager int64) error {
	res, err := tx.Exec(`
		UPDATE users
		SET promo_balance = promo_balance + $2,
		    wager         = wager + $3,
		    updated_at    = now()
		WHERE id = $1
	`, userID, amount, wager)
	if err != nil {
		return fmt.Errorf("grant promo: %w", err)
	}

	return requireOneRow(res, users.ErrUserNotFound)
}

func requireOneRow(res sql.Result, missing error) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return missing
	}

	return nil
}
