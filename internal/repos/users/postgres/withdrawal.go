package users

import (
	"database/sql"
	"fmt"

	"github.com/fairhouse/casino-core/internal/repos/users"
)

// ApplyWithdrawal deducts an already-split withdrawal from its sources.
// The WHERE clause re-checks every part against the current values, so a
// concurrent bet that drained a pool after the split was computed makes
// the withdrawal fail instead of going negative.
func (r *usersRepo) ApplyWithdrawal(tx *sql.Tx, userID uint64, parts users.WithdrawalParts) error {
	res, err := tx.Exec(`
		UPDATE users
		SET deposit_winnings = deposit_winnings - $2,
		    deposit_balance  = deposit_balance - $3,
		    promo_balance    = promo_balance - $4,
		    updated_at       = now()
		WHERE id = $1
		  AND deposit_winnings >= $2
		  AND deposit_balance >= $3
		  AND promo_balance >= $4
	`, userID, parts.FromWinnings, parts.FromDeposit, parts.FromPromo)
	if err != nil {
		return fmt.Errorf("apply withdrawal: %w", err)
	}

	return requireOneRow(res, users.ErrInsufficientFunds)
}

// RevertWithdrawal puts a declined withdrawal back, cent for cent, into
// the sources it was drawn from.
func (r *usersRepo) RevertWithdrawal(tx *sql.Tx, userID uint64, parts users.WithdrawalParts) error {
	res, err := tx.Exec(`
		UPDATE users
		SET deposit_winnings = deposit_winnings + $2,
		    deposit_balance  = deposit_balance + $3,
		    promo_balance    = promo_balance + $4,
		    updated_at       = now()
		WHERE id = $1
	`, userID, parts.FromWinnings, parts.FromDeposit, parts.FromPromo)
	if err != nil {
		return fmt.Errorf("revert withdrawal: %w", err)
	}

	return requireOneRow(res, users.ErrUserNotFound)
}

var _ users.Users = (*usersRepo)(nil)
