package users

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/fairhouse/casino-core/internal/repos/users"
)

// DebitForBet takes the stake from the two pools in one conditional
// UPDATE: deposit first, remainder from promo, and the wager requirement
// burns down by the full stake. The WHERE clause is the sufficiency
// check, so a stale read can never overdraw; zero rows means the pools
// could not cover the bet (or the user does not exist).
func (r *usersRepo) DebitForBet(tx *sql.Tx, userID uint64, amount int64) (users.BetAttribution, error) {
	if amount <= 0 {
		return users.BetAttribution{}, fmt.Errorf("amount must be positive, got %d", amount)
	}

	var attr users.BetAttribution
	err := tx.QueryRow(`
		WITH locked AS (
			SELECT id, LEAST(deposit_balance, $2::bigint) AS from_deposit
			FROM users
			WHERE id = $1
			  AND deposit_balance + promo_balance >= $2
			FOR UPDATE
		)
		UPDATE users u
		SET deposit_balance = u.deposit_balance - l.from_deposit,
		    promo_balance   = u.promo_balance - ($2 - l.from_deposit),
		    wager           = GREATEST(u.wager - $2, 0),
		    updated_at      = now()
		FROM locked l
		WHERE u.id = l.id
		RETURNING l.from_deposit, $2 - l.from_deposit
	`, userID, amount).Scan(&attr.FromDeposit, &attr.FromPromo)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return users.BetAttribution{}, users.ErrInsufficientFunds
		}
		return users.BetAttribution{}, fmt.Errorf("debit for bet: %w", err)
	}

	return attr, nil
}
