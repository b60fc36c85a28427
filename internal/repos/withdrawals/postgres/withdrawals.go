package withdrawals

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/fairhouse/casino-core/internal/repos/withdrawals"
)

type withdrawalsRepo struct{ db *sql.DB }

func New(db *sql.DB) *withdrawalsRepo {
	return &withdrawalsRepo{db: db}
}

const withdrawalColumns = `id, user_id, amount, winnings_part, deposit_part, promo_part, status, created_at, resolved_at`

func (r *withdrawalsRepo) Insert(tx *sql.Tx, w *withdrawals.Withdrawal) error {
	_, err := tx.Exec(`
		INSERT INTO withdrawals (id, user_id, amount, winnings_part, deposit_part, promo_part, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, w.ID, w.UserID, w.Amount, w.Parts.FromWinnings, w.Parts.FromDeposit, w.Parts.FromPromo, string(withdrawals.StatusPending))
	if err != nil {
		return fmt.Errorf("insert withdrawal: %w", err)
	}

	return nil
}

func (r *withdrawalsRepo) GetForUpdate(tx *sql.Tx, id uuid.UUID) (*withdrawals.Withdrawal, error) {
	var w withdrawals.Withdrawal
	var status string

	err := tx.QueryRow(`
		SELECT `+withdrawalColumns+`
		FROM withdrawals
		WHERE id = $1
		FOR UPDATE
	`, id).Scan(&w.ID, &w.UserID, &w.Amount,
		&w.Parts.FromWinnings, &w.Parts.FromDeposit, &w.Parts.FromPromo,
		&status, &w.CreatedAt, &w.ResolvedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, withdrawals.ErrNotFound
		}
		return nil, fmt.Errorf("get withdrawal: %w", err)
	}

	w.Status = withdrawals.Status(status)

	return &w, nil
}

func (r *withdrawalsRepo) Resolve(tx *sql.Tx, id uuid.UUID, status withdrawals.Status) error {
	res, err := tx.Exec(`
		UPDATE withdrawals
		SET status      = $2,
		    resolved_at = now()
		WHERE id = $1 AND status = 'pending'
	`, id, string(status))
	if err != nil {
		return fmt.Errorf("resolve withdrawal: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return withdrawals.ErrAlreadyResolved
	}

	return nil
}

func (r *withdrawalsRepo) ListPending(ctx context.Context) ([]withdrawals.Withdrawal, error) {
	return r.list(ctx, `
		SELECT `+withdrawalColumns+`
		FROM withdrawals
		WHERE status = 'pending'
		ORDER BY created_at
	`)
}

func (r *withdrawalsRepo) ListByUser(ctx context.Context, userID uint64) ([]withdrawals.Withdrawal, error) {
	return r.list(ctx, `
		SELECT `+withdrawalColumns+`
		FROM withdrawals
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
}

func (r *withdrawalsRepo) list(ctx context.Context, query string, args ...any) ([]withdrawals.Withdrawal, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list withdrawals: %w", err)
	}
	defer rows.Close()

	var out []withdrawals.Withdrawal
	for rows.Next() {
		var w withdrawals.Withdrawal
		var status string
		err := rows.Scan(&w.ID, &w.UserID, &w.Amount,
			&w.Parts.FromWinnings, &w.Parts.FromDeposit, &w.Parts.FromPromo,
			&status, &w.CreatedAt, &w.ResolvedAt)
		if err != nil {
			return nil, fmt.Errorf("scan withdrawal: %w", err)
		}
		w.Status = withdrawals.Status(status)
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate withdrawals: %w", err)
	}

	return out, nil
}

var _ withdrawals.Withdrawals = (*withdrawalsRepo)(nil)
