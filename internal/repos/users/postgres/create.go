package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fairhouse/casino-core/internal/repos/users"
)

func (r *usersRepo) Create(ctx context.Context, userID uint64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id) VALUES ($1)
	`, userID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return users.ErrUserExists
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

func (r *usersRepo) Exists(tx *sql.Tx, userID uint64) error {
	var one int
	err := tx.QueryRow(`SELECT 1 FROM users WHERE id = $1`, userID).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return users.ErrUserNotFound
		}
		return fmt.Errorf("check user exists: %w", err)
	}

	return nil
}
