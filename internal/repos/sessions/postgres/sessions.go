package sessions

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fairhouse/casino-core/internal/games"
	"github.com/fairhouse/casino-core/internal/repos/sessions"
)

type sessionsRepo struct{ db *sql.DB }

func New(db *sql.DB) *sessionsRepo {
	return &sessionsRepo{db: db}
}

const sessionColumns = `id, user_id, game, status, bet, bet_deposit, bet_promo, params, layout, progress, created_at, updated_at`

func (r *sessionsRepo) Insert(tx *sql.Tx, s *sessions.Session) error {
	_, err := tx.Exec(`
		INSERT INTO game_sessions (id, user_id, game, status, bet, bet_deposit, bet_promo, params, layout, progress)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, s.ID, s.UserID, string(s.Game), string(sessions.StatusActive), s.Bet,
		s.Attribution.FromDeposit, s.Attribution.FromPromo, []byte(s.Params), []byte(s.Layout), []byte(s.Progress))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return sessions.ErrSessionActive
		}
		return fmt.Errorf("insert session: %w", err)
	}

	return nil
}

func scanSession(row *sql.Row) (*sessions.Session, error) {
	var s sessions.Session
	var game, status string

	err := row.Scan(&s.ID, &s.UserID, &game, &status, &s.Bet,
		&s.Attribution.FromDeposit, &s.Attribution.FromPromo,
		&s.Params, &s.Layout, &s.Progress, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sessions.ErrNoActiveSession
		}
		return nil, fmt.Errorf("scan session: %w", err)
	}

	s.Game = games.Game(game)
	s.Status = sessions.Status(status)

	return &s, nil
}

func (r *sessionsRepo) GetActive(ctx context.Context, userID uint64, game games.Game) (*sessions.Session, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+sessionColumns+`
		FROM game_sessions
		WHERE user_id = $1 AND game = $2 AND status = 'active'
	`, userID, string(game))

	return scanSession(row)
}

func (r *sessionsRepo) GetActiveForUpdate(tx *sql.Tx, userID uint64, game games.Game) (*sessions.Session, error) {
	row := tx.QueryRow(`
		SELECT `+sessionColumns+`
		FROM game_sessions
		WHERE user_id = $1 AND game = $2 AND status = 'active'
		FOR UPDATE
	`, userID, string(game))

	return scanSession(row)
}

func (r *sessionsRepo) SaveProgress(tx *sql.Tx, id uuid.UUID, progress json.RawMessage) error {
	res, err := tx.Exec(`
		UPDATE game_sessions
		SET progress   = $2,
		    updated_at = now()
		WHERE id = $1 AND status = 'active'
	`, id, progress)
	if err != nil {
		return fmt.Errorf("save progress: %w", err)
	}

	return requireOneRow(res)
}

func (r *sessionsRepo) Close(tx *sql.Tx, id uuid.UUID, status sessions.Status) error {
	res, err := tx.Exec(`
		UPDATE game_sessions
		SET status     = $2,
		    updated_at = now(),
		    closed_at  = now()
		WHERE id = $1 AND status = 'active'
	`, id, string(status))
	if err != nil {
		return fmt.Errorf("close session: %w", err)
	}

	return requireOneRow(res)
}

func (r *sessionsRepo) ExpireStale(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE game_sessions
		SET status     = 'expired',
		    updated_at = now(),
		    closed_at  = now()
		WHERE status = 'active' AND updated_at < $1
	`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("expire stale sessions: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}

	return affected, nil
}

var _ sessions.Sessions = (*sessionsRepo)(nil)

func requireOneRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sessions.ErrNoActiveSession
	}

	return nil
}
