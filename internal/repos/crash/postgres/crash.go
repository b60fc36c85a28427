package crash

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fairhouse/casino-core/internal/repos/crash"
)

type crashRepo struct{ db *sql.DB }

func New(db *sql.DB) *crashRepo {
	return &crashRepo{db: db}
}

func (r *crashRepo) Insert(ctx context.Context, round *crash.Round) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO crash_rounds (id, status, betting_at)
		VALUES ($1, $2, $3)
	`, round.ID, string(crash.StatusBetting), round.BettingAt)
	if err != nil {
		return fmt.Errorf("insert round: %w", err)
	}

	return nil
}

func (r *crashRepo) MarkRunning(ctx context.Context, id uuid.UUID, crashPoint float64, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE crash_rounds
		SET status      = 'running',
		    crash_point = $2,
		    running_at  = $3
		WHERE id = $1 AND status = 'betting'
	`, id, crashPoint, at)
	if err != nil {
		return fmt.Errorf("mark running: %w", err)
	}

	return requireOneRow(res)
}

func (r *crashRepo) MarkCrashed(ctx context.Context, id uuid.UUID, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE crash_rounds
		SET status     = 'crashed',
		    crashed_at = $2
		WHERE id = $1 AND status = 'running'
	`, id, at)
	if err != nil {
		return fmt.Errorf("mark crashed: %w", err)
	}

	return requireOneRow(res)
}

func (r *crashRepo) Latest(ctx context.Context) (*crash.Round, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, status, crash_point, betting_at, running_at, crashed_at
		FROM crash_rounds
		ORDER BY betting_at DESC
		LIMIT 1
	`)

	return scanRound(row)
}

func (r *crashRepo) History(ctx context.Context, limit int) ([]crash.Round, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, status, crash_point, betting_at, running_at, crashed_at
		FROM crash_rounds
		WHERE status = 'crashed'
		ORDER BY crashed_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("round history: %w", err)
	}
	defer rows.Close()

	var out []crash.Round
	for rows.Next() {
		var round crash.Round
		var status string
		err := rows.Scan(&round.ID, &status, &round.CrashPoint, &round.BettingAt, &round.RunningAt, &round.CrashedAt)
		if err != nil {
			return nil, fmt.Errorf("scan round: %w", err)
		}
		round.Status = crash.RoundStatus(status)
		out = append(out, round)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rounds: %w", err)
	}

	return out, nil
}

func (r *crashRepo) InsertBet(tx *sql.Tx, bet *crash.Bet) error {
	_, err := tx.Exec(`
		INSERT INTO crash_bets (id, round_id, user_id, amount, bet_deposit, bet_promo)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, bet.ID, bet.RoundID, bet.UserID, bet.Amount, bet.Attribution.FromDeposit, bet.Attribution.FromPromo)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return crash.ErrAlreadyBet
		}
		return fmt.Errorf("insert bet: %w", err)
	}

	return nil
}

func (r *crashRepo) GetBetForUpdate(tx *sql.Tx, roundID uuid.UUID, userID uint64) (*crash.Bet, error) {
	var bet crash.Bet
	err := tx.QueryRow(`
		SELECT id, round_id, user_id, amount, bet_deposit, bet_promo, cashout, payout, created_at
		FROM crash_bets
		WHERE round_id = $1 AND user_id = $2
		FOR UPDATE
	`, roundID, userID).Scan(&bet.ID, &bet.RoundID, &bet.UserID, &bet.Amount,
		&bet.Attribution.FromDeposit, &bet.Attribution.FromPromo,
		&bet.Cashout, &bet.Payout, &bet.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, crash.ErrNoBet
		}
		return nil, fmt.Errorf("get bet: %w", err)
	}

	return &bet, nil
}

func (r *crashRepo) SetCashout(tx *sql.Tx, roundID uuid.UUID, userID uint64, multiplier float64, payout int64) error {
	res, err := tx.Exec(`
		UPDATE crash_bets
		SET cashout = $3,
		    payout  = $4
		WHERE round_id = $1 AND user_id = $2 AND cashout IS NULL
	`, roundID, userID, multiplier, payout)
	if err != nil {
		return fmt.Errorf("set cashout: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return crash.ErrAlreadyCashedOut
	}

	return nil
}

func (r *crashRepo) Bets(ctx context.Context, roundID uuid.UUID) ([]crash.Bet, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, round_id, user_id, amount, bet_deposit, bet_promo, cashout, payout, created_at
		FROM crash_bets
		WHERE round_id = $1
		ORDER BY created_at
	`, roundID)
	if err != nil {
		return nil, fmt.Errorf("round bets: %w", err)
	}
	defer rows.Close()

	var out []crash.Bet
	for rows.Next() {
		var bet crash.Bet
		err := rows.Scan(&bet.ID, &bet.RoundID, &bet.UserID, &bet.Amount,
			&bet.Attribution.FromDeposit, &bet.Attribution.FromPromo,
			&bet.Cashout, &bet.Payout, &bet.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan bet: %w", err)
		}
		out = append(out, bet)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bets: %w", err)
	}

	return out, nil
}

func scanRound(row *sql.Row) (*crash.Round, error) {
	var round crash.Round
	var status string

	err := row.Scan(&round.ID, &status, &round.CrashPoint, &round.BettingAt, &round.RunningAt, &round.CrashedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, crash.ErrRoundNotFound
		}
		return nil, fmt.Errorf("scan round: %w", err)
	}

	round.Status = crash.RoundStatus(status)

	return &round, nil
}

func requireOneRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return crash.ErrRoundNotFound
	}

	return nil
}

var _ crash.Rounds = (*crashRepo)(nil)
