package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fairhouse/casino-core/internal/games"
	"github.com/fairhouse/casino-core/internal/repos/settings"
)

type settingsRepo struct{ db *sql.DB }

func New(db *sql.DB) *settingsRepo {
	return &settingsRepo{db: db}
}

func (r *settingsRepo) RTP(ctx context.Context, game games.Game) (float64, error) {
	var rtp float64
	err := r.db.QueryRowContext(ctx, `
		SELECT rtp FROM game_settings WHERE game = $1
	`, string(game)).Scan(&rtp)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return games.DefaultRTP, nil
		}
		return 0, fmt.Errorf("get rtp: %w", err)
	}

	return rtp, nil
}

func (r *settingsRepo) SetRTP(ctx context.Context, game games.Game, rtp float64) error {
	if rtp < settings.MinRTP || rtp > settings.MaxRTP {
		return fmt.Errorf("rtp %.2f: %w", rtp, settings.ErrRTPOutOfRange)
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO game_settings (game, rtp) VALUES ($1, $2)
		ON CONFLICT (game) DO UPDATE
		SET rtp        = EXCLUDED.rtp,
		    updated_at = now()
	`, string(game), rtp)
	if err != nil {
		return fmt.Errorf("set rtp: %w", err)
	}

	return nil
}

func (r *settingsRepo) All(ctx context.Context) (map[games.Game]float64, error) {
	out := make(map[games.Game]float64, len(games.All))
	for _, g := range games.All {
		out[g] = games.DefaultRTP
	}

	rows, err := r.db.QueryContext(ctx, `SELECT game, rtp FROM game_settings`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var game string
		var rtp float64
		if err := rows.Scan(&game, &rtp); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		out[games.Game(game)] = rtp
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate settings: %w", err)
	}

	return out, nil
}

var _ settings.Settings = (*settingsRepo)(nil)
