package rtpstats

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fairhouse/casino-core/internal/games"
	"github.com/fairhouse/casino-core/internal/repos/rtpstats"
)

type statsRepo struct{ db *sql.DB }

func New(db *sql.DB) *statsRepo {
	return &statsRepo{db: db}
}

func (r *statsRepo) Record(tx *sql.Tx, game games.Game, bet, win int64) error {
	_, err := tx.Exec(`
		INSERT INTO rtp_stats (game, games_count, total_bets, total_wins)
		VALUES ($1, 1, $2, $3)
		ON CONFLICT (game) DO UPDATE
		SET games_count = rtp_stats.games_count + 1,
		    total_bets  = rtp_stats.total_bets + EXCLUDED.total_bets,
		    total_wins  = rtp_stats.total_wins + EXCLUDED.total_wins,
		    updated_at  = now()
	`, string(game), bet, win)
	if err != nil {
		return fmt.Errorf("record stat: %w", err)
	}

	return nil
}

func (r *statsRepo) List(ctx context.Context) ([]rtpstats.Row, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT game, games_count, total_bets, total_wins
		FROM rtp_stats
		ORDER BY game
	`)
	if err != nil {
		return nil, fmt.Errorf("list stats: %w", err)
	}
	defer rows.Close()

	var out []rtpstats.Row
	for rows.Next() {
		var row rtpstats.Row
		var game string
		if err := rows.Scan(&game, &row.GamesCount, &row.TotalBets, &row.TotalWins); err != nil {
			return nil, fmt.Errorf("scan stat: %w", err)
		}
		row.Game = games.Game(game)
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stats: %w", err)
	}

	return out, nil
}

var _ rtpstats.Stats = (*statsRepo)(nil)
