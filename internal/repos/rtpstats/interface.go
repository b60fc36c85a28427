package rtpstats

import (
	"context"
	"database/sql"

	"github.com/fairhouse/casino-core/internal/games"
)

// Row is the accumulated wagering statistic of one game. Amounts are
// cents. Observed RTP is TotalWins/TotalBets; it is reporting only and
// never feeds back into outcome generation.
type Row struct {
	Game       games.Game
	GamesCount int64
	TotalBets  int64
	TotalWins  int64
}

// ObservedRTP is the realized payout ratio in percent, 0 if nothing has
// been wagered yet.
func (r Row) ObservedRTP() float64 {
	if r.TotalBets == 0 {
		return 0
	}
	return float64(r.TotalWins) / float64(r.TotalBets) * 100
}

type Stats interface {
	// Record folds one resolved bet into the per-game accumulator.
	Record(tx *sql.Tx, game games.Game, bet, win int64) error
	List(ctx context.Context) ([]Row, error)
}
