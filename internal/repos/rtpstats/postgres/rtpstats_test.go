package rtpstats

import (
	"context"
	"database/sql"
	"testing"

	"github.com/fairhouse/casino-core/internal/games"
	"github.com/fairhouse/casino-core/internal/infra/pgtestutil"
)

func record(t *testing.T, db *sql.DB, repo *statsRepo, game games.Game, bet, win int64) {
	t.Helper()

	tx, err := db.BeginTx(context.Background(), nil)
	if err != nil {
		t.Fatalf("begin tx: %v", err)
	}
	if err := repo.Record(tx, game, bet, win); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
}

func TestStats_RecordAccumulates(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	repo := New(db)

	record(t, db, repo, games.Dice, 100, 194)
	record(t, db, repo, games.Dice, 100, 0)
	record(t, db, repo, games.Mines, 500, 750)

	rows, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("want 2 rows, got %d", len(rows))
	}

	// Ordered by game name: dice before mines.
	dice := rows[0]
	if dice.Game != games.Dice || dice.GamesCount != 2 || dice.TotalBets != 200 || dice.TotalWins != 194 {
		t.Fatalf("dice row mismatch: %+v", dice)
	}
	if got := dice.ObservedRTP(); got != 97 {
		t.Fatalf("dice observed rtp: want 97, got %.2f", got)
	}

	mines := rows[1]
	if mines.Game != games.Mines || mines.GamesCount != 1 || mines.TotalWins != 750 {
		t.Fatalf("mines row mismatch: %+v", mines)
	}
}
