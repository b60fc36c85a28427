package crash

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/fairhouse/casino-core/internal/infra/pgtestutil"
	"github.com/fairhouse/casino-core/internal/repos/crash"
	"github.com/fairhouse/casino-core/internal/repos/users"
)

func seedUser(t *testing.T, db *sql.DB, id uint64) {
	t.Helper()

	_, err := db.Exec(`INSERT INTO users (id, deposit_balance) VALUES ($1, 100000)`, id)
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
}

func newRound(t *testing.T, repo *crashRepo) *crash.Round {
	t.Helper()

	round := &crash.Round{ID: uuid.New(), BettingAt: time.Now()}
	if err := repo.Insert(context.Background(), round); err != nil {
		t.Fatalf("insert round: %v", err)
	}

	return round
}

func TestCrash_RoundLifecycle(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	repo := New(db)
	ctx := context.Background()

	round := newRound(t, repo)

	if err := repo.MarkRunning(ctx, round.ID, 2.37, time.Now()); err != nil {
		t.Fatalf("mark running: %v", err)
	}
	// Running twice is rejected.
	if err := repo.MarkRunning(ctx, round.ID, 9.99, time.Now()); !errors.Is(err, crash.ErrRoundNotFound) {
		t.Fatalf("expected ErrRoundNotFound on double running, got: %v", err)
	}

	latest, err := repo.Latest(ctx)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest.ID != round.ID || latest.Status != crash.StatusRunning {
		t.Fatalf("latest mismatch: %+v", latest)
	}
	if latest.CrashPoint == nil || *latest.CrashPoint != 2.37 {
		t.Fatalf("crash point not committed: %+v", latest.CrashPoint)
	}

	if err := repo.MarkCrashed(ctx, round.ID, time.Now()); err != nil {
		t.Fatalf("mark crashed: %v", err)
	}

	history, err := repo.History(ctx, 10)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 || history[0].ID != round.ID {
		t.Fatalf("history mismatch: %+v", history)
	}
}

func TestCrash_OneBetPerRound(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	seedUser(t, db, 1)
	repo := New(db)

	round := newRound(t, repo)

	place := func() error {
		tx, err := db.BeginTx(context.Background(), nil)
		if err != nil {
			t.Fatalf("begin tx: %v", err)
		}
		err = repo.InsertBet(tx, &crash.Bet{
			ID:          uuid.New(),
			RoundID:     round.ID,
			UserID:      1,
			Amount:      300,
			Attribution: users.BetAttribution{FromDeposit: 300},
		})
		if err != nil {
			_ = tx.Rollback()
			return err
		}
		return tx.Commit()
	}

	if err := place(); err != nil {
		t.Fatalf("first bet: %v", err)
	}
	if err := place(); !errors.Is(err, crash.ErrAlreadyBet) {
		t.Fatalf("expected ErrAlreadyBet, got: %v", err)
	}
}

func TestCrash_CashoutOnce(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	seedUser(t, db, 1)
	repo := New(db)

	round := newRound(t, repo)

	tx, err := db.BeginTx(context.Background(), nil)
	if err != nil {
		t.Fatalf("begin tx: %v", err)
	}
	err = repo.InsertBet(tx, &crash.Bet{
		ID:          uuid.New(),
		RoundID:     round.ID,
		UserID:      1,
		Amount:      300,
		Attribution: users.BetAttribution{FromDeposit: 300},
	})
	if err != nil {
		t.Fatalf("insert bet: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	cashout := func(mult float64, payout int64) error {
		tx, err := db.BeginTx(context.Background(), nil)
		if err != nil {
			t.Fatalf("begin tx: %v", err)
		}
		bet, err := repo.GetBetForUpdate(tx, round.ID, 1)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
		if bet.Cashout != nil {
			_ = tx.Rollback()
			return crash.ErrAlreadyCashedOut
		}
		if err := repo.SetCashout(tx, round.ID, 1, mult, payout); err != nil {
			_ = tx.Rollback()
			return err
		}
		return tx.Commit()
	}

	if err := cashout(1.8, 523); err != nil {
		t.Fatalf("first cashout: %v", err)
	}
	if err := cashout(2.4, 698); !errors.Is(err, crash.ErrAlreadyCashedOut) {
		t.Fatalf("expected ErrAlreadyCashedOut, got: %v", err)
	}

	bets, err := repo.Bets(context.Background(), round.ID)
	if err != nil {
		t.Fatalf("bets: %v", err)
	}
	if len(bets) != 1 || bets[0].Cashout == nil || *bets[0].Cashout != 1.8 || bets[0].Payout != 523 {
		t.Fatalf("bet state mismatch: %+v", bets[0])
	}
}

func TestCrash_GetBetForUpdate_NoBet(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	repo := New(db)
	round := newRound(t, repo)

	tx, err := db.BeginTx(context.Background(), nil)
	if err != nil {
		t.Fatalf("begin tx: %v", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = repo.GetBetForUpdate(tx, round.ID, 77)
	if !errors.Is(err, crash.ErrNoBet) {
		t.Fatalf("expected ErrNoBet, got: %v", err)
	}
}
