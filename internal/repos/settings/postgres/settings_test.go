package settings

import (
	"context"
	"errors"
	"testing"

	"github.com/fairhouse/casino-core/internal/games"
	"github.com/fairhouse/casino-core/internal/infra/pgtestutil"
	"github.com/fairhouse/casino-core/internal/repos/settings"
)

func TestSettings_DefaultWhenUnset(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	repo := New(db)

	rtp, err := repo.RTP(context.Background(), games.Dice)
	if err != nil {
		t.Fatalf("get rtp: %v", err)
	}
	if rtp != games.DefaultRTP {
		t.Fatalf("want default %.2f, got %.2f", games.DefaultRTP, rtp)
	}
}

func TestSettings_SetAndGet(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	repo := New(db)
	ctx := context.Background()

	if err := repo.SetRTP(ctx, games.Mines, 92.5); err != nil {
		t.Fatalf("set rtp: %v", err)
	}
	// Upsert overwrites.
	if err := repo.SetRTP(ctx, games.Mines, 88); err != nil {
		t.Fatalf("set rtp again: %v", err)
	}

	rtp, err := repo.RTP(ctx, games.Mines)
	if err != nil {
		t.Fatalf("get rtp: %v", err)
	}
	if rtp != 88 {
		t.Fatalf("want 88, got %.2f", rtp)
	}

	all, err := repo.All(ctx)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if all[games.Mines] != 88 {
		t.Fatalf("all: want mines=88, got %.2f", all[games.Mines])
	}
	if all[games.Dice] != games.DefaultRTP {
		t.Fatalf("all: want dice default, got %.2f", all[games.Dice])
	}
}

func TestSettings_SetRTP_RejectsOutOfRange(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	repo := New(db)

	for _, rtp := range []float64{49.99, 100.01, 0, -5} {
		err := repo.SetRTP(context.Background(), games.Dice, rtp)
		if !errors.Is(err, settings.ErrRTPOutOfRange) {
			t.Fatalf("rtp %.2f: expected ErrRTPOutOfRange, got %v", rtp, err)
		}
	}
}
