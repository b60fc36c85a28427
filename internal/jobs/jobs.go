// Package jobs schedules the background maintenance work: forfeiting
// stale game sessions and logging an hourly RTP snapshot.
package jobs

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/fairhouse/casino-core/internal/repos/rtpstats"
	pgrtpstats "github.com/fairhouse/casino-core/internal/repos/rtpstats/postgres"
	"github.com/fairhouse/casino-core/internal/repos/sessions"
	pgsessions "github.com/fairhouse/casino-core/internal/repos/sessions/postgres"
)

type Runner struct {
	cron       *cron.Cron
	sessions   sessions.Sessions
	stats      rtpstats.Stats
	sessionTTL time.Duration
}

func New(db *sql.DB, sessionTTL time.Duration) *Runner {
	return &Runner{
		cron:       cron.New(),
		sessions:   pgsessions.New(db),
		stats:      pgrtpstats.New(db),
		sessionTTL: sessionTTL,
	}
}

// Start registers the schedules and launches the cron loop. Stale
// sessions are swept every five minutes; an expired session forfeits its
// stake, which the ledger already holds.
func (r *Runner) Start() error {
	_, err := r.cron.AddFunc("*/5 * * * *", r.expireSessions)
	if err != nil {
		return err
	}

	_, err = r.cron.AddFunc("0 * * * *", r.logRTPSnapshot)
	if err != nil {
		return err
	}

	r.cron.Start()
	return nil
}

// Stop halts scheduling and waits for a running job to finish.
func (r *Runner) Stop(ctx context.Context) error {
	select {
	case <-r.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Runner) expireSessions() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cutoff := time.Now().Add(-r.sessionTTL)
	n, err := r.sessions.ExpireStale(ctx, cutoff)
	if err != nil {
		slog.Error("expire stale sessions", "error", err)
		return
	}
	if n > 0 {
		slog.Info("expired stale sessions", "count", n, "cutoff", cutoff)
	}
}

func (r *Runner) logRTPSnapshot() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	rows, err := r.stats.List(ctx)
	if err != nil {
		slog.Error("load rtp stats", "error", err)
		return
	}

	for _, row := range rows {
		slog.Info("rtp snapshot",
			"game", row.Game,
			"games_count", row.GamesCount,
			"total_bets", row.TotalBets,
			"total_wins", row.TotalWins,
			"observed_rtp", row.ObservedRTP())
	}
}
