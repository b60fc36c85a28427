// Package settlement is the entry point for every bet: it validates the
// request against the ledger, resolves the outcome, advances game
// sessions and settles wins, all inside one database transaction per
// player action.
package settlement

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fairhouse/casino-core/internal/games"
	"github.com/fairhouse/casino-core/internal/infra/pgutils"
	"github.com/fairhouse/casino-core/internal/observability"
	"github.com/fairhouse/casino-core/internal/repos/rtpstats"
	pgrtpstats "github.com/fairhouse/casino-core/internal/repos/rtpstats/postgres"
	"github.com/fairhouse/casino-core/internal/repos/sessions"
	pgsessions "github.com/fairhouse/casino-core/internal/repos/sessions/postgres"
	"github.com/fairhouse/casino-core/internal/repos/settings"
	pgsettings "github.com/fairhouse/casino-core/internal/repos/settings/postgres"
	"github.com/fairhouse/casino-core/internal/repos/users"
	pgusers "github.com/fairhouse/casino-core/internal/repos/users/postgres"
)

var ErrBetTooLarge = errors.New("bet exceeds maximum")
var ErrInvalidMove = errors.New("invalid move")
var ErrNothingToCashOut = errors.New("nothing to cash out")

// ErrSettlementInconsistency marks a bet whose debit may have applied
// while a later settlement step kept failing. It is always logged with
// full attribution before being surfaced.
var ErrSettlementInconsistency = errors.New("settlement inconsistency")

type Service struct {
	db       *sql.DB
	users    users.Users
	sessions sessions.Sessions
	stats    rtpstats.Stats
	settings settings.Settings
	metrics  *observability.Metrics
	maxBet   int64
}

func New(db *sql.DB, metrics *observability.Metrics, maxBet int64) *Service {
	return &Service{
		db:       db,
		users:    pgusers.New(db),
		sessions: pgsessions.New(db),
		stats:    pgrtpstats.New(db),
		settings: pgsettings.New(db),
		metrics:  metrics,
		maxBet:   maxBet,
	}
}

// Settings exposes the per-game RTP store for admin handlers and the
// crash round clock; resolution code reads it once per bet.
func (s *Service) Settings() settings.Settings {
	return s.settings
}

func (s *Service) Stats(ctx context.Context) ([]rtpstats.Row, error) {
	return s.stats.List(ctx)
}

func (s *Service) validateBet(bet int64) error {
	if bet <= 0 {
		return fmt.Errorf("bet must be positive: %w", games.ErrInvalidParameters)
	}
	if bet > s.maxBet {
		return fmt.Errorf("bet %d over limit %d: %w", bet, s.maxBet, ErrBetTooLarge)
	}

	return nil
}

// withSettlementTx runs fn transactionally and retries a bounded number
// of times on serialization conflicts. A rollback discards the attempt
// completely, including its RNG draw, so no outcome is ever revealed
// twice. Exhausted retries surface as ErrSettlementInconsistency.
func (s *Service) withSettlementTx(ctx context.Context, game games.Game, userID uint64, fn func(*sql.Tx) error) error {
	const maxAttempts = 3

	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = pgutils.WithTx(ctx, s.db, fn)
		if err == nil || !isRetryableConflict(err) {
			return err
		}

		slog.Warn("settlement conflict, retrying",
			"game", game, "user_id", userID, "attempt", attempt, "error", err)
	}

	slog.Error("settlement failed after retries",
		"game", game, "user_id", userID, "error", err)
	s.metrics.SettlementInconsistencies.Inc()

	return fmt.Errorf("%w: %v", ErrSettlementInconsistency, err)
}

func isRetryableConflict(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}

	// serialization_failure, deadlock_detected
	return pgErr.Code == "40001" || pgErr.Code == "40P01"
}
