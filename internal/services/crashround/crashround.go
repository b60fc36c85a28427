// Package crashround runs the shared crash game: one server-wide round
// clock that every player bets into. The crash point is committed to the
// database the moment the round starts running and is published only
// after the crash, so no code path can leak it mid-round.
package crashround

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fairhouse/casino-core/internal/config"
	"github.com/fairhouse/casino-core/internal/games"
	"github.com/fairhouse/casino-core/internal/infra/pgutils"
	"github.com/fairhouse/casino-core/internal/observability"
	"github.com/fairhouse/casino-core/internal/repos/crash"
	pgcrash "github.com/fairhouse/casino-core/internal/repos/crash/postgres"
	"github.com/fairhouse/casino-core/internal/repos/rtpstats"
	pgrtpstats "github.com/fairhouse/casino-core/internal/repos/rtpstats/postgres"
	"github.com/fairhouse/casino-core/internal/repos/settings"
	pgsettings "github.com/fairhouse/casino-core/internal/repos/settings/postgres"
	"github.com/fairhouse/casino-core/internal/repos/users"
	pgusers "github.com/fairhouse/casino-core/internal/repos/users/postgres"
	"github.com/fairhouse/casino-core/internal/services/ledger"
)

var ErrBettingClosed = errors.New("betting closed")
var ErrNotRunning = errors.New("round not running")
var ErrBetTooLarge = errors.New("bet exceeds maximum")

type Phase string

const (
	PhaseBetting      Phase = "betting"
	PhaseRunning      Phase = "running"
	PhaseIntermission Phase = "intermission"
)

// Event is one message on the crash stream.
type Event struct {
	Type          Phase      `json:"type"`
	RoundID       uuid.UUID  `json:"round_id"`
	Multiplier    float64    `json:"multiplier,omitempty"`
	CrashPoint    float64    `json:"crash_point,omitempty"`
	BettingEndsAt *time.Time `json:"betting_ends_at,omitempty"`
}

// Broadcaster fans an event out to connected clients. A nil broadcaster
// disables the stream without touching the round clock.
type Broadcaster interface {
	Broadcast(e Event)
}

// State is a point-in-time snapshot of the round clock for polling
// clients. The crash point of the current round is never included.
type State struct {
	Phase         Phase      `json:"phase"`
	RoundID       uuid.UUID  `json:"round_id"`
	Multiplier    float64    `json:"multiplier,omitempty"`
	BettingEndsAt *time.Time `json:"betting_ends_at,omitempty"`
}

type Service struct {
	db          *sql.DB
	users       users.Users
	rounds      crash.Rounds
	stats       rtpstats.Stats
	settings    settings.Settings
	metrics     *observability.Metrics
	cfg         config.Crash
	maxBet      int64
	broadcaster Broadcaster

	// mu guards the live round snapshot and serializes cashouts against
	// the crash transition, so a cashout can never settle after its
	// round's losses have been recorded.
	mu         sync.Mutex
	phase      Phase
	round      *crash.Round
	crashPoint float64
	runningAt  time.Time
}

func New(db *sql.DB, metrics *observability.Metrics, cfg config.Crash, maxBet int64, b Broadcaster) *Service {
	return &Service{
		db:          db,
		users:       pgusers.New(db),
		rounds:      pgcrash.New(db),
		stats:       pgrtpstats.New(db),
		settings:    pgsettings.New(db),
		metrics:     metrics,
		cfg:         cfg,
		maxBet:      maxBet,
		broadcaster: b,
		phase:       PhaseIntermission,
	}
}

// MultiplierAt is the displayed multiplier after elapsed running time,
// exp(rate*t) truncated to two decimals and never below 1.00. Cashout
// payouts use exactly this value, so what the player saw is what the
// player gets.
func MultiplierAt(growthRate float64, elapsed time.Duration) float64 {
	m := math.Exp(growthRate * elapsed.Seconds())
	m = math.Floor(m*100) / 100
	if m < 1 {
		return 1
	}

	return m
}

// Run drives the round clock until ctx is cancelled. An unfinished round
// left over from a previous process is resumed from its persisted
// timestamps before any new round starts.
func (s *Service) Run(ctx context.Context) error {
	last, err := s.rounds.Latest(ctx)
	if err != nil && !errors.Is(err, crash.ErrRoundNotFound) {
		return fmt.Errorf("load latest round: %w", err)
	}
	if err == nil && last.Status != crash.StatusCrashed {
		slog.Info("resuming unfinished crash round", "round_id", last.ID, "status", last.Status)
		s.runRound(ctx, last)
		s.sleep(ctx, s.cfg.Intermission)
	}

	for ctx.Err() == nil {
		round := &crash.Round{
			ID:        uuid.New(),
			Status:    crash.StatusBetting,
			BettingAt: time.Now(),
		}
		if err := s.rounds.Insert(ctx, round); err != nil {
			slog.Error("insert crash round", "error", err)
			s.sleep(ctx, s.cfg.Intermission)
			continue
		}

		s.runRound(ctx, round)
		s.sleep(ctx, s.cfg.Intermission)
	}

	return ctx.Err()
}

func (s *Service) runRound(ctx context.Context, round *crash.Round) {
	if round.Status == crash.StatusBetting {
		endsAt := round.BettingAt.Add(s.cfg.BettingDuration)

		s.mu.Lock()
		s.phase = PhaseBetting
		s.round = round
		s.mu.Unlock()

		s.broadcast(Event{Type: PhaseBetting, RoundID: round.ID, BettingEndsAt: &endsAt})

		if !s.sleepUntil(ctx, endsAt) {
			return
		}

		rtp, err := s.settings.RTP(ctx, games.Crash)
		if err != nil {
			slog.Error("read crash rtp, using default", "error", err)
			rtp = games.DefaultRTP
		}

		crashPoint := games.PopPoint(rtp)
		now := time.Now()
		if err := s.rounds.MarkRunning(ctx, round.ID, crashPoint, now); err != nil {
			slog.Error("mark round running", "round_id", round.ID, "error", err)
			return
		}
		round.Status = crash.StatusRunning
		round.CrashPoint = &crashPoint
		round.RunningAt = &now
	}

	s.mu.Lock()
	s.phase = PhaseRunning
	s.round = round
	s.crashPoint = *round.CrashPoint
	s.runningAt = *round.RunningAt
	s.mu.Unlock()

	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		m := MultiplierAt(s.cfg.GrowthRate, time.Since(*round.RunningAt))
		if m >= *round.CrashPoint {
			break
		}

		s.broadcast(Event{Type: PhaseRunning, RoundID: round.ID, Multiplier: m})
	}

	s.finishRound(ctx, round)
}

func (s *Service) finishRound(ctx context.Context, round *crash.Round) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.rounds.MarkCrashed(ctx, round.ID, time.Now()); err != nil {
		slog.Error("mark round crashed", "round_id", round.ID, "error", err)
	}

	s.settleLosses(ctx, round)

	s.phase = PhaseIntermission
	s.metrics.CrashRoundsTotal.Inc()
	s.broadcast(Event{Type: PhaseIntermission, RoundID: round.ID, CrashPoint: *round.CrashPoint})
}

// settleLosses records every bet that never cashed out as a loss. Wins
// are recorded at cashout time, so each bet counts exactly once.
func (s *Service) settleLosses(ctx context.Context, round *crash.Round) {
	bets, err := s.rounds.Bets(ctx, round.ID)
	if err != nil {
		slog.Error("load round bets", "round_id", round.ID, "error", err)
		return
	}

	var lost []crash.Bet
	for _, b := range bets {
		if b.Cashout == nil {
			lost = append(lost, b)
		}
	}
	if len(lost) == 0 {
		return
	}

	err = pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		for _, b := range lost {
			if err := s.stats.Record(tx, games.Crash, b.Amount, 0); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		slog.Error("settle crash losses", "round_id", round.ID, "error", err)
		s.metrics.SettlementInconsistencies.Inc()
		return
	}

	for _, b := range lost {
		s.metrics.ObserveBet(games.Crash, b.Amount, 0)
	}
}

// PlaceBet stakes into the current round. Only the betting phase accepts
// bets; one bet per player per round.
func (s *Service) PlaceBet(ctx context.Context, userID uint64, amount int64) (*crash.Bet, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("bet must be positive: %w", games.ErrInvalidParameters)
	}
	if amount > s.maxBet {
		return nil, fmt.Errorf("bet %d over limit %d: %w", amount, s.maxBet, ErrBetTooLarge)
	}

	s.mu.Lock()
	if s.phase != PhaseBetting || s.round == nil {
		s.mu.Unlock()
		return nil, ErrBettingClosed
	}
	roundID := s.round.ID
	s.mu.Unlock()

	bet := &crash.Bet{
		ID:      uuid.New(),
		RoundID: roundID,
		UserID:  userID,
		Amount:  amount,
	}

	err := pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		attr, err := s.users.DebitForBet(tx, userID, amount)
		if err != nil {
			return err
		}
		bet.Attribution = attr

		return s.rounds.InsertBet(tx, bet)
	})
	if err != nil {
		return nil, err
	}

	return bet, nil
}

// Cashout settles the caller's bet at the current multiplier. The
// multiplier is recomputed server-side from the round clock; the value a
// client sends is never trusted.
func (s *Service) Cashout(ctx context.Context, userID uint64) (*crash.Bet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseRunning || s.round == nil {
		return nil, ErrNotRunning
	}

	m := MultiplierAt(s.cfg.GrowthRate, time.Since(s.runningAt))
	if m >= s.crashPoint {
		// The round is over even if the clock goroutine has not marked
		// it yet.
		return nil, ErrNotRunning
	}

	roundID := s.round.ID
	var bet *crash.Bet

	err := pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		b, err := s.rounds.GetBetForUpdate(tx, roundID, userID)
		if err != nil {
			return err
		}

		payout := games.WinAmount(b.Amount, m)
		if err := s.rounds.SetCashout(tx, roundID, userID, m, payout); err != nil {
			return err
		}

		credit, err := ledger.CreditPlan(payout, b.Attribution)
		if err != nil {
			return err
		}
		if err := s.users.CreditWin(tx, userID, credit); err != nil {
			return fmt.Errorf("credit win: %w", err)
		}
		if err := s.stats.Record(tx, games.Crash, b.Amount, payout); err != nil {
			return err
		}

		b.Cashout = &m
		b.Payout = payout
		bet = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveBet(games.Crash, bet.Amount, bet.Payout)

	return bet, nil
}

// State reports the live phase for polling clients.
func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{Phase: s.phase}
	if s.round == nil {
		return st
	}

	st.RoundID = s.round.ID
	switch s.phase {
	case PhaseBetting:
		endsAt := s.round.BettingAt.Add(s.cfg.BettingDuration)
		st.BettingEndsAt = &endsAt
	case PhaseRunning:
		st.Multiplier = MultiplierAt(s.cfg.GrowthRate, time.Since(s.runningAt))
	}

	return st
}

// History returns recent crashed rounds, crash points included.
func (s *Service) History(ctx context.Context, limit int) ([]crash.Round, error) {
	return s.rounds.History(ctx, limit)
}

func (s *Service) broadcast(e Event) {
	if s.broadcaster != nil {
		s.broadcaster.Broadcast(e)
	}
}

func (s *Service) sleep(ctx context.Context, d time.Duration) bool {
	return s.sleepUntil(ctx, time.Now().Add(d))
}

func (s *Service) sleepUntil(ctx context.Context, t time.Time) bool {
	d := time.Until(t)
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
