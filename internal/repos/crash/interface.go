package crash

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/fairhouse/casino-core/internal/repos/users"
)

var ErrRoundNotFound = errors.New("round not found")
var ErrAlreadyBet = errors.New("bet already placed in round")
var ErrNoBet = errors.New("no bet in round")
var ErrAlreadyCashedOut = errors.New("bet already cashed out")

type RoundStatus string

const (
	StatusBetting RoundStatus = "betting"
	StatusRunning RoundStatus = "running"
	StatusCrashed RoundStatus = "crashed"
)

// Round is one shared crash round. CrashPoint is committed when the round
// starts running and stays server-side until the round crashes; History
// is the only reader that may surface it to clients.
type Round struct {
	ID         uuid.UUID
	Status     RoundStatus
	CrashPoint *float64
	BettingAt  time.Time
	RunningAt  *time.Time
	CrashedAt  *time.Time
}

// Bet is one player's stake in a round. Cashout stays nil until the
// player cashes out; a nil Cashout on a crashed round is a loss.
type Bet struct {
	ID          uuid.UUID
	RoundID     uuid.UUID
	UserID      uint64
	Amount      int64
	Attribution users.BetAttribution
	Cashout     *float64
	Payout      int64
	CreatedAt   time.Time
}

type Rounds interface {
	Insert(ctx context.Context, round *Round) error
	MarkRunning(ctx context.Context, id uuid.UUID, crashPoint float64, at time.Time) error
	MarkCrashed(ctx context.Context, id uuid.UUID, at time.Time) error
	// Latest returns the most recent round regardless of status, used to
	// resume the round clock after a restart.
	Latest(ctx context.Context) (*Round, error)
	History(ctx context.Context, limit int) ([]Round, error)

	InsertBet(tx *sql.Tx, bet *Bet) error
	GetBetForUpdate(tx *sql.Tx, roundID uuid.UUID, userID uint64) (*Bet, error)
	SetCashout(tx *sql.Tx, roundID uuid.UUID, userID uint64, multiplier float64, payout int64) error
	Bets(ctx context.Context, roundID uuid.UUID) ([]Bet, error)
}
