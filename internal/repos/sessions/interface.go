package sessions

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/fairhouse/casino-core/internal/games"
	"github.com/fairhouse/casino-core/internal/repos/users"
)

var ErrSessionActive = errors.New("session already active")
var ErrNoActiveSession = errors.New("no active session")

type Status string

const (
	StatusActive    Status = "active"
	StatusLost      Status = "lost"
	StatusCashedOut Status = "cashed_out"
	StatusCompleted Status = "completed"
	StatusExpired   Status = "expired"
)

// Session is one multi-step game run. Params, Layout and Progress are
// game-specific JSON documents owned by the settlement layer; the repo
// stores them opaquely. Layout is written once at insert and never
// updated.
type Session struct {
	ID          uuid.UUID
	UserID      uint64
	Game        games.Game
	Status      Status
	Bet         int64
	Attribution users.BetAttribution
	Params      json.RawMessage
	Layout      json.RawMessage
	Progress    json.RawMessage
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Sessions interface {
	// Insert creates an active session. A second active session for the
	// same (user, game) fails with ErrSessionActive.
	Insert(tx *sql.Tx, s *Session) error
	GetActive(ctx context.Context, userID uint64, game games.Game) (*Session, error)
	// GetActiveForUpdate locks the session row, serializing concurrent
	// moves on the same session.
	GetActiveForUpdate(tx *sql.Tx, userID uint64, game games.Game) (*Session, error)
	SaveProgress(tx *sql.Tx, id uuid.UUID, progress json.RawMessage) error
	Close(tx *sql.Tx, id uuid.UUID, status Status) error
	// ExpireStale closes every active session untouched since cutoff and
	// returns how many it closed.
	ExpireStale(ctx context.Context, cutoff time.Time) (int64, error)
}
