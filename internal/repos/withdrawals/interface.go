package withdrawals

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/fairhouse/casino-core/internal/repos/users"
)

var ErrNotFound = errors.New("withdrawal not found")
var ErrAlreadyResolved = errors.New("withdrawal already resolved")

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusDeclined Status = "declined"
)

// Withdrawal is one payout request. The funds are deducted from the user
// at request time; Parts records where they came from so a decline can
// restore them exactly.
type Withdrawal struct {
	ID         uuid.UUID
	UserID     uint64
	Amount     int64
	Parts      users.WithdrawalParts
	Status     Status
	CreatedAt  time.Time
	ResolvedAt *time.Time
}

type Withdrawals interface {
	Insert(tx *sql.Tx, w *Withdrawal) error
	// GetForUpdate locks the row so approve and decline cannot race.
	GetForUpdate(tx *sql.Tx, id uuid.UUID) (*Withdrawal, error)
	// Resolve moves a pending withdrawal to a terminal status; resolving
	// a non-pending one fails with ErrAlreadyResolved.
	Resolve(tx *sql.Tx, id uuid.UUID, status Status) error
	ListPending(ctx context.Context) ([]Withdrawal, error)
	ListByUser(ctx context.Context, userID uint64) ([]Withdrawal, error)
}
