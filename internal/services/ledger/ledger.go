// Package ledger is the single authority for balance mutation. Every
// bet debit, win credit, deposit, promo grant and withdrawal goes
// through it; no other component writes balance fields.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/fairhouse/casino-core/internal/infra/pgutils"
	"github.com/fairhouse/casino-core/internal/repos/users"
	pgusers "github.com/fairhouse/casino-core/internal/repos/users/postgres"
	"github.com/fairhouse/casino-core/internal/repos/withdrawals"
	pgwithdrawals "github.com/fairhouse/casino-core/internal/repos/withdrawals/postgres"
)

// ErrNotWithdrawable is returned when a withdrawal request exceeds the
// currently withdrawable total.
var ErrNotWithdrawable = errors.New("amount exceeds withdrawable funds")

type Service struct {
	db          *sql.DB
	users       users.Users
	withdrawals withdrawals.Withdrawals
}

func New(db *sql.DB) *Service {
	return &Service{
		db:          db,
		users:       pgusers.New(db),
		withdrawals: pgwithdrawals.New(db),
	}
}

// Withdrawable is the withdrawal-eligibility view of a balance record.
type Withdrawable struct {
	Total       int64
	FromPromo   int64
	FromDeposit int64
	LockedPromo int64
}

// ComputeWithdrawable derives withdrawal eligibility from a balance
// snapshot. Promo funds count only up to the promo limit, and not at all
// while a wager requirement is outstanding; the deposit side is the pool
// balance plus accumulated net winnings.
func ComputeWithdrawable(b users.Balances) Withdrawable {
	fromPromo := min(b.PromoBalance, b.PromoLimit)
	if b.Wager > 0 {
		fromPromo = 0
	}

	fromDeposit := b.DepositBalance + b.DepositWinnings

	return Withdrawable{
		Total:       fromPromo + fromDeposit,
		FromPromo:   fromPromo,
		FromDeposit: fromDeposit,
		LockedPromo: b.PromoBalance - fromPromo,
	}
}

// splitWithdrawal allocates a withdrawal amount to its sources, winnings
// first, then deposit balance, then eligible promo. The caller has
// already checked amount against the withdrawable total.
func splitWithdrawal(b users.Balances, amount int64) users.WithdrawalParts {
	parts := users.WithdrawalParts{}

	parts.FromWinnings = min(amount, b.DepositWinnings)
	amount -= parts.FromWinnings

	parts.FromDeposit = min(amount, b.DepositBalance)
	amount -= parts.FromDeposit

	parts.FromPromo = amount

	return parts
}

func (s *Service) CreateUser(ctx context.Context, userID uint64) error {
	err := s.users.Create(ctx, userID)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

func (s *Service) Balances(ctx context.Context, userID uint64) (users.Balances, error) {
	b, err := s.users.GetBalances(ctx, userID)
	if err != nil {
		return users.Balances{}, fmt.Errorf("get balances: %w", err)
	}

	return b, nil
}

func (s *Service) Deposit(ctx context.Context, userID uint64, amount int64) error {
	err := pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		return s.users.IncreaseDeposit(tx, userID, amount)
	})
	if err != nil {
		return fmt.Errorf("deposit: %w", err)
	}

	return nil
}

// GrantPromo credits promotional funds and sets the playthrough
// requirement that keeps the promo side locked until wagered.
func (s *Service) GrantPromo(ctx context.Context, userID uint64, amount, wager int64) error {
	err := pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		return s.users.GrantPromo(tx, userID, amount, wager)
	})
	if err != nil {
		return fmt.Errorf("grant promo: %w", err)
	}

	return nil
}

// RequestWithdrawal deducts the amount from the user immediately and
// records a pending withdrawal carrying the source split. Admin approval
// only confirms the payout; a decline reverts the split.
func (s *Service) RequestWithdrawal(ctx context.Context, userID uint64, amount int64) (*withdrawals.Withdrawal, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("amount must be positive: %w", ErrNotWithdrawable)
	}

	w := &withdrawals.Withdrawal{
		ID:     uuid.New(),
		UserID: userID,
		Amount: amount,
	}

	err := pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		b, err := s.users.LockBalances(tx, userID)
		if err != nil {
			return fmt.Errorf("lock balances: %w", err)
		}

		if amount > ComputeWithdrawable(b).Total {
			return ErrNotWithdrawable
		}

		w.Parts = splitWithdrawal(b, amount)

		err = s.users.ApplyWithdrawal(tx, userID, w.Parts)
		if err != nil {
			return fmt.Errorf("apply withdrawal: %w", err)
		}

		err = s.withdrawals.Insert(tx, w)
		if err != nil {
			return fmt.Errorf("insert withdrawal: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("request withdrawal: %w", err)
	}

	return w, nil
}

func (s *Service) ApproveWithdrawal(ctx context.Context, id uuid.UUID) error {
	err := pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		w, err := s.withdrawals.GetForUpdate(tx, id)
		if err != nil {
			return err
		}
		if w.Status != withdrawals.StatusPending {
			return withdrawals.ErrAlreadyResolved
		}

		return s.withdrawals.Resolve(tx, id, withdrawals.StatusApproved)
	})
	if err != nil {
		return fmt.Errorf("approve withdrawal: %w", err)
	}

	return nil
}

// DeclineWithdrawal marks the request declined and puts the funds back
// into the exact sources they were drawn from.
func (s *Service) DeclineWithdrawal(ctx context.Context, id uuid.UUID) error {
	err := pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		w, err := s.withdrawals.GetForUpdate(tx, id)
		if err != nil {
			return err
		}
		if w.Status != withdrawals.StatusPending {
			return withdrawals.ErrAlreadyResolved
		}

		err = s.withdrawals.Resolve(tx, id, withdrawals.StatusDeclined)
		if err != nil {
			return err
		}

		return s.users.RevertWithdrawal(tx, w.UserID, w.Parts)
	})
	if err != nil {
		return fmt.Errorf("decline withdrawal: %w", err)
	}

	return nil
}

func (s *Service) PendingWithdrawals(ctx context.Context) ([]withdrawals.Withdrawal, error) {
	return s.withdrawals.ListPending(ctx)
}

func (s *Service) UserWithdrawals(ctx context.Context, userID uint64) ([]withdrawals.Withdrawal, error) {
	return s.withdrawals.ListByUser(ctx, userID)
}
