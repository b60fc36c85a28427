package users

import (
	"context"
	"database/sql"
	"errors"
)

var ErrInsufficientFunds = errors.New("insufficient funds")
var ErrUserNotFound = errors.New("user not found")
var ErrUserExists = errors.New("user already exists")

// Balances is the full dual-pool balance record of one user. All amounts
// are cents. The winnings fields are monotonic attribution counters: they
// feed the withdrawable total and withdrawal deductions, never bets.
type Balances struct {
	DepositBalance  int64
	DepositWinnings int64
	PromoBalance    int64
	PromoWinnings   int64
	PromoLimit      int64
	Wager           int64
}

// Available is the amount a bet may draw on.
func (b Balances) Available() int64 {
	return b.DepositBalance + b.PromoBalance
}

// BetAttribution is the pool split of a single bet, deposit drawn first.
// It is carried to the paired win credit and never persisted on its own.
type BetAttribution struct {
	FromDeposit int64
	FromPromo   int64
}

// Amount is the total stake the attribution describes.
func (a BetAttribution) Amount() int64 {
	return a.FromDeposit + a.FromPromo
}

// WinCredit is the four-way increment a win applies: stake returns to the
// pool balances, net profit goes to the winnings counters.
type WinCredit struct {
	ToDepositBalance  int64
	ToDepositWinnings int64
	ToPromoBalance    int64
	ToPromoWinnings   int64
}

// WithdrawalParts is the split of a withdrawal amount by source, in the
// order funds are drawn: winnings first, then deposit balance, then promo.
type WithdrawalParts struct {
	FromWinnings int64
	FromDeposit  int64
	FromPromo    int64
}

func (p WithdrawalParts) Total() int64 {
	return p.FromWinnings + p.FromDeposit + p.FromPromo
}

type Users interface {
	Create(ctx context.Context, userID uint64) error
	Exists(tx *sql.Tx, userID uint64) error
	GetBalances(ctx context.Context, userID uint64) (Balances, error)
	LockBalances(tx *sql.Tx, userID uint64) (Balances, error)

	// DebitForBet atomically takes amount from the pools, deposit first,
	// and burns the same amount off the wager requirement. It fails with
	// ErrInsufficientFunds if the pools cannot cover the bet.
	DebitForBet(tx *sql.Tx, userID uint64, amount int64) (BetAttribution, error)
	CreditWin(tx *sql.Tx, userID uint64, credit WinCredit) error

	IncreaseDeposit(tx *sql.Tx, userID uint64, amount int64) error
	// GrantPromo adds promotional funds and extends the wager requirement
	// that locks the promo side until it is played through.
	GrantPromo(tx *sql.Tx, userID uint64, amount, wager int64) error

	ApplyWithdrawal(tx *sql.Tx, userID uint64, parts WithdrawalParts) error
	RevertWithdrawal(tx *sql.Tx, userID uint64, parts WithdrawalParts) error
}
