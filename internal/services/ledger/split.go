package ledger

import (
	"errors"

	"github.com/fairhouse/casino-core/internal/repos/users"
)

// ErrInvalidAttribution is returned when a win credit arrives with a
// zero-amount attribution. The orchestrator never produces one; the
// check guards against a corrupted session record.
var ErrInvalidAttribution = errors.New("invalid bet attribution")

// Split divides a win across the two pools proportionally to the stake
// attribution, in integer cents. The rounding remainder goes to the
// deposit share so the two shares always sum to exactly win.
func Split(win int64, attr users.BetAttribution) (depositShare, promoShare int64, err error) {
	amount := attr.Amount()
	if amount <= 0 {
		return 0, 0, ErrInvalidAttribution
	}

	depositShare = win * attr.FromDeposit / amount
	promoShare = win * attr.FromPromo / amount
	depositShare += win - depositShare - promoShare

	return depositShare, promoShare, nil
}

// CreditPlan converts a win and its stake attribution into the four-way
// balance increment. The deposit share refills deposit_balance up to the
// staked amount and puts only the net profit on deposit_winnings, so the
// withdrawable total never double-counts a returned stake. The promo
// share goes back to promo_balance in full (promo money stays playable
// and its withdrawal is capped by the promo limit, not by a winnings
// account); promo_winnings just counts promo-attributed profit for
// reporting.
func CreditPlan(win int64, attr users.BetAttribution) (users.WinCredit, error) {
	depositShare, promoShare, err := Split(win, attr)
	if err != nil {
		return users.WinCredit{}, err
	}

	stakeBackDeposit := min(depositShare, attr.FromDeposit)

	return users.WinCredit{
		ToDepositBalance:  stakeBackDeposit,
		ToDepositWinnings: depositShare - stakeBackDeposit,
		ToPromoBalance:    promoShare,
		ToPromoWinnings:   max(promoShare-attr.FromPromo, 0),
	}, nil
}
