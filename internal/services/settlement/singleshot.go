package settlement

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fairhouse/casino-core/internal/games"
	"github.com/fairhouse/casino-core/internal/repos/users"
	"github.com/fairhouse/casino-core/internal/services/ledger"
)

// DiceOutcome is a fully settled dice bet with the balances after it.
type DiceOutcome struct {
	games.DiceResult
	Bet      int64
	Balances users.Balances
}

func (s *Service) PlayDice(ctx context.Context, userID uint64, bet int64, params games.DiceParams) (*DiceOutcome, error) {
	err := games.ValidateDice(params)
	if err != nil {
		return nil, err
	}
	if err := s.validateBet(bet); err != nil {
		return nil, err
	}

	rtp, err := s.settings.RTP(ctx, games.Dice)
	if err != nil {
		return nil, fmt.Errorf("read rtp: %w", err)
	}

	out := &DiceOutcome{Bet: bet}
	err = s.withSettlementTx(ctx, games.Dice, userID, func(tx *sql.Tx) error {
		attr, err := s.users.DebitForBet(tx, userID, bet)
		if err != nil {
			return err
		}

		res, err := games.PlayDice(rtp, bet, params)
		if err != nil {
			return err
		}
		out.DiceResult = res

		return s.settle(tx, games.Dice, userID, bet, res.Payout, attr)
	})
	if err != nil {
		return nil, err
	}

	return out, s.finish(ctx, games.Dice, userID, bet, out.Payout, &out.Balances)
}

// BubblesOutcome is a fully settled bubbles bet.
type BubblesOutcome struct {
	games.BubblesResult
	Bet      int64
	Target   float64
	Balances users.Balances
}

func (s *Service) PlayBubbles(ctx context.Context, userID uint64, bet int64, target float64) (*BubblesOutcome, error) {
	err := games.ValidateBubblesTarget(target)
	if err != nil {
		return nil, err
	}
	if err := s.validateBet(bet); err != nil {
		return nil, err
	}

	rtp, err := s.settings.RTP(ctx, games.Bubbles)
	if err != nil {
		return nil, fmt.Errorf("read rtp: %w", err)
	}

	out := &BubblesOutcome{Bet: bet, Target: target}
	err = s.withSettlementTx(ctx, games.Bubbles, userID, func(tx *sql.Tx) error {
		attr, err := s.users.DebitForBet(tx, userID, bet)
		if err != nil {
			return err
		}

		res, err := games.PlayBubbles(rtp, bet, target)
		if err != nil {
			return err
		}
		out.BubblesResult = res

		return s.settle(tx, games.Bubbles, userID, bet, res.Payout, attr)
	})
	if err != nil {
		return nil, err
	}

	return out, s.finish(ctx, games.Bubbles, userID, bet, out.Payout, &out.Balances)
}

// WheelOutcome is a fully settled x100 spin.
type WheelOutcome struct {
	games.WheelResult
	Bet      int64
	Choice   int
	Balances users.Balances
}

func (s *Service) PlayWheel(ctx context.Context, userID uint64, bet int64, choice int) (*WheelOutcome, error) {
	err := games.ValidateWheelCoef(choice)
	if err != nil {
		return nil, err
	}
	if err := s.validateBet(bet); err != nil {
		return nil, err
	}

	rtp, err := s.settings.RTP(ctx, games.X100)
	if err != nil {
		return nil, fmt.Errorf("read rtp: %w", err)
	}

	out := &WheelOutcome{Bet: bet, Choice: choice}
	err = s.withSettlementTx(ctx, games.X100, userID, func(tx *sql.Tx) error {
		attr, err := s.users.DebitForBet(tx, userID, bet)
		if err != nil {
			return err
		}

		res, err := games.PlayWheel(rtp, bet, choice)
		if err != nil {
			return err
		}
		out.WheelResult = res

		return s.settle(tx, games.X100, userID, bet, res.Payout, attr)
	})
	if err != nil {
		return nil, err
	}

	return out, s.finish(ctx, games.X100, userID, bet, out.Payout, &out.Balances)
}

// settle credits a win back along the stake's attribution and folds the
// resolved bet into the per-game statistic, inside the bet's own tx.
func (s *Service) settle(tx *sql.Tx, game games.Game, userID uint64, bet, payout int64, attr users.BetAttribution) error {
	if payout > 0 {
		credit, err := ledger.CreditPlan(payout, attr)
		if err != nil {
			return err
		}
		if err := s.users.CreditWin(tx, userID, credit); err != nil {
			return fmt.Errorf("credit win: %w", err)
		}
	}

	if err := s.stats.Record(tx, game, bet, payout); err != nil {
		return fmt.Errorf("record stat: %w", err)
	}

	return nil
}

// finish reports metrics and loads the post-settlement balances.
func (s *Service) finish(ctx context.Context, game games.Game, userID uint64, bet, payout int64, balances *users.Balances) error {
	s.metrics.ObserveBet(game, bet, payout)

	b, err := s.users.GetBalances(ctx, userID)
	if err != nil {
		return fmt.Errorf("reload balances: %w", err)
	}
	*balances = b

	return nil
}
