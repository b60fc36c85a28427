package games

import (
	"fmt"

	"github.com/fairhouse/casino-core/internal/rng"
)

const (
	DiceMinChance = 2
	DiceMaxChance = 98

	// diceFairTotal is the numerator of the break-even coefficient:
	// slightly under 100 so a nominally "fair" table already carries a
	// residual edge, matching the classic 99.99/chance dice payout.
	diceFairTotal = 99.99
)

// DiceDirection says which side of the threshold wins.
type DiceDirection string

const (
	DiceUnder DiceDirection = "under"
	DiceOver  DiceDirection = "over"
)

// DiceParams are the player-chosen bet parameters.
type DiceParams struct {
	Chance    int
	Direction DiceDirection
}

// DiceResult is a fully resolved dice bet.
type DiceResult struct {
	Roll        int
	Win         bool
	Coefficient float64
	Payout      int64
}

// ValidateDice rejects degenerate always-win / always-lose configurations.
func ValidateDice(p DiceParams) error {
	if p.Chance < DiceMinChance || p.Chance > DiceMaxChance {
		return fmt.Errorf("chance %d outside [%d,%d]: %w", p.Chance, DiceMinChance, DiceMaxChance, ErrInvalidParameters)
	}

	if p.Direction != DiceUnder && p.Direction != DiceOver {
		return fmt.Errorf("direction %q: %w", p.Direction, ErrInvalidParameters)
	}

	return nil
}

// DiceCoefficient is the payout coefficient for a winning roll: the
// break-even coefficient scaled by the target RTP, so the long-run return
// equals rtp% regardless of the chosen chance.
func DiceCoefficient(rtp float64, chance int) float64 {
	return (diceFairTotal / float64(chance)) * (rtp / 100)
}

// PlayDice resolves a single dice bet. The roll is a uniform integer in
// [0,99]; the RTP bias lives entirely in the payout coefficient, never in
// the roll distribution.
func PlayDice(rtp float64, bet int64, p DiceParams) (DiceResult, error) {
	err := ValidateDice(p)
	if err != nil {
		return DiceResult{}, err
	}

	roll := rng.IntN(100)

	return resolveDice(rtp, bet, p, roll), nil
}

// resolveDice applies the win condition to an already drawn roll.
// The boundary is exclusive on the configured side: with chance=50 under,
// roll 49 wins and roll 50 loses.
func resolveDice(rtp float64, bet int64, p DiceParams, roll int) DiceResult {
	var win bool
	if p.Direction == DiceUnder {
		win = roll < p.Chance
	} else {
		win = roll >= 100-p.Chance
	}

	res := DiceResult{Roll: roll, Win: win}
	if win {
		res.Coefficient = round2(DiceCoefficient(rtp, p.Chance))
		res.Payout = WinAmount(bet, DiceCoefficient(rtp, p.Chance))
	}

	return res
}
