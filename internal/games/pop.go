package games

import (
	"fmt"

	"github.com/fairhouse/casino-core/internal/rng"
)

const (
	BubblesMinTarget = 1.1
	BubblesMaxTarget = 100.0

	// maxPop caps the heavy tail of the pop-point distribution.
	maxPop = 1000.0
)

// PopPoint draws a multiplier from the inverse-uniform law
//
//	pop = (rtp/100) / (1 - r)
//
// clipped to [1.0, 1000]. For any target t >= rtp/100 this gives
// P(pop >= t) = rtp/(100*t), so paying t on survival returns exactly rtp%
// in expectation. Draws below 1.0 surface as an instant 1.00x pop, which
// is where the whole house edge concentrates.
//
// Bubbles resolves one draw per bet; Crash commits one draw per round as
// the crash point.
func PopPoint(rtp float64) float64 {
	pop := (rtp / 100) / (1 - rng.Float64())

	if pop < 1 {
		pop = 1
	}
	if pop > maxPop {
		pop = maxPop
	}

	return round2(pop)
}

// BubblesResult is a fully resolved bubbles bet.
type BubblesResult struct {
	Pop    float64
	Win    bool
	Payout int64
}

// ValidateBubblesTarget checks the player-selected cash-out multiplier.
func ValidateBubblesTarget(target float64) error {
	if target < BubblesMinTarget || target > BubblesMaxTarget {
		return fmt.Errorf("target %.2f outside [%.1f,%.0f]: %w", target, BubblesMinTarget, BubblesMaxTarget, ErrInvalidParameters)
	}

	return nil
}

// PlayBubbles resolves a single bubbles bet: win iff the drawn pop point
// reaches the player's target; the payout multiplier is the target itself.
func PlayBubbles(rtp float64, bet int64, target float64) (BubblesResult, error) {
	err := ValidateBubblesTarget(target)
	if err != nil {
		return BubblesResult{}, err
	}

	pop := PopPoint(rtp)

	res := BubblesResult{Pop: pop, Win: pop >= target}
	if res.Win {
		res.Payout = WinAmount(bet, target)
	}

	return res, nil
}
