package games

import (
	"fmt"
	"sort"

	"github.com/fairhouse/casino-core/internal/rng"
)

const (
	MinesCells    = 25
	MinesMinBombs = 2
	MinesMaxBombs = 24
)

// ValidateMines checks the bombs count for a new session.
func ValidateMines(bombs int) error {
	if bombs < MinesMinBombs || bombs > MinesMaxBombs {
		return fmt.Errorf("bombs %d outside [%d,%d]: %w", bombs, MinesMinBombs, MinesMaxBombs, ErrInvalidParameters)
	}

	return nil
}

// NewMinesLayout draws the hazard layout for a session: a uniform random
// subset of exactly bombs cells out of 25, numbered 1-25. The layout is
// committed once at session start and never re-drawn: deciding per click
// from a fresh draw would let the house bias against an observed player
// pattern.
func NewMinesLayout(bombs int) ([]int, error) {
	err := ValidateMines(bombs)
	if err != nil {
		return nil, err
	}

	layout := rng.PickN(bombs, MinesCells)
	sort.Ints(layout)

	return layout, nil
}

// MinesMultiplier is the payout multiplier after opened safe reveals with
// the given bombs count. The fair multiplier is the inverse hypergeometric
// survival probability, scaled by the target RTP so the expected value of
// any stopping strategy over the pre-committed layout equals rtp%.
//
// It is strictly increasing in opened for any valid bombs count.
func MinesMultiplier(rtp float64, bombs, opened int) float64 {
	fair := 1.0
	for i := 0; i < opened; i++ {
		fair *= float64(MinesCells-i) / float64(MinesCells-bombs-i)
	}

	return fair * (rtp / 100)
}

// MinesSafeCells is the number of reveals that completes the board.
func MinesSafeCells(bombs int) int {
	return MinesCells - bombs
}
